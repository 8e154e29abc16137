package domain

// Fan-out event names pushed to connected clients.
const (
	EventNewChatMessage      = "newChatMessage"
	EventUpdatedChatMessage  = "updatedChatMessage"
	EventDeletedChatMessage  = "deletedChatMessage"
	EventDeletedChatMessages = "deletedChatMessages"
	EventNewReply            = "newReply"
)

// Event is the wire shape of a fan-out notification.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

func NewEvent(name string, payload interface{}) *Event {
	return &Event{Event: name, Payload: payload}
}
