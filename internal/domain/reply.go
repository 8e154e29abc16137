package domain

import "time"

// Reply is a threaded reply attached to a chat message. Replies are not
// independently deletable; replies to a deleted message are preserved.
type Reply struct {
	ID          string    `json:"id"`
	MessageID   string    `json:"messageId"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	DisplayName string    `json:"displayName"`
	Timestamp   time.Time `json:"timestamp"`
}

// PostReplyRequest is the body for posting a reply; the message id comes
// from the URL.
type PostReplyRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}
