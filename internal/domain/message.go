package domain

import "time"

// ReactionType enumerates the fixed set of reaction kinds.
type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionLove       ReactionType = "love"
	ReactionLaugh      ReactionType = "laugh"
	ReactionSurprised  ReactionType = "surprised"
	ReactionSad        ReactionType = "sad"
	ReactionAngry      ReactionType = "angry"
	ReactionFire       ReactionType = "fire"
	ReactionThumbsUp   ReactionType = "thumbsUp"
	ReactionThumbsDown ReactionType = "thumbsDown"
	ReactionOk         ReactionType = "ok"
)

var reactionTypes = map[ReactionType]struct{}{
	ReactionLike:       {},
	ReactionLove:       {},
	ReactionLaugh:      {},
	ReactionSurprised:  {},
	ReactionSad:        {},
	ReactionAngry:      {},
	ReactionFire:       {},
	ReactionThumbsUp:   {},
	ReactionThumbsDown: {},
	ReactionOk:         {},
}

// Valid reports whether t is one of the known reaction kinds.
func (t ReactionType) Valid() bool {
	_, ok := reactionTypes[t]
	return ok
}

// Reaction is one user's reaction to a message. At most one reaction per
// (author, type) pair exists on a message; repeating the pair removes it.
type Reaction struct {
	Author string       `json:"author"`
	Type   ReactionType `json:"type"`
}

// ChatMessage is a posted chat message. DisplayName is denormalized from the
// author at post time and is not updated afterwards.
type ChatMessage struct {
	ID          string     `json:"id"`
	Author      string     `json:"author"`
	Text        string     `json:"text"`
	DisplayName string     `json:"displayName"`
	Timestamp   time.Time  `json:"timestamp"`
	Reactions   []Reaction `json:"reactions"`
	ReplyCount  int        `json:"replyCount"`
}

// PostMessageRequest is the body for posting a chat message.
type PostMessageRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// ReactionRequest is the body for toggling a reaction.
type ReactionRequest struct {
	Author string       `json:"author"`
	Type   ReactionType `json:"type"`
}
