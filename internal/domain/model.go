package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ReactionList stores a message's reactions as a single JSON-encoded column
// so the same model works across PostgreSQL, MySQL, and SQLite.
type ReactionList []Reaction

// Scan implements the sql.Scanner interface for reading from the database.
func (l *ReactionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("ReactionList: unsupported scan type")
	}
}

// Value implements the driver.Valuer interface for writing to the database.
func (l ReactionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (ReactionList) GormDataType() string {
	return "text"
}

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	Username    string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string `gorm:"type:varchar(255);not null"`
	DisplayName string `gorm:"type:varchar(100);not null"`
	CreatedAt   time.Time
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *User {
	return &User{
		ID:          m.ID,
		Username:    m.Username,
		Password:    m.Password,
		DisplayName: m.DisplayName,
	}
}

func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:          u.ID,
		Username:    u.Username,
		Password:    u.Password,
		DisplayName: u.DisplayName,
	}
}

// MessageModel is the GORM model for the messages table. The auto-increment
// Seq key preserves insertion order for listing.
type MessageModel struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"type:varchar(36);uniqueIndex;not null"`
	Author      string `gorm:"type:varchar(255);index;not null"`
	Text        string `gorm:"type:text;not null"`
	DisplayName string `gorm:"type:varchar(100)"`
	Timestamp   time.Time
	Reactions   ReactionList `gorm:"type:text"`
	ReplyCount  int          `gorm:"not null;default:0"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) ToDomain() *ChatMessage {
	return &ChatMessage{
		ID:          m.ID,
		Author:      m.Author,
		Text:        m.Text,
		DisplayName: m.DisplayName,
		Timestamp:   m.Timestamp,
		Reactions:   []Reaction(m.Reactions),
		ReplyCount:  m.ReplyCount,
	}
}

func MessageToModel(msg *ChatMessage) *MessageModel {
	return &MessageModel{
		ID:          msg.ID,
		Author:      msg.Author,
		Text:        msg.Text,
		DisplayName: msg.DisplayName,
		Timestamp:   msg.Timestamp,
		Reactions:   ReactionList(msg.Reactions),
		ReplyCount:  msg.ReplyCount,
	}
}

// ReplyModel is the GORM model for the replies table.
type ReplyModel struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"type:varchar(36);uniqueIndex;not null"`
	MessageID   string `gorm:"type:varchar(36);index;not null"`
	Author      string `gorm:"type:varchar(255);not null"`
	Text        string `gorm:"type:text;not null"`
	DisplayName string `gorm:"type:varchar(100)"`
	Timestamp   time.Time
}

func (ReplyModel) TableName() string { return "replies" }

func (m *ReplyModel) ToDomain() *Reply {
	return &Reply{
		ID:          m.ID,
		MessageID:   m.MessageID,
		Author:      m.Author,
		Text:        m.Text,
		DisplayName: m.DisplayName,
		Timestamp:   m.Timestamp,
	}
}

func ReplyToModel(r *Reply) *ReplyModel {
	return &ReplyModel{
		ID:          r.ID,
		MessageID:   r.MessageID,
		Author:      r.Author,
		Text:        r.Text,
		DisplayName: r.DisplayName,
		Timestamp:   r.Timestamp,
	}
}
