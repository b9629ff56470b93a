package core

import (
	"time"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// UserSummary is the public face of a user attached to messages.
type UserSummary struct {
	ID       string
	Username string
	Avatar   string
}

// Message is a persisted direct message enriched with both parties' summaries.
type Message struct {
	ID        int64
	Sender    UserSummary
	Receiver  UserSummary
	Content   string
	CreatedAt time.Time
	Read      bool
	ReadAt    *time.Time
}

// SummaryOf builds a UserSummary from a stored user.
func SummaryOf(u *store.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// NewMessage joins a stored message with the given summaries.
func NewMessage(m *store.Message, sender, receiver UserSummary) *Message {
	return &Message{
		ID:        m.ID,
		Sender:    sender,
		Receiver:  receiver,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Read:      m.Read,
		ReadAt:    m.ReadAt,
	}
}
