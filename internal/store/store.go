package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// User represents a user in the system.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Avatar       string
	IsOnline     bool
	LastSeen     *time.Time
	CreatedAt    time.Time
}

// Message represents a persisted direct message.
type Message struct {
	ID         int64
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  time.Time
	Read       bool
	ReadAt     *time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash, avatar string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsers returns every user except excludeID, ordered by username.
	ListUsers(ctx context.Context, excludeID string) ([]*User, error)

	// SearchUsers matches usernames containing query, excluding excludeID.
	SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]*User, error)

	// SetPresence records the online flag and last-seen time of a user.
	SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error

	// ResetPresence marks every user offline and returns how many rows changed.
	ResetPresence(ctx context.Context) (int64, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and fills its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListConversation retrieves messages exchanged between two users in
	// chronological order. If beforeID is provided, only older messages are returned.
	ListConversation(ctx context.Context, userA, userB string, limit int, beforeID *int64) ([]*Message, error)

	// MarkConversationRead marks every unread message from senderID to receiverID as read.
	MarkConversationRead(ctx context.Context, senderID, receiverID string, readAt time.Time) (int64, error)

	// CountUnread counts unread messages addressed to receiverID.
	CountUnread(ctx context.Context, receiverID string) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
