package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeSendMessage = "send-message"
	InboundTypeTyping      = "typing"
	InboundTypeMarkRead    = "mark-read"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// SendMessageData asks the server to store and relay a direct message.
type SendMessageData struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// TypingData starts or stops a typing indicator addressed to ReceiverID.
type TypingData struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

// MarkReadData marks every message from SenderID to the caller as read.
type MarkReadData struct {
	SenderID string `json:"senderId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// UserSummary is the public profile attached to messages.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// MessageData is a stored direct message as seen by clients.
type MessageData struct {
	ID        int64       `json:"id"`
	Sender    UserSummary `json:"sender"`
	Receiver  UserSummary `json:"receiver"`
	Content   string      `json:"content"`
	CreatedAt string      `json:"createdAt"`
	Read      bool        `json:"read"`
	ReadAt    string      `json:"readAt,omitempty"`
}

// OnlineUsersData is the roster sent once after admission, a bare array of user ids.
type OnlineUsersData []string

// UserStatusData is a presence delta.
type UserStatusData struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// UserTypingData relays a typing indicator.
type UserTypingData struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// MessagesReadData tells a sender that UserID has read their messages.
type MessagesReadData struct {
	UserID string `json:"userId"`
}

// MessageErrorData explains why a message was not stored.
type MessageErrorData struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// SessionReplacedData is sent to a connection superseded by a newer one.
type SessionReplacedData struct {
	UserID string `json:"userId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
