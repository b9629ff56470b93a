package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventOnlineUsers delivers the roster to a newly admitted connection.
	EventOnlineUsers EventKind = iota
	// EventUserStatus is a presence delta broadcast to every live connection.
	EventUserStatus
	// EventReceiveMessage delivers a message to its receiver.
	EventReceiveMessage
	// EventMessageSent acknowledges a persisted message to its sender.
	EventMessageSent
	// EventMessageError tells the sender a message was not stored.
	EventMessageError
	// EventUserTyping relays a typing indicator.
	EventUserTyping
	// EventMessagesRead tells a sender that the reader has read their messages.
	EventMessagesRead
	// EventSessionReplaced tells a connection it was superseded by a newer one.
	EventSessionReplaced
	// EventError reports a protocol-level error to the client.
	EventError
)

var eventKindNames = map[EventKind]string{
	EventOnlineUsers:     "online-users",
	EventUserStatus:      "user-status",
	EventReceiveMessage:  "receive-message",
	EventMessageSent:     "message-sent",
	EventMessageError:    "message-error",
	EventUserTyping:      "user-typing",
	EventMessagesRead:    "messages-read",
	EventSessionReplaced: "session-replaced",
	EventError:           "error",
}

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	UserID   string // subject of status/typing/read events
	Username string
	Online   bool
	Typing   bool
	Users    []string // EventOnlineUsers
	Message  *Message
	Error    *CoreError
}
