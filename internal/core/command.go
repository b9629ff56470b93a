package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSendMessage persists a direct message and relays it to the receiver.
	CommandSendMessage CommandKind = iota
	// CommandTyping relays a typing indicator to the addressed user.
	CommandTyping
	// CommandMarkRead marks every message from PeerID to the client as read.
	CommandMarkRead
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	// PeerID is the receiver for send/typing and the original sender for mark-read.
	PeerID   string
	Content  string
	IsTyping bool
}
