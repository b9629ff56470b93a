package core

// TypingRelay forwards typing indicators. Nothing is persisted and an offline
// target silently drops the signal.
type TypingRelay struct {
	registry *Registry
	out      *dispatcher
}

// Signal tells targetID that from is or stopped typing.
func (t *TypingRelay) Signal(from *Client, targetID string, isTyping bool) bool {
	target, ok := t.registry.Lookup(targetID)
	if !ok {
		return false
	}
	return t.out.deliver(target, &Event{
		Kind:     EventUserTyping,
		UserID:   from.UserID,
		Username: from.Name,
		Typing:   isTyping,
	})
}
