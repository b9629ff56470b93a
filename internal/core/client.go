package core

import "sync"

// Close reasons reported to the transport when the core closes a client.
const (
	CloseReasonSuperseded   = "session replaced"
	CloseReasonSlowConsumer = "slow consumer"
)

// Client is one live connection as seen by the core layer.
// The core never writes to the network; it only queues events on Events.
type Client struct {
	ID     string // connection id, unique per admission
	UserID string
	Name   string
	Events chan *Event

	done        chan struct{}
	closeOnce   sync.Once
	mu          sync.Mutex
	closeReason string
}

// NewClient constructs a client with an outbound buffer of the given size.
func NewClient(id, userID, name string, buffer int) *Client {
	if name == "" {
		name = userID
	}
	if buffer <= 0 {
		buffer = 8
	}
	return &Client{
		ID:     id,
		UserID: userID,
		Name:   name,
		Events: make(chan *Event, buffer),
		done:   make(chan struct{}),
	}
}

// Deliver queues an event for the client without blocking.
// It is a no-op on a closed client. A full buffer closes the client as a
// slow consumer and reports false.
func (c *Client) Deliver(ev *Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Events <- ev:
		return true
	case <-c.done:
		return false
	default:
		c.Close(CloseReasonSlowConsumer)
		return false
	}
}

// Close marks the client closed. Only the first reason is kept.
// Events is never closed so concurrent Deliver calls stay safe.
func (c *Client) Close(reason string) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeReason = reason
		c.mu.Unlock()
		close(c.done)
	})
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// CloseReason returns the reason passed to the first Close call.
func (c *Client) CloseReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeReason
}
