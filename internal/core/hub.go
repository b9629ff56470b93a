package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// IdentityStore is the part of the user store the core reads and writes.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id string) (*store.User, error)
	SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error
}

// MessageStore is the part of the message store the core writes.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *store.Message) error
	MarkConversationRead(ctx context.Context, senderID, receiverID string, readAt time.Time) (int64, error)
}

// ContentFilter rewrites message content before validation and persistence.
type ContentFilter interface {
	Sanitize(content string) string
}

// Options tunes the hub. The zero value is usable.
type Options struct {
	Logger  *zerolog.Logger
	Metrics Metrics
	Filter  ContentFilter
	// MaxContentLength bounds message content in runes; zero disables the check.
	MaxContentLength int
	// CloseSuperseded closes a connection replaced by a newer one for the same user.
	CloseSuperseded bool
	Now             func() time.Time
}

// Hub wires the registry to presence, delivery, typing and read receipts.
type Hub struct {
	registry *Registry
	presence *PresenceTracker
	pipeline *Pipeline
	typing   *TypingRelay
	receipts *ReceiptPropagator
	out      *dispatcher
	log      *zerolog.Logger
	metrics  Metrics
}

// NewHub creates a hub backed by the given stores.
func NewHub(identities IdentityStore, messages MessageStore, opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	registry := NewRegistry()
	out := &dispatcher{log: logger, metrics: metrics}

	return &Hub{
		registry: registry,
		presence: &PresenceTracker{
			registry:        registry,
			identities:      identities,
			out:             out,
			locks:           newKeyedMutex(),
			closeSuperseded: opts.CloseSuperseded,
			now:             now,
			log:             logger,
			metrics:         metrics,
		},
		pipeline: &Pipeline{
			registry:   registry,
			identities: identities,
			messages:   messages,
			out:        out,
			filter:     opts.Filter,
			maxLength:  opts.MaxContentLength,
			now:        now,
			log:        logger,
			metrics:    metrics,
		},
		typing: &TypingRelay{registry: registry, out: out},
		receipts: &ReceiptPropagator{
			registry: registry,
			messages: messages,
			out:      out,
			now:      now,
			log:      logger,
			metrics:  metrics,
		},
		out:     out,
		log:     logger,
		metrics: metrics,
	}
}

// Connect registers an admitted client and announces it.
func (h *Hub) Connect(ctx context.Context, c *Client) {
	h.presence.Connect(ctx, c)
}

// Disconnect evicts the client and announces the user offline if it was current.
func (h *Hub) Disconnect(ctx context.Context, c *Client) {
	h.presence.Disconnect(ctx, c)
}

// Handle processes one inbound command. Callers invoke it sequentially per
// connection, which keeps each connection's events in arrival order.
func (h *Hub) Handle(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandSendMessage:
		_, _ = h.pipeline.Send(ctx, c, cmd.PeerID, cmd.Content)
	case CommandTyping:
		h.typing.Signal(c, cmd.PeerID, cmd.IsTyping)
	case CommandMarkRead:
		if _, err := h.receipts.MarkRead(ctx, c.UserID, cmd.PeerID); errors.Is(err, ErrMissingPeer) {
			h.out.deliver(c, &Event{Kind: EventError, Error: NewCoreError(ErrCodeBadRequest, err.Error())})
		}
	default:
		h.out.deliver(c, &Event{
			Kind:  EventError,
			Error: NewCoreError(ErrCodeBadRequest, "unknown command"),
		})
	}
}

// Reject sends c an error event for input the transport could not turn into a
// command. It reports whether the event was queued.
func (h *Hub) Reject(c *Client, code, msg string) bool {
	return h.out.deliver(c, &Event{Kind: EventError, Error: NewCoreError(code, msg)})
}

// MarkRead runs the read-receipt propagator on behalf of a request that did
// not come over a live connection.
func (h *Hub) MarkRead(ctx context.Context, readerID, senderID string) (int64, error) {
	return h.receipts.MarkRead(ctx, readerID, senderID)
}

// IsOnline reports whether userID has a live connection.
func (h *Hub) IsOnline(userID string) bool {
	_, ok := h.registry.Lookup(userID)
	return ok
}

// OnlineUsers returns the ids of every connected user.
func (h *Hub) OnlineUsers() []string {
	return h.registry.Snapshot()
}

// Metrics exposes the metrics sink so the transport can record admissions.
func (h *Hub) Metrics() Metrics {
	return h.metrics
}

// dispatcher is the single deliver primitive every component fans out through.
type dispatcher struct {
	log     *zerolog.Logger
	metrics Metrics
}

func (d *dispatcher) deliver(c *Client, ev *Event) bool {
	if c == nil {
		return false
	}
	wasClosed := c.Closed()
	if c.Deliver(ev) {
		return true
	}
	d.metrics.DeliveryDropped(ev.Kind.String())
	if !wasClosed {
		d.log.Warn().
			Str("conn_id", c.ID).
			Str("user_id", c.UserID).
			Str("event", ev.Kind.String()).
			Msg("client buffer full, closing slow consumer")
	}
	return false
}

// broadcast delivers ev to every registered user, iterating over a snapshot.
func (d *dispatcher) broadcast(r *Registry, ev *Event) int {
	delivered := 0
	for _, userID := range r.Snapshot() {
		c, ok := r.Lookup(userID)
		if !ok {
			continue
		}
		if d.deliver(c, ev) {
			delivered++
		}
	}
	return delivered
}
