package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CloseReasonDisconnected marks a client closed by its own disconnect.
const CloseReasonDisconnected = "disconnected"

// PresenceTracker turns registry changes into persisted presence and deltas.
// Transitions of one user are serialized so online always precedes offline.
type PresenceTracker struct {
	registry        *Registry
	identities      IdentityStore
	out             *dispatcher
	locks           *keyedMutex
	closeSuperseded bool
	now             func() time.Time
	log             *zerolog.Logger
	metrics         Metrics
}

// Connect registers c, announces a fresh user to everyone and sends c the roster.
func (p *PresenceTracker) Connect(ctx context.Context, c *Client) {
	unlock := p.locks.Lock(c.UserID)
	fresh, previous := p.registry.Register(c.UserID, c)
	p.metrics.SetLiveConnections(p.registry.Len())
	if previous != nil {
		p.supersede(previous, c)
	}
	if fresh {
		p.transition(ctx, c, true)
	}
	unlock()

	p.out.deliver(c, &Event{Kind: EventOnlineUsers, Users: p.registry.Snapshot()})
	p.log.Info().Str("user_id", c.UserID).Str("conn_id", c.ID).Bool("fresh", fresh).Msg("client connected")
}

// Disconnect unregisters c. Only the current session of a user produces an offline delta.
func (p *PresenceTracker) Disconnect(ctx context.Context, c *Client) {
	c.Close(CloseReasonDisconnected)

	unlock := p.locks.Lock(c.UserID)
	removed := p.registry.Unregister(c.UserID, c)
	p.metrics.SetLiveConnections(p.registry.Len())
	if removed {
		p.transition(ctx, c, false)
	}
	unlock()

	p.log.Info().Str("user_id", c.UserID).Str("conn_id", c.ID).Bool("current", removed).Msg("client disconnected")
}

func (p *PresenceTracker) supersede(previous, current *Client) {
	p.metrics.SessionSuperseded()
	p.log.Info().
		Str("user_id", current.UserID).
		Str("old_conn_id", previous.ID).
		Str("conn_id", current.ID).
		Bool("close_old", p.closeSuperseded).
		Msg("session superseded")

	if !p.closeSuperseded {
		return
	}
	p.out.deliver(previous, &Event{Kind: EventSessionReplaced, UserID: current.UserID})
	previous.Close(CloseReasonSuperseded)
}

// transition persists the presence of c's user and broadcasts the delta.
// The store write survives connection cancellation; a store failure never
// blocks the broadcast.
func (p *PresenceTracker) transition(ctx context.Context, c *Client, online bool) {
	at := p.now().UTC()
	if err := p.identities.SetPresence(context.WithoutCancel(ctx), c.UserID, online, at); err != nil {
		p.metrics.PersistenceFailed("presence")
		p.log.Warn().Err(err).Str("user_id", c.UserID).Bool("online", online).Msg("failed to persist presence")
	}

	// A connection that already went away cancels its own online announcement.
	if online && c.Closed() {
		p.log.Debug().Str("user_id", c.UserID).Msg("skip online broadcast for closed client")
		return
	}

	n := p.out.broadcast(p.registry, &Event{Kind: EventUserStatus, UserID: c.UserID, Online: online})
	p.metrics.PresenceBroadcast(online)
	p.log.Debug().Str("user_id", c.UserID).Bool("online", online).Int("recipients", n).Msg("presence broadcast")
}
