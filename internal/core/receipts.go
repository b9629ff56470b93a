package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ReceiptPropagator marks conversations read and tells the original sender.
type ReceiptPropagator struct {
	registry *Registry
	messages MessageStore
	out      *dispatcher
	now      func() time.Time
	log      *zerolog.Logger
	metrics  Metrics
}

// MarkRead flags every unread message from senderID to readerID as read and
// notifies senderID when live. The notification is sent even if nothing was
// unread; a store failure suppresses it.
func (r *ReceiptPropagator) MarkRead(ctx context.Context, readerID, senderID string) (int64, error) {
	if strings.TrimSpace(senderID) == "" {
		return 0, ErrMissingPeer
	}

	n, err := r.messages.MarkConversationRead(context.WithoutCancel(ctx), senderID, readerID, r.now().UTC())
	if err != nil {
		r.metrics.PersistenceFailed("receipt")
		r.log.Error().Err(err).
			Str("reader_id", readerID).
			Str("sender_id", senderID).
			Msg("failed to mark messages read")
		return 0, fmt.Errorf("mark read: %w", err)
	}

	if sender, ok := r.registry.Lookup(senderID); ok {
		r.out.deliver(sender, &Event{Kind: EventMessagesRead, UserID: readerID})
	}
	r.log.Debug().Str("reader_id", readerID).Str("sender_id", senderID).Int64("updated", n).Msg("messages marked read")
	return n, nil
}
