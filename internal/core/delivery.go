package core

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// Pipeline validates, persists and routes direct messages.
// A message is routed only after it is stored.
type Pipeline struct {
	registry   *Registry
	identities IdentityStore
	messages   MessageStore
	out        *dispatcher
	filter     ContentFilter
	maxLength  int
	now        func() time.Time
	log        *zerolog.Logger
	metrics    Metrics
}

// Send stores a message from sender to receiverID, hands it to the receiver
// when live and confirms it to the sender. Failures are reported to the sender
// as message-error and returned.
func (p *Pipeline) Send(ctx context.Context, sender *Client, receiverID, content string) (*Message, error) {
	content, err := p.prepare(receiverID, content)
	if err != nil {
		p.out.deliver(sender, &Event{
			Kind:  EventMessageError,
			Error: NewCoreError(ErrCodeValidation, err.Error()),
		})
		return nil, err
	}

	record := &store.Message{
		SenderID:   sender.UserID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  p.now().UTC(),
	}
	if err := p.messages.SaveMessage(context.WithoutCancel(ctx), record); err != nil {
		p.metrics.PersistenceFailed("message")
		p.log.Error().Err(err).
			Str("sender_id", sender.UserID).
			Str("receiver_id", receiverID).
			Msg("failed to save message")
		p.out.deliver(sender, &Event{
			Kind:  EventMessageError,
			Error: NewCoreError(ErrCodePersistence, ErrNotStored.Error()),
		})
		return nil, fmt.Errorf("save message: %w", err)
	}
	p.metrics.MessagePersisted()

	msg := NewMessage(record,
		p.summary(ctx, sender.UserID, sender.Name),
		p.summary(ctx, receiverID, ""),
	)

	live := false
	if receiver, ok := p.registry.Lookup(receiverID); ok {
		live = p.out.deliver(receiver, &Event{Kind: EventReceiveMessage, Message: msg})
	}
	p.metrics.MessageRouted(live)
	p.out.deliver(sender, &Event{Kind: EventMessageSent, Message: msg})

	p.log.Debug().
		Int64("message_id", msg.ID).
		Str("sender_id", sender.UserID).
		Str("receiver_id", receiverID).
		Bool("live", live).
		Msg("message delivered")
	return msg, nil
}

func (p *Pipeline) prepare(receiverID, content string) (string, error) {
	if strings.TrimSpace(receiverID) == "" {
		return "", ErrMissingReceiver
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	if p.filter != nil {
		content = p.filter.Sanitize(content)
		if strings.TrimSpace(content) == "" {
			return "", ErrEmptyContent
		}
	}
	if p.maxLength > 0 && utf8.RuneCountInString(content) > p.maxLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

// summary enriches a user id with profile data, degrading to the bare id.
func (p *Pipeline) summary(ctx context.Context, userID, fallbackName string) UserSummary {
	u, err := p.identities.GetUserByID(ctx, userID)
	if err != nil {
		p.log.Debug().Err(err).Str("user_id", userID).Msg("message enrichment fell back to id")
		return UserSummary{ID: userID, Username: fallbackName}
	}
	return SummaryOf(u)
}
