package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/proto"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// MessageHandlers serves conversation history and read receipts.
type MessageHandlers struct {
	store store.Store
	hub   *core.Hub
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.Store, hub *core.Hub, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{store: st, hub: hub, log: logger}
}

// History returns the conversation with :userId in ascending order.
// GET /api/messages/:userId?limit=50&before=123
func (h *MessageHandlers) History(c *gin.Context) {
	ctx := c.Request.Context()
	callerID := currentUserID(c)
	peerID := c.Param("userId")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	var before *int64
	if raw := c.Query("before"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid before cursor"})
			return
		}
		before = &id
	}

	caller, err := h.store.GetUserByID(ctx, callerID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", callerID).Msg("failed to load caller")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	peer, err := h.store.GetUserByID(ctx, peerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("peer_id", peerID).Msg("failed to load peer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.ListConversation(ctx, callerID, peerID, limit, before)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", callerID).Str("peer_id", peerID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	summaries := map[string]core.UserSummary{
		caller.ID: core.SummaryOf(caller),
		peer.ID:   core.SummaryOf(peer),
	}
	response := make([]*proto.MessageData, 0, len(messages))
	for _, m := range messages {
		response = append(response, messageToProto(core.NewMessage(m, summaries[m.SenderID], summaries[m.ReceiverID])))
	}
	c.JSON(http.StatusOK, response)
}

// MarkRead marks every message from :userId to the caller as read and notifies the sender.
// PUT /api/messages/read/:userId
func (h *MessageHandlers) MarkRead(c *gin.Context) {
	senderID := c.Param("userId")

	n, err := h.hub.MarkRead(c.Request.Context(), currentUserID(c), senderID)
	if err != nil {
		if errors.Is(err, core.ErrMissingPeer) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// UnreadCount returns how many messages addressed to the caller are unread.
// GET /api/messages/unread/count
func (h *MessageHandlers) UnreadCount(c *gin.Context) {
	n, err := h.store.CountUnread(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to count unread messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": n})
}
