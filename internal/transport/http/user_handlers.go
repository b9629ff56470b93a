package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

const searchLimit = 10

// UserHandlers provides HTTP handlers for the user directory.
type UserHandlers struct {
	store store.UserStore
	hub   *core.Hub
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.UserStore, hub *core.Hub, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		hub:   hub,
		log:   logger,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Avatar    string     `json:"avatar"`
	IsOnline  bool       `json:"isOnline"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// userResponse maps a stored user. online comes from the live registry, not the store.
func userResponse(u *store.User, online bool) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Avatar:    u.Avatar,
		IsOnline:  online,
		LastSeen:  u.LastSeen,
		CreatedAt: u.CreatedAt,
	}
}

func (h *UserHandlers) respond(c *gin.Context, users []*store.User) {
	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, userResponse(u, h.hub.IsOnline(u.ID)))
	}
	c.JSON(http.StatusOK, response)
}

// ListUsers returns every user except the caller.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	h.respond(c, users)
}

// SearchUsers handles searching for users by username.
// GET /api/users/search?q=query
func (h *UserHandlers) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "search query is required"})
		return
	}

	users, err := h.store.SearchUsers(c.Request.Context(), query, currentUserID(c), searchLimit)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("failed to search users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	h.respond(c, users)
}
