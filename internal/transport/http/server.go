package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/auth"
	"github.com/vovakirdan/wirechat-dm/internal/config"
	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/store"
)

// NewServer builds the HTTP server: health, the live connection endpoint and
// the REST API. metrics is mounted on /metrics when non-nil.
func NewServer(
	hub *core.Hub,
	authService *auth.Service,
	st store.Store,
	cfg *config.Config,
	logger *zerolog.Logger,
	metrics stdhttp.Handler,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	apiHandlers := NewAPIHandlers(authService, st, hub, logger)
	userHandlers := NewUserHandlers(st, hub, logger)
	messageHandlers := NewMessageHandlers(st, hub, logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	protected := api.Group("", AuthMiddleware(authService, logger))
	protected.GET("/me", apiHandlers.Me)
	protected.GET("/users", userHandlers.ListUsers)
	protected.GET("/users/search", userHandlers.SearchUsers)
	protected.GET("/messages/unread/count", messageHandlers.UnreadCount)
	protected.PUT("/messages/read/:userId", messageHandlers.MarkRead)
	protected.GET("/messages/:userId", messageHandlers.History)

	// The live endpoint stays outside gin: its response writer cannot be
	// hijacked once gin has written the status.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, authService, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
