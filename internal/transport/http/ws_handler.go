package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/auth"
	"github.com/vovakirdan/wirechat-dm/internal/config"
	"github.com/vovakirdan/wirechat-dm/internal/core"
	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

// errClosedByCore ends the write loop when the core closed the client.
var errClosedByCore = errors.New("client closed by core")

// WSHandler admits WebSocket connections and bridges them to core.Client.
type WSHandler struct {
	hub  *core.Hub
	auth *auth.Service
	cfg  *config.Config
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authService, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	credential := r.URL.Query().Get("token")
	if credential == "" {
		credential = auth.CredentialFromHeader(r.Header.Get("Authorization"))
	}
	identity, authErr := h.auth.Admit(r.Context(), credential)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	if authErr != nil {
		h.hub.Metrics().AdmissionRejected()
		h.log.Debug().Err(authErr).Str("remote", r.RemoteAddr).Msg("ws admission rejected")
		_ = conn.Close(websocket.StatusPolicyViolation, auth.ErrAuthentication.Error())
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(uuid.NewString(), identity.UserID, identity.Username, h.cfg.EventBuffer)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.hub.Connect(ctx, client)
	defer h.hub.Disconnect(context.WithoutCancel(ctx), client)

	limiter := newSendLimiter(h.cfg.MessageRate, h.cfg.MessageBurst)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel()
	<-errCh

	status, reason := h.closeStatus(client, err)
	_ = conn.Close(status, reason)
}

func (h *WSHandler) closeStatus(client *core.Client, err error) (websocket.StatusCode, string) {
	switch client.CloseReason() {
	case core.CloseReasonSuperseded:
		return websocket.StatusPolicyViolation, core.CloseReasonSuperseded
	case core.CloseReasonSlowConsumer:
		return websocket.StatusTryAgainLater, core.CloseReasonSlowConsumer
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err == nil || errors.Is(err, errClosedByCore) || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return status, reason
	}
	if s := websocket.CloseStatus(err); s != -1 {
		status = s
	}
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		return status, reason
	}
	if status == websocket.StatusMessageTooBig {
		return status, "message too big"
	}

	h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
	return websocket.StatusInternalError, "internal error"
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *sendLimiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("read ws inbound")
			return err
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			h.hub.Reject(client, protoErr.Code, protoErr.Msg)
			continue
		}

		if cmd.Kind == core.CommandSendMessage && !limiter.allow() {
			h.hub.Reject(client, core.ErrCodeRateLimited, "too many messages, slow down")
			continue
		}

		h.hub.Handle(ctx, client, cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-client.Done():
			// Close before the read context is cancelled, otherwise the
			// connection is torn down without a close frame.
			h.flush(ctx, conn, client)
			status, reason := h.closeStatus(client, errClosedByCore)
			_ = conn.Close(status, reason)
			return errClosedByCore
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flush writes events queued before the client was closed, such as session-replaced.
func (h *WSHandler) flush(ctx context.Context, conn *websocket.Conn, client *core.Client) {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				return
			}
		default:
			return
		}
	}
}
