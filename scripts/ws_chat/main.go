package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

type inboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", os.Getenv("WIRECHAT_TOKEN"), "bearer token (see `wirechat-dm token <user>`)")
	peer := flag.String("to", "", "user id to chat with")
	flag.Parse()

	if *token == "" || *peer == "" {
		return errors.New("-token and -to are required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"?token="+url.QueryEscape(*token), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s, chatting with %s\n", *addr, *peer)
	fmt.Println("Type a message and press Enter. /read marks the conversation read. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn, *peer)
	}()

	writeLoop(ctx, conn, *peer)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, peer string) {
	for {
		var frame inboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			case websocket.StatusPolicyViolation:
				var ce websocket.CloseError
				if errors.As(err, &ce) {
					fmt.Printf("connection closed: %s\n", ce.Reason)
				}
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if frame.Type == proto.OutboundTypeError && frame.Error != nil {
			fmt.Printf("! %s: %s\n", frame.Error.Code, frame.Error.Msg)
			continue
		}

		switch frame.Event {
		case "receive-message", "message-sent":
			var msg proto.MessageData
			if decode(frame.Data, &msg) {
				fmt.Printf("[%s] %s: %s\n", msg.CreatedAt, displayName(msg.Sender), msg.Content)
			}
		case "message-error":
			var data proto.MessageErrorData
			if decode(frame.Data, &data) {
				fmt.Printf("! not sent: %s\n", data.Reason)
			}
		case "user-status":
			var data proto.UserStatusData
			if decode(frame.Data, &data) && data.UserID == peer {
				state := "offline"
				if data.IsOnline {
					state = "online"
				}
				fmt.Printf("* %s is %s\n", peer, state)
			}
		case "user-typing":
			var data proto.UserTypingData
			if decode(frame.Data, &data) && data.IsTyping {
				fmt.Printf("* %s is typing...\n", data.Username)
			}
		case "messages-read":
			var data proto.MessagesReadData
			if decode(frame.Data, &data) && data.UserID == peer {
				fmt.Printf("* %s read your messages\n", peer)
			}
		case "online-users":
			var data proto.OnlineUsersData
			if decode(frame.Data, &data) {
				fmt.Printf("* online: %s\n", strings.Join(data, ", "))
			}
		default:
			fmt.Printf("event=%s data=%s\n", frame.Event, frame.Data)
		}
	}
}

func decode(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("decode event: %v", err)
		return false
	}
	return true
}

func displayName(u proto.UserSummary) string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

func writeLoop(ctx context.Context, conn *websocket.Conn, peer string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var frameType string
			var data any
			if text == "/read" {
				frameType, data = proto.InboundTypeMarkRead, proto.MarkReadData{SenderID: peer}
			} else {
				frameType, data = proto.InboundTypeSendMessage, proto.SendMessageData{ReceiverID: peer, Content: text}
			}

			payload, err := json.Marshal(data)
			if err != nil {
				log.Printf("marshal %s: %v", frameType, err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
