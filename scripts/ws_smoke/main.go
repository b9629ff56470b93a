package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

type account struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// ws_smoke registers two throwaway users, connects both and checks that a
// direct message and its read receipt travel end to end.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	text := flag.String("text", "hello from smoke test", "message content to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	suffix := uuid.NewString()[:8]
	sender, err := register(ctx, *base, "smoke-a-"+suffix)
	if err != nil {
		return err
	}
	receiver, err := register(ctx, *base, "smoke-b-"+suffix)
	if err != nil {
		return err
	}

	wsBase := "ws" + strings.TrimPrefix(*base, "http") + "/ws?token="
	senderConn, _, err := websocket.Dial(ctx, wsBase+sender.Token, nil)
	if err != nil {
		return fmt.Errorf("dial sender: %w", err)
	}
	defer senderConn.Close(websocket.StatusNormalClosure, "bye")

	receiverConn, _, err := websocket.Dial(ctx, wsBase+receiver.Token, nil)
	if err != nil {
		return fmt.Errorf("dial receiver: %w", err)
	}
	defer receiverConn.Close(websocket.StatusNormalClosure, "bye")

	if _, err := waitFor(ctx, receiverConn, "online-users"); err != nil {
		return err
	}
	if err := send(ctx, senderConn, proto.InboundTypeSendMessage, proto.SendMessageData{ReceiverID: receiver.User.ID, Content: *text}); err != nil {
		return err
	}

	raw, err := waitFor(ctx, receiverConn, "receive-message")
	if err != nil {
		return err
	}
	var msg proto.MessageData
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	fmt.Printf("received message id=%d from=%s content=%q\n", msg.ID, msg.Sender.Username, msg.Content)

	if err := send(ctx, receiverConn, proto.InboundTypeMarkRead, proto.MarkReadData{SenderID: sender.User.ID}); err != nil {
		return err
	}
	raw, err = waitFor(ctx, senderConn, "messages-read")
	if err != nil {
		return err
	}
	var receipt proto.MessagesReadData
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return fmt.Errorf("decode receipt: %w", err)
	}
	if receipt.UserID != receiver.User.ID {
		return fmt.Errorf("receipt from %q, want %q", receipt.UserID, receiver.User.ID)
	}
	fmt.Println("read receipt delivered")
	return nil
}

func register(ctx context.Context, base, username string) (*account, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": "smoke-password"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/register", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("register %s: status %d", username, resp.StatusCode)
	}

	var acc account
	if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &acc, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func waitFor(ctx context.Context, conn *websocket.Conn, event string) (json.RawMessage, error) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return nil, fmt.Errorf("waiting for %s: %w", event, err)
		}
		if f.Type == proto.OutboundTypeError && f.Error != nil {
			return nil, fmt.Errorf("server error %s: %s", f.Error.Code, f.Error.Msg)
		}
		if f.Event == event {
			return f.Data, nil
		}
	}
}
