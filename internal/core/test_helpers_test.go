package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-dm/internal/store"
)

func mustEvent(t *testing.T, c *Client, kind EventKind) *Event {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events:
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("%s: expected event %v not received", c.UserID, kind)
			return nil
		}
	}
}

func noEvent(t *testing.T, c *Client, kind EventKind) {
	t.Helper()

	for {
		select {
		case ev := <-c.Events:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("%s: unexpected event %v: %+v", c.UserID, kind, ev)
			}
		case <-time.After(20 * time.Millisecond):
			return
		}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.Events:
		default:
			return
		}
	}
}

var errInjected = errors.New("injected failure")

type presenceWrite struct {
	UserID   string
	Online   bool
	LastSeen time.Time
}

// memStore is an in-memory IdentityStore and MessageStore with failure injection.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*store.User
	messages []*store.Message
	presence []presenceWrite
	nextID   int64

	failPresence bool
	failSave     bool
	failMarkRead bool
}

func newMemStore(users ...string) *memStore {
	s := &memStore{users: make(map[string]*store.User)}
	for _, id := range users {
		s.users[id] = &store.User{ID: id, Username: id + "-name", Avatar: id + ".png"}
	}
	return s
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) SetPresence(_ context.Context, userID string, online bool, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPresence {
		return errInjected
	}
	s.presence = append(s.presence, presenceWrite{UserID: userID, Online: online, LastSeen: lastSeen})
	if u, ok := s.users[userID]; ok {
		u.IsOnline = online
		u.LastSeen = &lastSeen
	}
	return nil
}

func (s *memStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errInjected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.nextID++
	msg.ID = s.nextID
	cp := *msg
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memStore) MarkConversationRead(_ context.Context, senderID, receiverID string, readAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMarkRead {
		return 0, errInjected
	}
	var n int64
	for _, m := range s.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			at := readAt
			m.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (s *memStore) presenceLog() []presenceWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]presenceWrite(nil), s.presence...)
}

func (s *memStore) stored() []*store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*store.Message(nil), s.messages...)
}

func newTestHub(s *memStore, opts Options) *Hub {
	return NewHub(s, s, opts)
}

// fixedClock returns a clock that reports at and can be moved forward.
type fixedClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *fixedClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
}

func connect(t *testing.T, h *Hub, userID string) *Client {
	t.Helper()
	c := NewClient("conn-"+userID, userID, userID+"-name", 32)
	h.Connect(context.Background(), c)
	return c
}

// countingMetrics records dropped deliveries and ignores everything else.
type countingMetrics struct {
	nopMetrics
	mu    sync.Mutex
	drops int
}

func (m *countingMetrics) DeliveryDropped(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drops++
}

func (m *countingMetrics) dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drops
}
