package core

import (
	"context"
	"strconv"
	"testing"
)

func benchmarkPresenceBroadcast(b *testing.B, recipients int) {
	hub := newTestHub(newMemStore(), Options{})

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		c := NewClient("c"+strconv.Itoa(i), "user-"+strconv.Itoa(i), "", 2*recipients+8)
		hub.Connect(context.Background(), c)
		clients = append(clients, c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c := NewClient("bench", "bench-user", "", 4)
		hub.Connect(context.Background(), c)
		hub.Disconnect(context.Background(), c)
		for _, cl := range clients {
			drain(cl)
		}
	}
}

func BenchmarkPresenceBroadcast10(b *testing.B)  { benchmarkPresenceBroadcast(b, 10) }
func BenchmarkPresenceBroadcast100(b *testing.B) { benchmarkPresenceBroadcast(b, 100) }

func BenchmarkSendMessage(b *testing.B) {
	hub := newTestHub(newMemStore("alice", "bob"), Options{MaxContentLength: 4000})
	alice := NewClient("a", "alice", "", 64)
	bob := NewClient("b", "bob", "", 64)
	hub.Connect(context.Background(), alice)
	hub.Connect(context.Background(), bob)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := hub.pipeline.Send(context.Background(), alice, "bob", "hello"); err != nil {
			b.Fatal(err)
		}
		drain(alice)
		drain(bob)
	}
}
