package core

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
)

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	first := NewClient("c1", "alice", "", 1)
	second := NewClient("c2", "alice", "", 1)

	fresh, previous := r.Register("alice", first)
	if !fresh || previous != nil {
		t.Fatalf("first register: fresh=%v previous=%v", fresh, previous)
	}

	fresh, previous = r.Register("alice", second)
	if fresh || previous != first {
		t.Fatalf("second register: fresh=%v previous=%v", fresh, previous)
	}

	got, ok := r.Lookup("alice")
	if !ok || got != second {
		t.Fatalf("lookup returned %v, want newest client", got)
	}
}

func TestRegistryStaleUnregisterKeepsNewerSession(t *testing.T) {
	r := NewRegistry()
	old := NewClient("c1", "alice", "", 1)
	current := NewClient("c2", "alice", "", 1)
	r.Register("alice", old)
	r.Register("alice", current)

	if r.Unregister("alice", old) {
		t.Fatal("stale unregister must not remove the newer session")
	}
	if got, _ := r.Lookup("alice"); got != current {
		t.Fatal("newer session was evicted")
	}
	if !r.Unregister("alice", current) {
		t.Fatal("current unregister should succeed")
	}
	if r.Unregister("alice", current) {
		t.Fatal("second unregister should be a no-op")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistrySnapshotSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"carol", "alice", "bob"} {
		r.Register(id, NewClient("c-"+id, id, "", 1))
	}

	if got, want := r.Snapshot(), []string{"alice", "bob", "carol"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}
}

func TestClientDeliverOverflowClosesClient(t *testing.T) {
	c := NewClient("c1", "alice", "", 1)
	if !c.Deliver(&Event{Kind: EventUserStatus}) {
		t.Fatal("first deliver should fit the buffer")
	}
	if c.Deliver(&Event{Kind: EventUserStatus}) {
		t.Fatal("deliver into a full buffer should fail")
	}
	if !c.Closed() || c.CloseReason() != CloseReasonSlowConsumer {
		t.Fatalf("expected slow consumer close, got closed=%v reason=%q", c.Closed(), c.CloseReason())
	}
	if c.Deliver(&Event{Kind: EventUserStatus}) {
		t.Fatal("deliver on a closed client must be a no-op")
	}

	c.Close("other")
	if c.CloseReason() != CloseReasonSlowConsumer {
		t.Fatal("close reason must keep the first value")
	}
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("alice")
	unlockOther := k.Lock("bob")
	unlock()
	unlockOther()

	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.locks) != 0 {
		t.Fatalf("expected no retained locks, got %d", len(k.locks))
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	r := NewRegistry()
	users := []string{"alice", "bob", "carol", "dave"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				id := users[(i+j)%len(users)]
				c := NewClient(fmt.Sprintf("c-%d-%d", i, j), id, "", 1)
				r.Register(id, c)
				if got, ok := r.Lookup(id); ok && got.UserID != id {
					t.Errorf("lookup %s returned client of %s", id, got.UserID)
				}
				if snap := r.Snapshot(); !sort.StringsAreSorted(snap) {
					t.Errorf("snapshot not sorted: %v", snap)
				}
				r.Unregister(id, c)
			}
		}()
	}
	wg.Wait()

	// Each client was unregistered by its owner after its own registration,
	// so the newest one for every user is gone as well.
	if r.Len() != 0 {
		t.Fatalf("registry holds %v, want empty", r.Snapshot())
	}
}
