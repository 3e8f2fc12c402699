package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetOrCreateNewSession(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)

	id := store.GetOrCreate("")
	if id == "" {
		t.Fatal("expected generated session id")
	}
	if got := store.GetOrCreate(id); got != id {
		t.Errorf("existing session returned different id: %s vs %s", got, id)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}
}

func TestGetOrCreateUnknownIDCreates(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)

	id := store.GetOrCreate("client-supplied-id")
	if id != "client-supplied-id" {
		t.Errorf("unknown id should be adopted, got %s", id)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}
}

func TestAppendTurnsAndHistory(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)
	id := store.GetOrCreate("")

	if !store.AppendTurns(id, "hello", "hi there") {
		t.Fatal("append failed for live session")
	}

	history := store.History(id, 0)
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "hello" {
		t.Errorf("first turn = %+v", history[0])
	}
	if history[1].Role != "assistant" || history[1].Content != "hi there" {
		t.Errorf("second turn = %+v", history[1])
	}
}

func TestAppendTurnsUnknownSession(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)
	if store.AppendTurns("missing", "a", "b") {
		t.Error("append to unknown session should report false")
	}
}

func TestHistoryWindowAndCap(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)
	id := store.GetOrCreate("")

	for i := 0; i < 8; i++ {
		store.AppendTurns(id, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	// 16 turns written, only the last 10 retained.
	all := store.History(id, 0)
	if len(all) != maxTurns {
		t.Fatalf("retained %d turns, want %d", len(all), maxTurns)
	}
	if all[0].Content != "q3" {
		t.Errorf("oldest retained turn = %q, want q3", all[0].Content)
	}

	recent := store.History(id, 4)
	if len(recent) != 4 {
		t.Fatalf("windowed history = %d turns, want 4", len(recent))
	}
	if recent[3].Content != "a7" {
		t.Errorf("newest turn = %q, want a7", recent[3].Content)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)
	id := store.GetOrCreate("")

	store.Clear(id)
	store.Clear(id) // second clear must not panic or error
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d sessions", store.Len())
	}
}

func TestExpireIdle(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(clock, 30*time.Minute, nil)

	stale := store.GetOrCreate("")
	clock.Advance(20 * time.Minute)
	fresh := store.GetOrCreate("")

	clock.Advance(15 * time.Minute) // stale idle 35m, fresh idle 15m
	removed := store.ExpireIdle(clock.Now())
	if removed != 1 {
		t.Fatalf("expired %d sessions, want 1", removed)
	}
	if store.History(stale, 0) != nil {
		t.Error("stale session should be gone")
	}
	if store.GetOrCreate(fresh) != fresh {
		t.Error("fresh session should survive")
	}
}

func TestActivityRefreshesTTL(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(clock, 30*time.Minute, nil)

	id := store.GetOrCreate("")
	clock.Advance(20 * time.Minute)
	store.AppendTurns(id, "still here", "glad to hear it")

	clock.Advance(20 * time.Minute) // 40m since create, 20m since last turn
	if removed := store.ExpireIdle(clock.Now()); removed != 0 {
		t.Errorf("active session expired, removed=%d", removed)
	}
}

func TestConcurrentAppends(t *testing.T) {
	store := NewStore(newFakeClock(), 30*time.Minute, nil)
	id := store.GetOrCreate("")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.AppendTurns(id, fmt.Sprintf("q%d", n), fmt.Sprintf("a%d", n))
		}(i)
	}
	wg.Wait()

	history := store.History(id, 0)
	if len(history) != maxTurns {
		t.Fatalf("retained %d turns, want %d", len(history), maxTurns)
	}
	// Pairs must stay adjacent: every user turn is followed by its
	// assistant turn from the same request.
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != "user" || history[i+1].Role != "assistant" {
			t.Fatalf("turn pair broken at index %d: %s/%s", i, history[i].Role, history[i+1].Role)
		}
		if strings.TrimPrefix(history[i].Content, "q") != strings.TrimPrefix(history[i+1].Content, "a") {
			t.Fatalf("mismatched pair at index %d: %q vs %q", i, history[i].Content, history[i+1].Content)
		}
	}
}
