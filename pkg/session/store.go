package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"carecompanion-be/internal/pkg/logger"
)

// Clock abstracts time so expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now.
func RealClock() Clock { return realClock{} }

// Turn is one message in a conversation.
type Turn struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// maxTurns bounds per-session history; older turns are dropped.
const maxTurns = 10

type sessionState struct {
	mu         sync.Mutex
	createdAt  time.Time
	lastActive time.Time
	turns      []Turn
}

// Store keeps conversations in memory. Sessions expire after sitting idle
// for the configured TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	clock    Clock
	ttl      time.Duration
	logger   logger.ILogger
}

func NewStore(clock Clock, ttl time.Duration, log logger.ILogger) *Store {
	if clock == nil {
		clock = RealClock()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		sessions: make(map[string]*sessionState),
		clock:    clock,
		ttl:      ttl,
		logger:   log,
	}
}

// GetOrCreate returns the id of an existing live session, or creates a new
// one. An unknown or expired id is treated as "create new", never an error.
func (s *Store) GetOrCreate(sessionID string) string {
	now := s.clock.Now()

	if sessionID != "" {
		s.mu.RLock()
		state, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			state.mu.Lock()
			state.lastActive = now
			state.mu.Unlock()
			return sessionID
		}
	}

	newID := sessionID
	if newID == "" {
		newID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Lost a race with another request creating the same id.
	if _, ok := s.sessions[newID]; !ok {
		s.sessions[newID] = &sessionState{
			createdAt:  now,
			lastActive: now,
		}
	}
	return newID
}

// AppendTurns records a user+assistant turn pair atomically. Callers invoke
// this only after a successful generation so a failed request leaves no
// half-written history.
func (s *Store) AppendTurns(sessionID string, userContent, assistantContent string) bool {
	s.mu.RLock()
	state, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	now := s.clock.Now()

	state.mu.Lock()
	defer state.mu.Unlock()
	state.turns = append(state.turns,
		Turn{Role: "user", Content: userContent, Timestamp: now},
		Turn{Role: "assistant", Content: assistantContent, Timestamp: now},
	)
	if len(state.turns) > maxTurns {
		state.turns = state.turns[len(state.turns)-maxTurns:]
	}
	state.lastActive = now
	return true
}

// History returns up to max recent turns, oldest first. A zero or negative
// max returns everything retained.
func (s *Store) History(sessionID string, max int) []Turn {
	s.mu.RLock()
	state, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	turns := state.turns
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes a session. Clearing an unknown id is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len reports how many sessions are currently live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ExpireIdle drops sessions idle longer than the TTL and reports how many
// were removed.
func (s *Store) ExpireIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, state := range s.sessions {
		state.mu.Lock()
		idle := now.Sub(state.lastActive)
		state.mu.Unlock()
		if idle >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired sessions until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.ExpireIdle(s.clock.Now()); removed > 0 && s.logger != nil {
					s.logger.Debug("session", "expired idle sessions", map[string]interface{}{"removed": removed})
				}
			}
		}
	}()
}
