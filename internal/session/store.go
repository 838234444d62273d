package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canvasboard/canvas-chat/internal/log"
)

// Store is the concurrency-safe registry of sessions, keyed by opaque id.
// It is the single shared mutable resource across in-flight requests; every
// mutation is atomic with respect to lookups.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	maxHistory int
	logger     log.Logger
}

// NewStore creates an empty store. maxHistory is the per-session message
// cap applied to every session it creates.
func NewStore(maxHistory int, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		sessions:   make(map[string]*Session),
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// GetOrCreate returns the session for id, creating it when id is empty or
// unknown. An empty id gets a newly generated one; an unknown-but-present
// id is adopted as-is, so clients may pre-generate their own ids.
func (s *Store) GetOrCreate(id string) (string, *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			return id, sess
		}
	} else {
		id = uuid.NewString()
	}

	sess := newSession(s.maxHistory)
	s.sessions[id] = sess
	s.logger.Debug("created session", "session_id", id)
	return id, sess
}

// Get returns the session for id, if present.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session unconditionally. Deleting an absent id is a
// no-op, so the operation is idempotent.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictStale removes every session idle for at least ttl and returns the
// count removed. Callable from the background sweeper and from tests or
// administrative triggers.
func (s *Store) EvictStale(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !sess.LastActive().After(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("evicted stale sessions", "count", removed, "ttl", ttl)
	}
	return removed
}

// Sweep runs EvictStale on a timer until ctx is cancelled. It never blocks
// request handling: eviction takes the store lock only for the map scan.
func (s *Store) Sweep(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictStale(ttl)
		}
	}
}
