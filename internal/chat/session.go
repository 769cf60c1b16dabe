package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Session is one visitor's conversation about one job. Turns within a session
// are strictly sequential; the turn lock enforces that on the server even
// though the reference UI already disables input while a turn is in flight.
type Session struct {
	Key  string
	Conv *Conversation

	turnMu sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
}

// BeginTurn acquires the session's turn lock. It returns false when another
// turn is already in flight.
func (s *Session) BeginTurn() bool {
	return s.turnMu.TryLock()
}

// EndTurn releases the turn lock.
func (s *Session) EndTurn() {
	s.turnMu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Sessions holds the active conversations, keyed by (session id, job id).
// Sessions are memory-only: an abandoned session is swept after the idle TTL
// and its conversation is gone, which is accepted behavior.
type Sessions struct {
	ttl   time.Duration
	clock Clock

	mu sync.Mutex
	m  map[string]*Session
}

// NewSessions creates a session table with the given idle TTL.
func NewSessions(ttl time.Duration) *Sessions {
	return NewSessionsWithClock(ttl, realClock{})
}

// NewSessionsWithClock creates a session table with a custom clock (for
// testing).
func NewSessionsWithClock(ttl time.Duration, clock Clock) *Sessions {
	return &Sessions{
		ttl:   ttl,
		clock: clock,
		m:     make(map[string]*Session),
	}
}

// Get returns the session for (sessionID, jobID), creating it on first use.
func (s *Sessions) Get(sessionID, jobID string) *Session {
	key := sessionID + "/" + jobID

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[key]
	if !ok {
		sess = &Session{Key: key, Conv: NewConversation()}
		s.m[key] = sess
	}
	sess.touch(s.clock.Now())
	return sess
}

// Peek returns the session for (sessionID, jobID) if it exists, without
// creating it or refreshing its idle timer.
func (s *Sessions) Peek(sessionID, jobID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[sessionID+"/"+jobID]
	return sess, ok
}

// Len returns the number of active sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep removes sessions idle longer than the TTL and returns how many were
// removed. Sessions with a turn in flight are kept regardless of idle time.
func (s *Sessions) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sess := range s.m {
		if sess.idleSince(now) < s.ttl {
			continue
		}
		if !sess.turnMu.TryLock() {
			continue
		}
		sess.turnMu.Unlock()
		delete(s.m, key)
		removed++
	}
	return removed
}

// RunJanitor sweeps expired sessions periodically until ctx is cancelled.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("swept expired chat sessions", "count", n)
			}
		}
	}
}
