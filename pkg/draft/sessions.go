package draft

import (
	"sync"
	"time"

	"github.com/klokku/kladd/internal/utils"
)

// session pairs a live draft with its activity bookkeeping. The timestamps
// belong to the store and are only touched under its lock.
type session struct {
	draft      *Draft
	createdAt  time.Time
	lastActive time.Time
}

// SessionStore keeps open drafts in memory. Sessions are never persisted;
// they either end in a save, a discard, or expiry by the sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	clock    utils.Clock
	ttl      time.Duration
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity.
func NewSessionStore(clock utils.Clock, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		clock:    clock,
		ttl:      ttl,
	}
}

// Add registers the draft and stamps its activity times.
func (s *SessionStore) Add(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sessions[d.ID] = &session{draft: d, createdAt: now, lastActive: now}
}

// Get returns the draft with the given id and marks it as active.
func (s *SessionStore) Get(id string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastActive = s.clock.Now()
	return sess.draft, true
}

// Remove takes the draft out of the store and returns it.
func (s *SessionStore) Remove(id string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	return sess.draft, true
}

// Sweep removes every session that has been inactive longer than the ttl
// and returns the removed drafts.
func (s *SessionStore) Sweep() []*Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.ttl)
	var expired []*Draft
	for id, sess := range s.sessions {
		if sess.lastActive.After(cutoff) {
			continue
		}
		expired = append(expired, sess.draft)
		delete(s.sessions, id)
	}
	return expired
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
