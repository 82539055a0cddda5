package assistant

import (
	"sync"
	"time"
)

type session struct {
	conv    *Conversation
	touched time.Time
}

// Sessions keeps one conversation per client in memory.
type Sessions struct {
	a   *Assistant
	now func() time.Time

	mu    sync.Mutex
	convs map[string]*session
}

// NewSessions creates an empty session set served by a.
func NewSessions(a *Assistant) *Sessions {
	return &Sessions{a: a, now: time.Now, convs: make(map[string]*session)}
}

// Get returns the client's conversation, starting one if needed.
func (s *Sessions) Get(clientID string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.convs[clientID]
	if !ok {
		sess = &session{conv: s.a.NewConversation()}
		s.convs[clientID] = sess
	}
	sess.touched = s.now()
	return sess.conv
}

// Sweep drops conversations idle for longer than ttl and returns how many
// were dropped. Conversations waiting for a reply are kept.
func (s *Sessions) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.convs {
		if sess.touched.Before(cutoff) && !sess.conv.Busy() {
			delete(s.convs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live conversations.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

// Assistant returns the assistant that answers in these sessions.
func (s *Sessions) Assistant() *Assistant { return s.a }
