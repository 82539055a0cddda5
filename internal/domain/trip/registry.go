package trip

import (
	"sync"
	"time"
)

type session struct {
	mu      sync.Mutex
	wizard  *Wizard
	dropped bool

	// touched is guarded by Registry.mu.
	touched time.Time
}

// Registry keeps one wizard per client. Wizards live in memory only.
type Registry struct {
	opts []Option
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewRegistry creates a registry whose wizards are built with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (r *Registry) session(clientID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		s = &session{wizard: NewWizard(r.opts...)}
		r.sessions[clientID] = s
	}
	s.touched = r.now()
	return s
}

// Do runs fn against the client's wizard. Calls for the same client are
// serialized; fn must not retain the wizard.
func (r *Registry) Do(clientID string, fn func(w *Wizard) error) error {
	for {
		s := r.session(clientID)
		s.mu.Lock()
		if s.dropped {
			// Swept between lookup and lock; take the replacement.
			s.mu.Unlock()
			continue
		}
		err := fn(s.wizard)
		s.mu.Unlock()
		return err
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many were
// removed. Sessions with a call in progress are kept.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if !s.touched.Before(cutoff) || !s.mu.TryLock() {
			continue
		}
		s.dropped = true
		s.mu.Unlock()
		delete(r.sessions, id)
		removed++
	}
	return removed
}
