// Package clientstate keeps per-client aggregates in memory and mirrors them
// to a key-value store.
//
// The in-memory copy is authoritative. Mutations for one client run one at a
// time; the resulting record is written behind to the store by Run or Flush.
// Write failures are logged, never reach the caller and are retried with the
// next flush. Clients idle past a TTL leave memory through Sweep once their
// state is stored.
package clientstate

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kmedi-tour/internal/storage"
)

// Store names used as key prefixes.
const (
	CartStore     = "kmedi-cart"
	WishlistStore = "kmedi-wishlist"
	RecentStore   = "kmedi-recent"
	AuthStore     = "kmedi-auth"
)

type entry[T any] struct {
	mu      sync.Mutex
	loaded  bool
	dropped bool
	value   T

	// touched is guarded by Mirror.mu.
	touched time.Time
}

// Mirror holds one aggregate of type T per client.
type Mirror[T any] struct {
	name  string
	store storage.Store
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry[T]
	dirty   map[string]struct{}
	saving  map[string]int
	notify  chan struct{}
}

// New creates a Mirror whose records live under name in store.
func New[T any](name string, store storage.Store) *Mirror[T] {
	return &Mirror[T]{
		name:    name,
		store:   store,
		now:     time.Now,
		entries: make(map[string]*entry[T]),
		dirty:   make(map[string]struct{}),
		saving:  make(map[string]int),
		notify:  make(chan struct{}, 1),
	}
}

// Key returns the store key for a client.
func (m *Mirror[T]) Key(clientID string) string {
	return m.name + "/" + clientID
}

// View calls fn with the client's aggregate. fn must not retain the pointer.
func (m *Mirror[T]) View(ctx context.Context, clientID string, fn func(*T)) error {
	e, err := m.acquire(ctx, clientID)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	fn(&e.value)
	return nil
}

// Update applies fn to the client's aggregate. When fn succeeds the record is
// queued for persistence; fn is expected to leave the value untouched when it
// fails.
func (m *Mirror[T]) Update(ctx context.Context, clientID string, fn func(*T) error) error {
	e, err := m.acquire(ctx, clientID)
	if err != nil {
		return err
	}
	err = fn(&e.value)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	m.markDirty(clientID)
	return nil
}

// acquire returns the locked entry for clientID, loading it on first use.
func (m *Mirror[T]) acquire(ctx context.Context, clientID string) (*entry[T], error) {
	for {
		m.mu.Lock()
		e, ok := m.entries[clientID]
		if !ok {
			e = &entry[T]{}
			m.entries[clientID] = e
		}
		e.touched = m.now()
		m.mu.Unlock()

		e.mu.Lock()
		if e.dropped {
			// Swept between lookup and lock; take the replacement.
			e.mu.Unlock()
			continue
		}
		if !e.loaded {
			if err := m.load(ctx, clientID, &e.value); err != nil {
				e.mu.Unlock()
				return nil, err
			}
			e.loaded = true
		}
		return e, nil
	}
}

func (m *Mirror[T]) load(ctx context.Context, clientID string, dst *T) error {
	data, err := m.store.Get(ctx, m.Key(clientID))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return errors.Wrapf(err, "load %s", m.name)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A corrupt record is replaced by a fresh aggregate on next write.
		zctx.From(ctx).Warn("Discarding unreadable client state",
			zap.String("key", m.Key(clientID)),
			zap.Error(err),
		)
		var zero T
		*dst = zero
	}
	return nil
}

func (m *Mirror[T]) markDirty(clientID string) {
	m.mu.Lock()
	m.dirty[clientID] = struct{}{}
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Flush writes every pending record now. Records that fail to write stay
// pending.
func (m *Mirror[T]) Flush(ctx context.Context) {
	m.mu.Lock()
	pending := m.dirty
	m.dirty = make(map[string]struct{})
	for clientID := range pending {
		m.saving[clientID]++
	}
	m.mu.Unlock()

	lg := zctx.From(ctx)
	for clientID := range pending {
		key := m.Key(clientID)
		err := m.save(ctx, clientID)
		if err != nil {
			lg.Warn("Persist client state", zap.String("key", key), zap.Error(err))
		}

		m.mu.Lock()
		m.saving[clientID]--
		if m.saving[clientID] == 0 {
			delete(m.saving, clientID)
		}
		if err != nil {
			m.dirty[clientID] = struct{}{}
		}
		m.mu.Unlock()
	}
}

func (m *Mirror[T]) save(ctx context.Context, clientID string) error {
	data, err := m.snapshot(clientID)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	return m.store.Set(ctx, m.Key(clientID), data)
}

func (m *Mirror[T]) snapshot(clientID string) ([]byte, error) {
	m.mu.Lock()
	e, ok := m.entries[clientID]
	m.mu.Unlock()
	if !ok {
		return nil, errors.Errorf("client %q not in memory", clientID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return json.Marshal(e.value)
}

// Sweep drops clients idle for longer than ttl whose state is already
// stored, and returns how many were dropped. Clients with unsaved changes or
// a call in progress are kept. A dropped client is loaded again on next use.
func (m *Mirror[T]) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for clientID, e := range m.entries {
		if !e.touched.Before(cutoff) {
			continue
		}
		if _, ok := m.dirty[clientID]; ok {
			continue
		}
		if _, ok := m.saving[clientID]; ok {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.dropped = true
		e.mu.Unlock()
		delete(m.entries, clientID)
		removed++
	}
	return removed
}

// Len reports how many clients are held in memory.
func (m *Mirror[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run writes records behind until ctx is done, then flushes what is left.
func (m *Mirror[T]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			m.Flush(context.WithoutCancel(ctx))
			return nil
		case <-m.notify:
			m.Flush(ctx)
		}
	}
}

// Pending reports how many clients have unsaved changes.
func (m *Mirror[T]) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty)
}
