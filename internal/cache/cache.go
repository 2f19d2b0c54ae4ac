// Package cache holds the session's authoritative client-side view of
// all leads. It is refreshed wholesale from the remote store on every
// credential change and read synchronously by everything else; all
// writes go through the mutation pipeline's single write path.
package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/luminacrm/lumina/internal/entity"
)

// Fetcher is the one read the cache performs against the remote store.
type Fetcher interface {
	FetchLeads(ctx context.Context) ([]entity.Lead, error)
}

type loadCall struct {
	done chan struct{}
	err  error
}

// Store is the in-memory lead cache. Reads never block on the network;
// Load replaces the whole contents atomically and a failed load leaves
// the previous contents untouched.
type Store struct {
	fetcher Fetcher

	mu    sync.RWMutex
	leads map[string]entity.Lead
	call  *loadCall
}

func NewStore(fetcher Fetcher) *Store {
	return &Store{
		fetcher: fetcher,
		leads:   make(map[string]entity.Lead),
	}
}

// Load fetches the full lead set and replaces the cache. At most one
// fetch is in flight: concurrent callers wait for it and share its
// result instead of racing a second request, so two loads can never
// clobber each other non-deterministically. Waiters honor their own
// context.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.call != nil {
		call := s.call
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &loadCall{done: make(chan struct{})}
	s.call = call
	s.mu.Unlock()

	leads, err := s.fetcher.FetchLeads(ctx)
	if err == nil {
		s.Replace(leads)
	}

	s.mu.Lock()
	s.call = nil
	s.mu.Unlock()
	call.err = err
	close(call.done)
	return err
}

// Snapshot returns a deep copy of the cache ordered newest-first by
// DateAdded (ties broken by id, so the order is deterministic). This is
// the only read path other components use.
func (s *Store) Snapshot() []entity.Lead {
	s.mu.RLock()
	out := make([]entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdded.Equal(out[j].DateAdded) {
			return out[i].DateAdded.After(out[j].DateAdded)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Get returns a copy of one lead.
func (s *Store) Get(id string) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.Lead{}, false
	}
	return l.Clone(), true
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.leads[id]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// Replace swaps the entire contents. Used by Load and by the forced
// session reset (with nil) on auth failure.
func (s *Store) Replace(leads []entity.Lead) {
	next := make(map[string]entity.Lead, len(leads))
	for _, l := range leads {
		next[l.ID] = l.Clone()
	}
	s.mu.Lock()
	s.leads = next
	s.mu.Unlock()
}

// Insert adds or overwrites one lead.
func (s *Store) Insert(l entity.Lead) {
	s.mu.Lock()
	s.leads[l.ID] = l.Clone()
	s.mu.Unlock()
}

// Patch applies fn to the cached lead under the write lock. Returns
// false when the id is absent.
func (s *Store) Patch(id string, fn func(*entity.Lead)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return false
	}
	fn(&l)
	s.leads[id] = l
	return true
}

// Remove deletes one lead, returning the removed record for undo.
func (s *Store) Remove(id string) (entity.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.Lead{}, false
	}
	delete(s.leads, id)
	return l, true
}
