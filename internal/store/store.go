// Package store keeps session shells in process memory. Nothing survives a
// restart.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adanyl0v/taskflow/internal/dashboard"
	"github.com/adanyl0v/taskflow/internal/models"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrAlreadyExists = errors.New("session already exists")
)

// Entry is the mutable state of one session. Its fields must only be
// accessed inside Store.With.
type Entry struct {
	mu sync.Mutex

	ID        string
	User      *models.User
	Pending   bool
	// AuthEpoch is bumped on logout so an authentication started
	// before it cannot sign the session back in.
	AuthEpoch uint64
	Board     dashboard.Board
	Notices   []models.Notice
	CreatedAt time.Time

	lastSeen atomic.Int64
}

func (e *Entry) LastSeenAt() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

func (e *Entry) touch(t time.Time) {
	e.lastSeen.Store(t.UnixNano())
}

// Snapshot copies the shell state of the entry.
func (e *Entry) Snapshot() models.Session {
	s := models.Session{
		ID:         e.ID,
		Pending:    e.Pending,
		CreatedAt:  e.CreatedAt,
		LastSeenAt: e.LastSeenAt(),
	}
	if e.User != nil {
		u := *e.User
		s.User = &u
	}
	return s
}

type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	idleTTL time.Duration
	now     func() time.Time
}

// New returns an empty store. Entries not touched for idleTTL are treated as
// gone. A nil now defaults to time.Now.
func New(idleTTL time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries: make(map[string]*Entry),
		idleTTL: idleTTL,
		now:     now,
	}
}

func (s *Store) Insert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok && !s.expired(e) {
		return ErrAlreadyExists
	}
	now := s.now()
	e := &Entry{
		ID:        id,
		CreatedAt: now,
	}
	e.touch(now)
	s.entries[id] = e
	return nil
}

// With runs fn with the entry locked and refreshes its last-seen time.
// Calls on the same entry never overlap.
func (s *Store) With(id string, fn func(e *Entry) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch(s.now())
	return fn(e)
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops idle entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done. onSweep, when not nil,
// receives the number of removed entries.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *Store) lookup(id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(e) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return e, nil
}

// expired does not take the entry lock; a racing With can only move the
// last-seen time forward, which at worst keeps an entry for one more sweep.
func (s *Store) expired(e *Entry) bool {
	if s.idleTTL <= 0 {
		return false
	}
	return s.now().Sub(e.LastSeenAt()) >= s.idleTTL
}
