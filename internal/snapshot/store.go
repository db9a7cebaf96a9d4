package snapshot

import (
	"sync"
	"time"

	"fondo/internal/core"
)

// Snapshot is one immutable view of the household's records. Consumers
// must treat every slice as read-only; replacing the snapshot is the
// only supported mutation.
type Snapshot struct {
	Transactions []core.Transaction
	Users        []core.User
	Projects     []core.Project
	Categories   []core.Category
	Version      uint64
	LoadedAt     time.Time
}

// Store holds the latest snapshot in a single slot. Writers replace the
// whole snapshot; readers get whichever version is current. A one-slot
// change channel coalesces bursts of replacements so a slow consumer
// sees at most one pending notification.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
	version uint64
	changed chan struct{}
}

func NewStore() *Store {
	return &Store{changed: make(chan struct{}, 1)}
}

// Current returns the latest snapshot. The zero snapshot (Version 0) is
// returned before the first Replace.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version returns the current snapshot's version without copying it.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Replace installs snap as the current snapshot, stamps it with the
// next version, and signals Changed. Returns the assigned version.
func (s *Store) Replace(snap Snapshot) uint64 {
	s.mu.Lock()
	s.version++
	snap.Version = s.version
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now()
	}
	s.current = snap
	v := s.version
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default: // a notification is already pending
	}
	return v
}

// Changed returns a channel that receives after Replace. Multiple
// replacements between reads collapse into a single receive.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}
