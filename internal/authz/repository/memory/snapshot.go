package memory

import (
	"sync/atomic"

	"github.com/capgate/capgate/internal/authz/domain"
)

// Snapshot pairs one immutable capability registry with one immutable policy set.
// A snapshot must never be mutated after it is published to a SnapshotStore.
type Snapshot struct {
	Registry *Registry
	Policies []domain.Policy
}

// SnapshotStore holds the active snapshot and supports atomic replacement for hot
// reload: a whole new snapshot is swapped in, never mutated in place, so a single
// authorization call always observes one coherent registry and policy set.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore creates a store seeded with an empty snapshot: no registered
// capabilities and no policies, so every request is denied until a real snapshot
// is published.
func NewSnapshotStore() *SnapshotStore {
	store := &SnapshotStore{}
	store.current.Store(&Snapshot{Registry: NewRegistry()})
	return store
}

// Replace atomically publishes a new snapshot. Concurrent readers either see the
// old snapshot or the new one, never a mix.
func (s *SnapshotStore) Replace(snapshot *Snapshot) {
	if snapshot.Registry == nil {
		snapshot.Registry = NewRegistry()
	}
	s.current.Store(snapshot)
}

// Current returns the active snapshot. Lock-free; safe for arbitrarily many
// concurrent callers.
func (s *SnapshotStore) Current() *Snapshot {
	return s.current.Load()
}
