package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hotlist/hotlist/pkg/types"
)

// Snapshot is one published ranking. It is immutable once published:
// callers of Read must not modify Items.
type Snapshot struct {
	// ID identifies the refresh cycle that produced the snapshot.
	// Empty for the initial snapshot.
	ID          string
	Items       []types.ScoredEvent
	PublishedAt time.Time // zero for the initial snapshot
}

// Len returns the number of ranked items.
func (s *Snapshot) Len() int { return len(s.Items) }

// Store is the single-slot snapshot container.
type Store struct {
	cur atomic.Pointer[Snapshot]
	wmu sync.Mutex
	now func() time.Time // injectable for deterministic tests
}

// New returns a Store holding the empty initial snapshot.
func New() *Store {
	s := &Store{now: time.Now}
	s.cur.Store(&Snapshot{Items: []types.ScoredEvent{}})
	return s
}

// Publish replaces the current snapshot with a new one built from items and
// returns it. items is copied, so the caller may reuse its slice.
func (s *Store) Publish(id string, items []types.ScoredEvent) *Snapshot {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	snap := &Snapshot{
		ID:          id,
		Items:       append(make([]types.ScoredEvent, 0, len(items)), items...),
		PublishedAt: s.now().UTC(),
	}
	s.cur.Store(snap)
	return snap
}

// Read returns the most recently published snapshot. It never blocks.
func (s *Store) Read() *Snapshot {
	return s.cur.Load()
}
