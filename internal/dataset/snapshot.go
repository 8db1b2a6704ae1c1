// Package dataset loads the precomputed aggregate files into immutable
// snapshots and swaps them atomically when the files change.
package dataset

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// Snapshot is one consistent load of every resource. A nil field means the
// resource was missing or unreadable; sections depending on it render empty.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time

	Metadata               *period.Dataset[models.Metadata]
	CommanderStats         *period.Dataset[[]models.CommanderStat]
	CardStats              *period.Dataset[[]models.CardStat]
	Trends                 *period.Dataset[models.Trends]
	Matchups               *period.Dataset[models.Matchups]
	MulliganStats          *period.Dataset[[]models.MulliganStat]
	CommanderMulliganStats *period.Dataset[map[string][]models.MulliganStat]
	DurationWinrates       *period.Dataset[models.BucketSeries]
	ActionWinrates         *period.Dataset[models.BucketSeries]
	TurnWinrates           *period.Dataset[models.BucketSeries]
	Players                *period.Dataset[[]models.PlayerStat]
	Commanders             *period.Dataset[[]models.CommanderInfo]
	DeckComposition        *period.Dataset[map[string]models.DeckComposition]
	Distributions          *period.Dataset[models.GameDistributions]
}

// Store holds the current snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*Snapshot)
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Current returns the active snapshot. It is never nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap installs snap as the active snapshot, stamping it with the next
// version, and notifies listeners.
func (s *Store) Swap(snap *Snapshot) {
	snap.Version = s.version.Add(1)
	s.current.Store(snap)

	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]func(*Snapshot), len(ids))
	for i, id := range ids {
		listeners[i] = s.listeners[id]
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// OnSwap registers fn to run after every Swap, in registration order.
// The returned function removes it.
func (s *Store) OnSwap(fn func(*Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(*Snapshot))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
