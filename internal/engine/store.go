package engine

import (
	"fmt"
	"sync"

	"github.com/repolens/repolens/pkg/models"
)

// DefaultStoreCapacity bounds the snapshot store when no capacity is
// configured.
const DefaultStoreCapacity = 64

// Store is a bounded in-memory snapshot store. When full, the oldest
// snapshot is evicted first. Snapshots are immutable once stored.
type Store struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	items    map[string]*models.AnalysisSnapshot
}

// NewStore creates a store holding at most capacity snapshots.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &Store{
		capacity: capacity,
		items:    make(map[string]*models.AnalysisSnapshot, capacity),
	}
}

// Put stores a snapshot, evicting the oldest entry when at capacity.
// Storing a second snapshot under an existing ID is refused; IDs identify
// exactly one analysis run forever.
func (s *Store) Put(snap *models.AnalysisSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[snap.ID]; exists {
		return fmt.Errorf("snapshot id %s already in use", snap.ID)
	}

	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}

	s.items[snap.ID] = snap
	s.order = append(s.order, snap.ID)
	return nil
}

// Get returns the snapshot stored under id.
func (s *Store) Get(id string) (*models.AnalysisSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.items[id]
	return snap, ok
}

// Contains reports whether id is currently stored.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

// List returns stored snapshots oldest first.
func (s *Store) List() []*models.AnalysisSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AnalysisSnapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
