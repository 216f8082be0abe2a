// internal/store/store.go
package store

import "sync"

// Snapshot is the complete set of most-recently sampled values for one
// device. Consumers must treat it as read-only; the sampler builds a fresh
// map every cycle, so a snapshot handed out once never changes underneath a
// reader.
type Snapshot map[string]float64

// Store is the shared snapshot table, keyed by device instance name.
// The sampler is the sole writer; readers never observe a partial update
// because snapshots are only ever swapped in wholesale.
type Store struct {
	mu    sync.RWMutex
	table map[string]Snapshot
}

// New returns an empty store.
func New() *Store {
	return &Store{table: make(map[string]Snapshot)}
}

// Seed installs an all-zero snapshot for a device so readers see every field
// from startup, before the first successful sampling cycle.
func (s *Store) Seed(device string, fields []string) {
	snap := make(Snapshot, len(fields))
	for _, f := range fields {
		snap[f] = 0
	}
	s.Replace(device, snap)
}

// Replace swaps in a complete new snapshot for a device.
func (s *Store) Replace(device string, snap Snapshot) {
	s.mu.Lock()
	s.table[device] = snap
	s.mu.Unlock()
}

// Get returns the current snapshot for a device. The returned map must not
// be mutated.
func (s *Store) Get(device string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.table[device]
	return snap, ok
}
