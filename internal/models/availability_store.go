package models

import (
	"sort"
	"sync"
	"time"
)

// AvailabilityStore holds one availability record per user. Upserts replace
// the previous record wholesale (last-write-wins); reads return deep copies
// so a running aggregation never observes a concurrent write.
type AvailabilityStore struct {
	mu   sync.RWMutex
	data map[string]*UserAvailability
}

func NewAvailabilityStore() *AvailabilityStore {
	return &AvailabilityStore{
		data: make(map[string]*UserAvailability),
	}
}

// Upsert stores the record under its user ID, stamping UpdatedAt.
// Returns a copy of what was stored.
func (s *AvailabilityStore) Upsert(rec *UserAvailability) *UserAvailability {
	if rec == nil || rec.UserID == "" {
		return nil
	}
	stored := rec.Clone()
	stored.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.data[stored.UserID] = stored
	s.mu.Unlock()

	return stored.Clone()
}

func (s *AvailabilityStore) Get(userID string) (*UserAvailability, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[userID]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (s *AvailabilityStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
}

func (s *AvailabilityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// UserIDs returns the IDs of all stored records, sorted.
func (s *AvailabilityStore) UserIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// GetData returns a deep copy of all records for snapshot persistence.
func (s *AvailabilityStore) GetData() map[string]*UserAvailability {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*UserAvailability, len(s.data))
	for id, rec := range s.data {
		result[id] = rec.Clone()
	}
	return result
}

// PutData replaces the store contents, used when restoring a snapshot.
func (s *AvailabilityStore) PutData(data map[string]*UserAvailability) {
	fresh := make(map[string]*UserAvailability, len(data))
	for id, rec := range data {
		if id == "" || rec == nil {
			continue
		}
		cp := rec.Clone()
		cp.UserID = id
		fresh[id] = cp
	}

	s.mu.Lock()
	s.data = fresh
	s.mu.Unlock()
}

// SweepStale removes and returns records whose UpdatedAt is older than the
// given TTL relative to now.
func (s *AvailabilityStore) SweepStale(olderThan time.Duration, now time.Time) []*UserAvailability {
	if olderThan <= 0 {
		return nil
	}
	cutoff := now.Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []*UserAvailability
	for id, rec := range s.data {
		if rec.UpdatedAt.Before(cutoff) {
			stale = append(stale, rec)
			delete(s.data, id)
		}
	}
	return stale
}
