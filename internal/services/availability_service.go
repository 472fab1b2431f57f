package services

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/atomic"

	"weschedule/internal/engine"
	"weschedule/internal/models"
	"weschedule/internal/structures"
)

// ColdStorageInterface is the slice of cold storage the service needs:
// archive swept records and bring them back on demand.
type ColdStorageInterface interface {
	Has(userID string) bool
	Evict(rec *models.UserAvailability)
	Restore(userID string) (*models.UserAvailability, error)
}

type AvailabilityServiceInterface interface {
	Upsert(rec *models.UserAvailability) (*models.UserAvailability, error)
	Get(userID string) (*models.UserAvailability, bool)
	Users() []string
	Coverage(userIDs []string, day models.DayKey) ([]models.CoverageSegment, error)
	Recommend(userIDs []string, day models.DayKey, minDuration, topK int) ([]models.RecommendedSlot, error)
	Revision() uint64
	RecordCount() int
	GetSnapshot() *models.Storage
	PutSnapshot(snapshot *models.Storage)
	SweepStale(olderThan time.Duration) int
	SetColdStorage(cold ColdStorageInterface)
}

// AvailabilityService orchestrates the store and the aggregation engine.
// The engine itself is pure; all state lives in the store, so every query
// operates on an immutable snapshot of the records it fetched.
type AvailabilityService struct {
	config   *structures.Config
	store    *models.AvailabilityStore
	cold     ColdStorageInterface
	revision atomic.Uint64
}

func NewAvailabilityService(config *structures.Config) AvailabilityServiceInterface {
	return &AvailabilityService{
		config: config,
		store:  models.NewAvailabilityStore(),
	}
}

// SetColdStorage wires the cold archive in after construction; the archive
// lives in the storage layer, which depends on this package.
func (as *AvailabilityService) SetColdStorage(cold ColdStorageInterface) {
	as.cold = cold
}

// Upsert validates, normalizes and stores a record, replacing any previous
// submission by the same user.
func (as *AvailabilityService) Upsert(rec *models.UserAvailability) (*models.UserAvailability, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: missing availability", models.ErrValidation)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	rec.Normalize()

	saved := as.store.Upsert(rec)
	as.revision.Inc()
	return saved, nil
}

// Get fetches a record, falling back to cold storage for swept users.
// A restored record is re-warmed into the store.
func (as *AvailabilityService) Get(userID string) (*models.UserAvailability, bool) {
	if rec, ok := as.store.Get(userID); ok {
		return rec, true
	}
	if as.cold == nil || !as.cold.Has(userID) {
		return nil, false
	}
	rec, err := as.cold.Restore(userID)
	if err != nil || rec == nil {
		return nil, false
	}
	warmed := as.store.Upsert(rec)
	as.revision.Inc()
	return warmed, true
}

func (as *AvailabilityService) Users() []string {
	return as.store.UserIDs()
}

// Coverage aggregates the queried users' windows for one day key into
// segments partitioning the full day. An empty user set yields an empty
// result, not an error.
func (as *AvailabilityService) Coverage(userIDs []string, day models.DayKey) ([]models.CoverageSegment, error) {
	queried := canonicalIDs(userIDs)
	if len(queried) == 0 {
		return []models.CoverageSegment{}, nil
	}
	if err := day.Validate(); err != nil {
		return nil, err
	}

	users := make([]engine.UserWindows, 0, len(queried))
	for _, id := range queried {
		uw := engine.UserWindows{ID: id}
		if rec, ok := as.Get(id); ok {
			uw.Windows = rec.WindowsFor(day)
		}
		users = append(users, uw)
	}
	return engine.Coverage(users), nil
}

// Recommend returns ranked candidate slots for the queried users and day.
// minDuration <= 0 falls back to the configured default; topK <= 0 returns
// all candidates.
func (as *AvailabilityService) Recommend(userIDs []string, day models.DayKey, minDuration, topK int) ([]models.RecommendedSlot, error) {
	queried := canonicalIDs(userIDs)
	if len(queried) == 0 {
		return []models.RecommendedSlot{}, nil
	}
	if minDuration <= 0 {
		minDuration = int(as.config.Engine.DefaultMinDuration.Minutes())
	}

	segments, err := as.Coverage(queried, day)
	if err != nil {
		return nil, err
	}
	return engine.Recommend(segments, day, queried, minDuration, topK), nil
}

func (as *AvailabilityService) Revision() uint64 {
	return as.revision.Load()
}

func (as *AvailabilityService) RecordCount() int {
	return as.store.Len()
}

func (as *AvailabilityService) GetSnapshot() *models.Storage {
	return &models.Storage{
		Version: models.StorageVersion,
		Users:   as.store.GetData(),
	}
}

func (as *AvailabilityService) PutSnapshot(snapshot *models.Storage) {
	if snapshot == nil {
		return
	}
	as.store.PutData(snapshot.Users)
	as.revision.Inc()
}

// SweepStale moves records not updated within olderThan into cold storage
// and returns how many were moved.
func (as *AvailabilityService) SweepStale(olderThan time.Duration) int {
	stale := as.store.SweepStale(olderThan, time.Now().UTC())
	if len(stale) == 0 {
		return 0
	}
	if as.cold != nil {
		for _, rec := range stale {
			as.cold.Evict(rec)
		}
	}
	as.revision.Inc()
	return len(stale)
}

// canonicalIDs sorts and deduplicates the queried user IDs, dropping empties.
func canonicalIDs(userIDs []string) []string {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
