package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weschedule/internal/models"
	"weschedule/internal/structures"
)

type mockColdStorage struct {
	entries  map[string]*models.UserAvailability
	evicted  []string
	restored []string
}

func newMockColdStorage() *mockColdStorage {
	return &mockColdStorage{entries: map[string]*models.UserAvailability{}}
}

func (m *mockColdStorage) Has(userID string) bool {
	_, ok := m.entries[userID]
	return ok
}

func (m *mockColdStorage) Evict(rec *models.UserAvailability) {
	m.entries[rec.UserID] = rec
	m.evicted = append(m.evicted, rec.UserID)
}

func (m *mockColdStorage) Restore(userID string) (*models.UserAvailability, error) {
	m.restored = append(m.restored, userID)
	rec := m.entries[userID]
	delete(m.entries, userID)
	return rec, nil
}

func testConfig() *structures.Config {
	return &structures.Config{
		Engine: structures.EngineConfig{
			DefaultMinDuration: 30 * time.Minute,
		},
	}
}

func record(userID string, day models.DayKey, windows ...models.TimeWindow) *models.UserAvailability {
	mode := models.ModeWeekly
	if day.IsDate() {
		mode = models.ModeDateSpecific
	}
	return &models.UserAvailability{
		UserID: userID,
		Mode:   mode,
		Days:   map[models.DayKey][]models.TimeWindow{day: windows},
	}
}

func TestAvailabilityService_UpsertAndGet(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	saved, err := svc.Upsert(record("alice", "Monday", models.TimeWindow{Start: 540, End: 1020}))
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, ok := svc.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, []string{"alice"}, svc.Users())
	assert.Equal(t, 1, svc.RecordCount())
}

func TestAvailabilityService_UpsertRejectsInvalid(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	_, err := svc.Upsert(nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Upsert(record("", "Monday", models.TimeWindow{Start: 540, End: 600}))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Upsert(record("alice", "Monday", models.TimeWindow{Start: 700, End: 600}))
	assert.ErrorIs(t, err, models.ErrInvalidWindow)

	assert.Equal(t, 0, svc.RecordCount())
	assert.Equal(t, uint64(0), svc.Revision())
}

func TestAvailabilityService_UpsertNormalizes(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	saved, err := svc.Upsert(record("alice", "Monday",
		models.TimeWindow{Start: 600, End: 720},
		models.TimeWindow{Start: 660, End: 780},
	))
	require.NoError(t, err)
	assert.Equal(t, []models.TimeWindow{{Start: 600, End: 780}}, saved.Days["Monday"])
}

func TestAvailabilityService_RevisionBumps(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	require.Equal(t, uint64(0), svc.Revision())

	_, err := svc.Upsert(record("alice", "Monday", models.TimeWindow{Start: 540, End: 600}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), svc.Revision())

	_, err = svc.Upsert(record("alice", "Tuesday", models.TimeWindow{Start: 540, End: 600}))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), svc.Revision())

	svc.PutSnapshot(&models.Storage{Version: models.StorageVersion})
	assert.Equal(t, uint64(3), svc.Revision())
}

func TestAvailabilityService_Coverage(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	_, err := svc.Upsert(record("alice", "Monday", models.TimeWindow{Start: 540, End: 1020}))
	require.NoError(t, err)
	_, err = svc.Upsert(record("bob", "Monday", models.TimeWindow{Start: 600, End: 900}))
	require.NoError(t, err)

	segments, err := svc.Coverage([]string{"bob", "alice", "bob", ""}, "Monday")
	require.NoError(t, err)
	require.Len(t, segments, 5)
	assert.Equal(t, []string{"alice", "bob"}, segments[2].UserIDs)

	sum := 0
	for _, seg := range segments {
		sum += seg.Window.Duration()
	}
	assert.Equal(t, models.MinutesPerDay, sum)
}

func TestAvailabilityService_CoverageEmptyQuery(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	segments, err := svc.Coverage(nil, "Monday")
	require.NoError(t, err)
	assert.Empty(t, segments)
	assert.NotNil(t, segments)
}

func TestAvailabilityService_CoverageInvalidDay(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	_, err := svc.Coverage([]string{"alice"}, "someday")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAvailabilityService_CoverageUnknownUser(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	segments, err := svc.Coverage([]string{"ghost"}, "Monday")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].UserIDs)
}

func TestAvailabilityService_RecommendUsesDefaultMinDuration(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	_, err := svc.Upsert(record("alice", "Monday",
		models.TimeWindow{Start: 540, End: 560},
		models.TimeWindow{Start: 600, End: 720},
	))
	require.NoError(t, err)

	// default is 30m, so the 20-minute slot is filtered out
	slots, err := svc.Recommend([]string{"alice"}, "Monday", 0, 0)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, models.TimeWindow{Start: 600, End: 720}, slots[0].Window)

	slots, err = svc.Recommend([]string{"alice"}, "Monday", 10, 0)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestAvailabilityService_RecommendDateQuery(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	_, err := svc.Upsert(record("alice", "Monday", models.TimeWindow{Start: 540, End: 1020}))
	require.NoError(t, err)
	_, err = svc.Upsert(record("bob", "2026-03-02", models.TimeWindow{Start: 600, End: 900}))
	require.NoError(t, err)

	// 2026-03-02 is a Monday: alice joins via her weekly record
	slots, err := svc.Recommend([]string{"alice", "bob"}, "2026-03-02", 60, 1)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 2, slots[0].CoverageCount)
	assert.Equal(t, models.TimeWindow{Start: 600, End: 900}, slots[0].Window)
	assert.Equal(t, models.DayKey("2026-03-02"), slots[0].Day)
}

func TestAvailabilityService_RecommendEmptyQuery(t *testing.T) {
	svc := NewAvailabilityService(testConfig())

	slots, err := svc.Recommend(nil, "Monday", 30, 5)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestAvailabilityService_SnapshotRoundTrip(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	_, err := svc.Upsert(record("alice", "Monday", models.TimeWindow{Start: 540, End: 600}))
	require.NoError(t, err)

	snap := svc.GetSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, models.StorageVersion, snap.Version)

	other := NewAvailabilityService(testConfig())
	other.PutSnapshot(snap)
	got, ok := other.Get("alice")
	require.True(t, ok)
	assert.Equal(t, []models.TimeWindow{{Start: 540, End: 600}}, got.Days["Monday"])
}

func TestAvailabilityService_SweepStaleEvictsToCold(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	cold := newMockColdStorage()
	svc.SetColdStorage(cold)

	old := record("old", "Monday", models.TimeWindow{Start: 540, End: 600})
	old.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	svc.PutSnapshot(&models.Storage{
		Version: models.StorageVersion,
		Users:   map[string]*models.UserAvailability{"old": old},
	})
	_, err := svc.Upsert(record("fresh", "Monday", models.TimeWindow{Start: 540, End: 600}))
	require.NoError(t, err)

	swept := svc.SweepStale(24 * time.Hour)
	assert.Equal(t, 1, swept)
	assert.Equal(t, []string{"old"}, cold.evicted)
	assert.Equal(t, 1, svc.RecordCount())
}

func TestAvailabilityService_GetRestoresFromCold(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	cold := newMockColdStorage()
	svc.SetColdStorage(cold)

	cold.entries["alice"] = record("alice", "Monday", models.TimeWindow{Start: 540, End: 600})

	got, ok := svc.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, []string{"alice"}, cold.restored)

	// re-warmed: the second lookup hits the store, not the archive
	_, ok = svc.Get("alice")
	require.True(t, ok)
	assert.Len(t, cold.restored, 1)
}

func TestAvailabilityService_GetMissingWithoutCold(t *testing.T) {
	svc := NewAvailabilityService(testConfig())
	_, ok := svc.Get("nobody")
	assert.False(t, ok)
}

func TestCanonicalIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, canonicalIDs([]string{"c", "a", "b", "a", ""}))
	assert.Empty(t, canonicalIDs(nil))
	assert.Empty(t, canonicalIDs([]string{"", ""}))
}
