package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weschedule/internal/models"
	"weschedule/internal/testutil"
)

func testSnapshot() *models.Storage {
	return &models.Storage{
		Version: models.StorageVersion,
		Users: map[string]*models.UserAvailability{
			"alice": {
				UserID: "alice",
				Mode:   models.ModeWeekly,
				Days: map[models.DayKey][]models.TimeWindow{
					"Monday": {{Start: 540, End: 1020}},
				},
				UpdatedAt: time.Now().UTC().Truncate(time.Second),
			},
		},
	}
}

func newTestFileManager(t *testing.T, service *testutil.MockAvailabilityService) *FileManager {
	t.Helper()
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	fm := NewFileManager(compressor, service, &testutil.MockLogger{})
	t.Cleanup(fm.Close)
	return fm
}

func TestFileManager_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availability.zst")

	source := &testutil.MockAvailabilityService{Snapshot: testSnapshot()}
	fm := newTestFileManager(t, source)
	require.NoError(t, fm.SaveToFile(path))

	// no leftover tmp file
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	sink := &testutil.MockAvailabilityService{}
	fm2 := newTestFileManager(t, sink)
	require.NoError(t, fm2.LoadFromFile(path))

	require.Len(t, sink.PutCalls, 1)
	got := sink.PutCalls[0]
	assert.Equal(t, models.StorageVersion, got.Version)
	require.Contains(t, got.Users, "alice")
	assert.Equal(t, []models.TimeWindow{{Start: 540, End: 1020}}, got.Users["alice"].Days["Monday"])
}

func TestFileManager_LoadMissingFile(t *testing.T) {
	sink := &testutil.MockAvailabilityService{}
	fm := newTestFileManager(t, sink)

	require.NoError(t, fm.LoadFromFile(filepath.Join(t.TempDir(), "nope.zst")))
	assert.Empty(t, sink.PutCalls)
}

func TestFileManager_LoadLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availability.zst")

	legacy := testSnapshot().Users
	jsonData, err := json.Marshal(legacy)
	require.NoError(t, err)

	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()
	compressed, err := compressor.Compress(jsonData)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, compressed, 0644))

	sink := &testutil.MockAvailabilityService{}
	fm := newTestFileManager(t, sink)
	require.NoError(t, fm.LoadFromFile(path))

	require.Len(t, sink.PutCalls, 1)
	assert.Equal(t, models.StorageVersion, sink.PutCalls[0].Version)
	assert.Contains(t, sink.PutCalls[0].Users, "alice")
}

func TestFileManager_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availability.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd at all"), 0644))

	sink := &testutil.MockAvailabilityService{}
	fm := newTestFileManager(t, sink)
	assert.Error(t, fm.LoadFromFile(path))
	assert.Empty(t, sink.PutCalls)
}

func TestFileManager_SaveOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availability.zst")

	source := &testutil.MockAvailabilityService{Snapshot: testSnapshot()}
	fm := newTestFileManager(t, source)
	require.NoError(t, fm.SaveToFile(path))
	require.NoError(t, fm.SaveToFile(path))

	sink := &testutil.MockAvailabilityService{}
	fm2 := newTestFileManager(t, sink)
	require.NoError(t, fm2.LoadFromFile(path))
	assert.Len(t, sink.PutCalls, 1)
}
