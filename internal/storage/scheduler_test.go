package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weschedule/internal/structures"
	"weschedule/internal/testutil"
)

type mockMetrics struct {
	persistObservations int
}

func (m *mockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *mockMetrics) IncCacheHits()                                    {}
func (m *mockMetrics) IncCacheMisses()                                  {}
func (m *mockMetrics) ObservePersistenceDuration(_ time.Duration)       { m.persistObservations++ }

func schedulerConfig(dir string, sweep bool) *structures.Config {
	conf := &structures.Config{
		Persistence: structures.Persistence{
			FilePath:     filepath.Join(dir, "availability.zst"),
			SaveInterval: time.Hour,
		},
	}
	if sweep {
		conf.Engine = structures.EngineConfig{
			DefaultMinDuration: 30 * time.Minute,
			SweepInterval:      time.Hour,
			StaleAfter:         24 * time.Hour,
			ColdStorageDir:     filepath.Join(dir, "cold"),
			ColdTTL:            48 * time.Hour,
		}
	}
	return conf
}

func newTestScheduler(t *testing.T, conf *structures.Config, service *testutil.MockAvailabilityService) (*Scheduler, *ColdStorage) {
	t.Helper()
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	logger := &testutil.MockLogger{}
	fm := NewFileManager(compressor, service, logger)
	t.Cleanup(fm.Close)
	cold := NewColdStorage(conf, compressor, logger)

	s := NewScheduler(conf, logger, service, fm, cold, &mockMetrics{})
	return s.(*Scheduler), cold
}

func TestNewScheduler_WiresColdStorageIntoService(t *testing.T) {
	service := &testutil.MockAvailabilityService{Snapshot: testSnapshot()}
	_, cold := newTestScheduler(t, schedulerConfig(t.TempDir(), true), service)

	require.Len(t, service.ColdSet, 1)
	assert.Same(t, cold, service.ColdSet[0].(*ColdStorage))
}

func TestScheduler_RestoreWithNothingOnDisk(t *testing.T) {
	conf := schedulerConfig(t.TempDir(), true)
	service := &testutil.MockAvailabilityService{}
	s, _ := newTestScheduler(t, conf, service)

	require.NoError(t, s.Restore())
	assert.Empty(t, service.PutCalls)

	// RestoreIndex creates the cold storage directory
	info, err := os.Stat(conf.Engine.ColdStorageDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestScheduler_PersistWritesSnapshot(t *testing.T) {
	conf := schedulerConfig(t.TempDir(), false)
	service := &testutil.MockAvailabilityService{Snapshot: testSnapshot()}
	s, _ := newTestScheduler(t, conf, service)

	require.NoError(t, s.Persist())
	_, err := os.Stat(conf.Persistence.FilePath)
	assert.NoError(t, err)
}

func TestScheduler_PersistThenRestoreRoundTrip(t *testing.T) {
	conf := schedulerConfig(t.TempDir(), false)

	source := &testutil.MockAvailabilityService{Snapshot: testSnapshot()}
	s, _ := newTestScheduler(t, conf, source)
	require.NoError(t, s.Persist())

	sink := &testutil.MockAvailabilityService{}
	s2, _ := newTestScheduler(t, conf, sink)
	require.NoError(t, s2.Restore())

	require.Len(t, sink.PutCalls, 1)
	assert.Contains(t, sink.PutCalls[0].Users, "alice")
}

func TestScheduler_InitAndStop(t *testing.T) {
	conf := schedulerConfig(t.TempDir(), true)
	service := &testutil.MockAvailabilityService{Snapshot: testSnapshot()}
	s, _ := newTestScheduler(t, conf, service)

	s.Init()
	s.Stop()
}

func TestScheduler_SweepDisabledWithoutColdDir(t *testing.T) {
	conf := schedulerConfig(t.TempDir(), false)
	service := &testutil.MockAvailabilityService{}
	s, _ := newTestScheduler(t, conf, service)

	assert.False(t, s.sweepEnabled())
	require.NoError(t, s.Restore())
}
