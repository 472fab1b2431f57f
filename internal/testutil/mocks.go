package testutil

import (
	"sync"
	"time"

	"weschedule/internal/models"
	"weschedule/internal/providers"
	"weschedule/internal/services"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// RecommendCall captures one Recommend invocation.
type RecommendCall struct {
	UserIDs     []string
	Day         models.DayKey
	MinDuration int
	TopK        int
}

// MockAvailabilityService implements services.AvailabilityServiceInterface.
type MockAvailabilityService struct {
	mu sync.Mutex

	UpsertCalls []*models.UserAvailability
	UpsertErr   error

	Records   map[string]*models.UserAvailability
	UsersList []string

	CoverageData  []models.CoverageSegment
	CoverageErr   error
	RecommendData []models.RecommendedSlot
	RecommendErr  error
	RecommendArgs []RecommendCall

	RevisionVal uint64
	Snapshot    *models.Storage
	PutCalls    []*models.Storage
	SweepCalls  []time.Duration
	SweepReturn int
	ColdSet     []services.ColdStorageInterface
}

func (m *MockAvailabilityService) Upsert(rec *models.UserAvailability) (*models.UserAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	m.UpsertCalls = append(m.UpsertCalls, rec)
	return rec, nil
}

func (m *MockAvailabilityService) Get(userID string) (*models.UserAvailability, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[userID]
	return rec, ok
}

func (m *MockAvailabilityService) Users() []string { return m.UsersList }

func (m *MockAvailabilityService) Coverage(_ []string, _ models.DayKey) ([]models.CoverageSegment, error) {
	return m.CoverageData, m.CoverageErr
}

func (m *MockAvailabilityService) Recommend(userIDs []string, day models.DayKey, minDuration, topK int) ([]models.RecommendedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecommendArgs = append(m.RecommendArgs, RecommendCall{
		UserIDs:     userIDs,
		Day:         day,
		MinDuration: minDuration,
		TopK:        topK,
	})
	return m.RecommendData, m.RecommendErr
}

func (m *MockAvailabilityService) Revision() uint64 { return m.RevisionVal }
func (m *MockAvailabilityService) RecordCount() int { return len(m.Records) }

func (m *MockAvailabilityService) GetSnapshot() *models.Storage { return m.Snapshot }

func (m *MockAvailabilityService) PutSnapshot(snapshot *models.Storage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls = append(m.PutCalls, snapshot)
}

func (m *MockAvailabilityService) SweepStale(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepCalls = append(m.SweepCalls, olderThan)
	return m.SweepReturn
}

func (m *MockAvailabilityService) SetColdStorage(cold services.ColdStorageInterface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ColdSet = append(m.ColdSet, cold)
}
