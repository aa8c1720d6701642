package testutil

import (
	"context"
	"sync"
	"time"

	"pdistats/internal/models"
	"pdistats/internal/providers"
	"pdistats/internal/structures"
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

// CountLevel returns the number of recorded entries at the given level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockFetcher implements interfaces.FetcherInterface with canned results
// keyed by source name. Err fails every fetch, ErrFor fails one source.
type MockFetcher struct {
	mu     sync.Mutex
	Tables map[string]*models.Table
	Err    error
	ErrFor map[string]error
	Calls  []structures.SourceConfig
}

func (m *MockFetcher) Fetch(_ context.Context, src structures.SourceConfig) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, src)
	if m.Err != nil {
		return nil, m.Err
	}
	if err, ok := m.ErrFor[src.Name]; ok {
		return nil, err
	}
	if t, ok := m.Tables[src.Name]; ok {
		return t, nil
	}
	return models.NewTable([]string{"col"}, nil)
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      map[string]int
	Durations     int
	ResponseBytes int
	CacheHits     int
	CacheMisses   int
	Ingests       map[string]time.Duration
	RefreshErrors int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests: make(map[string]int),
		Ingests:  make(map[string]time.Duration),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Durations++
}

func (m *MockMetrics) AddResponseBytes(_ string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseBytes += n
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObserveIngestDuration(source string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ingests[source] += d
}

func (m *MockMetrics) IncRefreshErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefreshErrors++
}
