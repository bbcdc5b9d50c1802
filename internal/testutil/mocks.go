package testutil

import (
	"sync"
	"time"

	"ytmeta/internal/models"
	"ytmeta/internal/providers"
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

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockHistoryService implements services.HistoryServiceInterface on top of a real store.
type MockHistoryService struct {
	mu          sync.Mutex
	Store       *models.Store
	IngestCalls []IngestCall
	Dirty       bool
	CleanCalls  int
}

type IngestCall struct {
	Dump      *models.Dump
	Timestamp int64
}

func NewMockHistoryService() *MockHistoryService {
	return &MockHistoryService{Store: models.NewStore()}
}

func (m *MockHistoryService) Ingest(dump *models.Dump, timestamp int64) models.MergeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IngestCalls = append(m.IngestCalls, IngestCall{Dump: dump, Timestamp: timestamp})
	if dump == nil {
		return models.MergeResult{}
	}
	res := m.Store.Merge(dump.Batch(), timestamp)
	if res.Changed() {
		m.Dirty = true
	}
	return res
}

func (m *MockHistoryService) Snapshot(id string, timestamp int64) (*models.Snapshot, bool) {
	return m.Store.Resolve(id, timestamp)
}

func (m *MockHistoryService) GetHistory(id string) ([]models.Entry, bool) {
	h, ok := m.Store.Get(id)
	if !ok {
		return nil, false
	}
	return h.Entries(), true
}

func (m *MockHistoryService) GetEntities() []string { return m.Store.IDs() }
func (m *MockHistoryService) GetEntityCount() int   { return m.Store.Len() }
func (m *MockHistoryService) GetRecordCount() int   { return m.Store.RecordCount() }

func (m *MockHistoryService) PutStore(store *models.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Store = store
}

func (m *MockHistoryService) GetStore() *models.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Store
}

func (m *MockHistoryService) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Dirty
}

func (m *MockHistoryService) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirty = false
	m.CleanCalls++
}

func (m *MockHistoryService) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirty = true
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu         sync.Mutex
	Data       map[string][]byte
	ClearCalls int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.ClearCalls++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	CloseCalls   int
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() { m.CloseCalls++ }

// MockMetrics implements providers.MetricsProviderInterface and records calls.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            map[string]int
	CacheHits           int
	CacheMisses         int
	PersistenceObserved int
	Merges              []models.MergeResult
	Resolves            map[bool]int
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Requests == nil {
		m.Requests = make(map[string]int)
	}
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(string, time.Duration) {}

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

func (m *MockMetrics) ObservePersistenceDuration(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}

func (m *MockMetrics) ObserveMerge(result models.MergeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Merges = append(m.Merges, result)
}

func (m *MockMetrics) IncResolve(found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Resolves == nil {
		m.Resolves = make(map[bool]int)
	}
	m.Resolves[found]++
}
