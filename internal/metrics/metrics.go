package metrics

import (
	"sync"
	"time"
)

// Metrics tracks aggregation pipeline activity. One instance lives on the
// application context so tests get an isolated copy.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	DuplicatesFiltered int64
	SourceErrors       int64
	CacheHits          int64
	CacheMisses        int64

	// Timings
	LastAssembleTime    time.Duration
	TotalAssembleTime   time.Duration
	AverageAssembleTime time.Duration
	AssembleCount       int64

	// Status
	StartedAt   time.Time
	LastRunTime time.Time
}

func New() *Metrics {
	return &Metrics{StartedAt: time.Now()}
}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) IncrementSourceErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceErrors++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) RecordAssembleTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastAssembleTime = duration
	m.TotalAssembleTime += duration
	m.AssembleCount++
	m.LastRunTime = time.Now()

	if m.AssembleCount > 0 {
		m.AverageAssembleTime = m.TotalAssembleTime / time.Duration(m.AssembleCount)
	}
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":         m.ArticlesFetched,
		"duplicates_filtered":      m.DuplicatesFiltered,
		"source_errors":            m.SourceErrors,
		"cache_hits":               m.CacheHits,
		"cache_misses":             m.CacheMisses,
		"last_assemble_time_ms":    m.LastAssembleTime.Milliseconds(),
		"average_assemble_time_ms": m.AverageAssembleTime.Milliseconds(),
		"last_run_time":            m.LastRunTime.Format(time.RFC3339),
		"uptime_seconds":           int64(time.Since(m.StartedAt).Seconds()),
	}
}
