// Package metrics keeps in-process counters for the last run, exposed by
// the optional monitoring endpoint.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedItemsFetched   int64
	SearchItemsFetched int64
	ItemsMatched       int64
	ExtrasRendered     int64
	RewriteCalls       int64
	RewriteFallbacks   int64
	MailsSent          int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddFeedItems(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedItemsFetched += int64(n)
}

func (m *Metrics) AddSearchItems(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchItemsFetched += int64(n)
}

func (m *Metrics) AddMatched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsMatched += int64(n)
}

func (m *Metrics) AddExtras(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtrasRendered += int64(n)
}

func (m *Metrics) IncrementRewriteCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RewriteCalls++
}

func (m *Metrics) IncrementRewriteFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RewriteFallbacks++
}

func (m *Metrics) IncrementMailsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailsSent++
}

func (m *Metrics) SetLastRun(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.LastRunDuration = d
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feed_items_fetched":   m.FeedItemsFetched,
		"search_items_fetched": m.SearchItemsFetched,
		"items_matched":        m.ItemsMatched,
		"extras_rendered":      m.ExtrasRendered,
		"rewrite_calls":        m.RewriteCalls,
		"rewrite_fallbacks":    m.RewriteFallbacks,
		"mails_sent":           m.MailsSent,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
