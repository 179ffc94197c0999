// Package telemetry collects local tool-invocation metrics.
// All data stays in memory on this host - nothing is reported externally.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// DefaultRecentInputs is the capacity of the recent-input LRU used for
// repeat-call estimation.
const DefaultRecentInputs = 500

// toolStats aggregates one tool's counters.
type toolStats struct {
	calls     int64
	errors    int64
	latencies map[LatencyBucket]int64
}

// ToolMetrics collects per-tool invocation telemetry: call and error
// counts, a latency histogram, and an LRU of recent input digests that
// estimates how often hosts replay identical calls. Thread-safe.
type ToolMetrics struct {
	mu sync.Mutex

	tools        map[string]*toolStats
	recentInputs *lru.Cache[string, struct{}]
	repeatCalls  int64
	totalCalls   int64
	totalErrors  int64
	startTime    time.Time
}

// NewToolMetrics creates a collector with the default repeat-tracking
// capacity.
func NewToolMetrics() *ToolMetrics {
	return NewToolMetricsWithCapacity(DefaultRecentInputs)
}

// NewToolMetricsWithCapacity creates a collector tracking up to capacity
// recent input digests.
func NewToolMetricsWithCapacity(capacity int) *ToolMetrics {
	if capacity <= 0 {
		capacity = DefaultRecentInputs
	}
	recent, _ := lru.New[string, struct{}](capacity)
	return &ToolMetrics{
		tools:        make(map[string]*toolStats),
		recentInputs: recent,
		startTime:    time.Now(),
	}
}

// Record captures one tool invocation. The input bytes are digested, never
// stored, so credentials or message content inside tool arguments cannot
// leak into a metrics snapshot.
func (m *ToolMetrics) Record(tool string, input []byte, latency time.Duration, failed bool) {
	digest := digestInput(tool, input)

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.tools[tool]
	if stats == nil {
		stats = &toolStats{latencies: make(map[LatencyBucket]int64)}
		m.tools[tool] = stats
	}

	stats.calls++
	m.totalCalls++
	if failed {
		stats.errors++
		m.totalErrors++
	}
	stats.latencies[LatencyToBucket(latency)]++

	if _, seen := m.recentInputs.Get(digest); seen {
		m.repeatCalls++
	}
	m.recentInputs.Add(digest, struct{}{})
}

// digestInput hashes a tool invocation's identity. The tool name is mixed
// in so identical payloads to different tools count separately.
func digestInput(tool string, input []byte) string {
	h := sha256.New()
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write(input)
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// ToolSnapshot is one tool's aggregated counters.
type ToolSnapshot struct {
	Tool    string                  `json:"tool"`
	Calls   int64                   `json:"calls"`
	Errors  int64                   `json:"errors"`
	Latency map[LatencyBucket]int64 `json:"latency"`
}

// MetricsSnapshot is an immutable view of the collector, ordered by tool
// name so serialized snapshots are stable.
type MetricsSnapshot struct {
	Tools        []ToolSnapshot `json:"tools"`
	TotalCalls   int64          `json:"total_calls"`
	TotalErrors  int64          `json:"total_errors"`
	RepeatCalls  int64          `json:"repeat_calls"`
	UniqueInputs int64          `json:"unique_inputs"`
	Since        time.Time      `json:"since"`
}

// RepeatRate returns the fraction of calls whose input digest was already
// in the recent window.
func (s *MetricsSnapshot) RepeatRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.RepeatCalls) / float64(s.TotalCalls)
}

// Snapshot returns the current metrics for reporting.
func (m *ToolMetrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	tools := make([]ToolSnapshot, 0, len(m.tools))
	for name, stats := range m.tools {
		latencies := make(map[LatencyBucket]int64, len(stats.latencies))
		for k, v := range stats.latencies {
			latencies[k] = v
		}
		tools = append(tools, ToolSnapshot{
			Tool:    name,
			Calls:   stats.calls,
			Errors:  stats.errors,
			Latency: latencies,
		})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Tool < tools[j].Tool })

	return &MetricsSnapshot{
		Tools:        tools,
		TotalCalls:   m.totalCalls,
		TotalErrors:  m.totalErrors,
		RepeatCalls:  m.repeatCalls,
		UniqueInputs: int64(m.recentInputs.Len()),
		Since:        m.startTime,
	}
}
