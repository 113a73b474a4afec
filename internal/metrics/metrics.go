package metrics

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics system.
type MetricID uint8

const (
	MetricIssueSuccess MetricID = iota
	MetricIssueFailure
	MetricRefreshSuccess
	MetricRefreshRejected
	MetricRefreshFailure
	MetricRefreshReuseDetected
	MetricRevoke

	MetricIDCount
)

var metricNames = [MetricIDCount]string{
	MetricIssueSuccess:         "issue_success",
	MetricIssueFailure:         "issue_failure",
	MetricRefreshSuccess:       "refresh_success",
	MetricRefreshRejected:      "refresh_rejected",
	MetricRefreshFailure:       "refresh_failure",
	MetricRefreshReuseDetected: "refresh_reuse_detected",
	MetricRevoke:               "revoke",
}

// Name returns the stable snake_case name of the metric.
func (id MetricID) Name() string {
	if id >= MetricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

// Config controls metric collection.
type Config struct {
	Enabled bool
}

// Metrics holds lock-free counters. All operations are no-ops when the
// instance is disabled or nil.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// New creates a [Metrics] instance.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot is a point-in-time copy of all counters, keyed by metric name.
type Snapshot map[string]uint64

// Snapshot returns the current counter values. Disabled instances return an
// empty snapshot.
func (m *Metrics) Snapshot() Snapshot {
	snap := make(Snapshot, MetricIDCount)
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap[id.Name()] = m.counters[id].Load()
	}
	return snap
}
