// Package metrics implements the dependency-free in-process counters
// exposed through the engine's MetricsSnapshot API.
package metrics
