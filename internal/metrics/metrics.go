// Package metrics provides an in-process counter/gauge collector used by
// the Orchestrator's get_metrics() surface (GetMetrics). No exporter is
// wired (Non-goals: no metrics export) — this is purely an in-memory
// aggregation point other components can record into and the demo
// entrypoint can print.
package metrics

import "sync"

// Collector accumulates named counters and gauges behind a single lock.
type Collector struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
}

// New constructs an empty Collector.
func New() *Collector {
	return &Collector{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
	}
}

// Inc increments a named counter by delta.
func (c *Collector) Inc(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

// Set records the latest value of a named gauge.
func (c *Collector) Set(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

// Snapshot is a point-in-time copy of every counter and gauge.
type Snapshot struct {
	Counters map[string]int64
	Gauges   map[string]float64
}

// Snapshot returns a deep copy of the current state.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	counters := make(map[string]int64, len(c.counters))
	for k, v := range c.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(c.gauges))
	for k, v := range c.gauges {
		gauges[k] = v
	}
	return Snapshot{Counters: counters, Gauges: gauges}
}
