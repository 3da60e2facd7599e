package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncAccumulates(t *testing.T) {
	c := New()
	c.Inc("requests", 1)
	c.Inc("requests", 2)
	assert.Equal(t, int64(3), c.Snapshot().Counters["requests"])
}

func TestSetOverwritesGauge(t *testing.T) {
	c := New()
	c.Set("plasticity", 0.5)
	c.Set("plasticity", 0.8)
	assert.Equal(t, 0.8, c.Snapshot().Gauges["plasticity"])
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	c := New()
	c.Inc("x", 1)
	snap := c.Snapshot()
	c.Inc("x", 1)
	assert.Equal(t, int64(1), snap.Counters["x"])
	assert.Equal(t, int64(2), c.Snapshot().Counters["x"])
}
