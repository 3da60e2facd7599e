package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceRingBounded(t *testing.T) {
	var r PerformanceRing
	for i := 0; i < 15; i++ {
		r.Push(float64(i) / 10)
	}
	assert.LessOrEqual(t, r.Len(), 10)
}

func TestPerformanceRingMean5(t *testing.T) {
	var r PerformanceRing
	r.Push(0.6)
	r.Push(0.7)
	assert.InDelta(t, 0.65, r.Mean5(), 1e-9)

	r.Push(0.8)
	assert.InDelta(t, 0.7, r.Mean5(), 1e-9)
}

func TestKnowledgeEntryCloneIsIndependent(t *testing.T) {
	k := &KnowledgeEntry{
		Content: KnowledgeContent{Relationships: []string{"a"}},
	}
	cp := k.Clone()
	cp.Content.Relationships[0] = "mutated"
	assert.Equal(t, "a", k.Content.Relationships[0])
}

func TestMemoryEntryCloneIsIndependent(t *testing.T) {
	m := &MemoryEntry{
		Content:      map[string]any{"x": 1},
		Associations: []string{"tag"},
	}
	cp := m.Clone()
	cp.Content["x"] = 2
	cp.Associations[0] = "other"
	assert.Equal(t, 1, m.Content["x"])
	assert.Equal(t, "tag", m.Associations[0])
}

func TestConsciousnessStateClone(t *testing.T) {
	s := &ConsciousnessState{Superposition: []SuperpositionState{{Amplitude: 1}}}
	cp := s.Clone()
	cp.Superposition[0].Amplitude = 0.5
	assert.Equal(t, 1.0, s.Superposition[0].Amplitude)
}
