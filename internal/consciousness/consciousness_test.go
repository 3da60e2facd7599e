package consciousness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cognitive-core/internal/types"
)

func TestUpdateAfterCycleMovesPlasticityTowardConfidence(t *testing.T) {
	s := New()
	before := s.Plasticity()
	s.UpdateAfterCycle(0.9, types.SuperpositionState{Amplitude: 1})
	assert.Greater(t, s.Plasticity(), before)
}

func TestUpdateAfterCycleClampsToBounds(t *testing.T) {
	s := New()
	for i := 0; i < 100; i++ {
		s.UpdateAfterCycle(1.0, types.SuperpositionState{Amplitude: 1})
	}
	assert.LessOrEqual(t, s.Plasticity(), 1.0)

	for i := 0; i < 100; i++ {
		s.UpdateAfterCycle(0.0, types.SuperpositionState{Amplitude: 1})
	}
	assert.GreaterOrEqual(t, s.Plasticity(), 0.1)
}

func TestSuperpositionBoundedAt64(t *testing.T) {
	s := New()
	for i := 0; i < 100; i++ {
		s.UpdateAfterCycle(0.5, types.SuperpositionState{Amplitude: 1})
	}
	snap := s.Snapshot()
	assert.LessOrEqual(t, len(snap.Superposition), 64)
}

func TestResetRestoresDefaults(t *testing.T) {
	s := New()
	s.UpdateAfterCycle(1.0, types.SuperpositionState{Amplitude: 1})
	s.Reset()
	assert.Equal(t, 0.5, s.Plasticity())
}
