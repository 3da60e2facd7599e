// Package consciousness implements the Consciousness State component: a
// small bounded scalar/vector modulation record mutated only by the
// Orchestrator after each reasoning+learning cycle. It makes no claim of
// sentience.
package consciousness

import (
	"sync"

	"cognitive-core/internal/types"
)

const maxSuperposition = 64

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State owns the single ConsciousnessState record for a running core.
// Mutation is exclusive; reads may use a read-copy-update snapshot.
type State struct {
	mu    sync.RWMutex
	state types.ConsciousnessState
}

// New constructs a State at its default modulation levels.
func New() *State {
	return &State{
		state: types.ConsciousnessState{
			Level:             0.5,
			Awareness:         0.5,
			AttentionCapacity: 0.5,
			Plasticity:        0.5,
			Adaptation:        0.5,
			QuantumFactor:     0.5,
		},
	}
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() *types.ConsciousnessState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// UpdateAfterCycle applies the orchestrator's post-cycle modulation rule:
// plasticity and adaptation track reasoning confidence, and a new
// superposition sample is appended (FIFO-truncated at 64).
func (s *State) UpdateAfterCycle(confidence float64, sample types.SuperpositionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Plasticity = clamp(s.state.Plasticity+(confidence-0.5)*0.1, 0.1, 1.0)
	s.state.Adaptation = clamp(s.state.Adaptation+(confidence-0.5)*0.05, 0.1, 1.0)

	s.state.Superposition = append(s.state.Superposition, sample)
	if len(s.state.Superposition) > maxSuperposition {
		s.state.Superposition = s.state.Superposition[len(s.state.Superposition)-maxSuperposition:]
	}
}

// Plasticity returns the current plasticity scalar. The Reasoning Engine
// does not read it.
func (s *State) Plasticity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Plasticity
}

// Reset restores the state to its construction-time defaults.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = types.ConsciousnessState{
		Level:             0.5,
		Awareness:         0.5,
		AttentionCapacity: 0.5,
		Plasticity:        0.5,
		Adaptation:        0.5,
		QuantumFactor:     0.5,
	}
}
