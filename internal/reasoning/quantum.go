package reasoning

import (
	"math"

	"cognitive-core/internal/types"
)

// quantumState is one candidate logic state considered by the
// quantum-inspired backend before measurement collapses it.
type quantumState struct {
	name      string
	amplitude float64
	phase     float64
}

// normalizeAmplitudes scales amplitudes so the sum of their squares is 1,
// the usual quantum-inspired normalization condition.
func normalizeAmplitudes(states []quantumState) []quantumState {
	sumSquares := 0.0
	for _, s := range states {
		sumSquares += s.amplitude * s.amplitude
	}
	if sumSquares == 0 {
		return states
	}
	norm := math.Sqrt(sumSquares)
	out := make([]quantumState, len(states))
	for i, s := range states {
		out[i] = quantumState{name: s.name, amplitude: s.amplitude / norm, phase: s.phase}
	}
	return out
}

// measure performs a weighted choice over states by amplitude^2 using the
// supplied [0,1) random draw, then reports coherence over the full state
// set as exp(-variance(phases)).
func measure(states []quantumState, draw float64) (quantumState, float64) {
	weights := make([]float64, len(states))
	total := 0.0
	for i, s := range states {
		weights[i] = s.amplitude * s.amplitude
		total += weights[i]
	}

	chosen := states[len(states)-1]
	if total > 0 {
		target := draw * total
		cumulative := 0.0
		for i, w := range weights {
			cumulative += w
			if target <= cumulative {
				chosen = states[i]
				break
			}
		}
	}

	coherence := math.Exp(-phaseVariance(states))
	return chosen, coherence
}

func phaseVariance(states []quantumState) float64 {
	if len(states) == 0 {
		return 0
	}
	mean := 0.0
	for _, s := range states {
		mean += s.phase
	}
	mean /= float64(len(states))

	variance := 0.0
	for _, s := range states {
		d := s.phase - mean
		variance += d * d
	}
	return variance / float64(len(states))
}

func quantumSuperposition(states []quantumState) []types.SuperpositionState {
	out := make([]types.SuperpositionState, 0, len(states))
	coherence := math.Exp(-phaseVariance(states))
	for _, s := range states {
		out = append(out, types.SuperpositionState{Amplitude: s.amplitude, Phase: s.phase, Coherence: coherence})
	}
	return out
}
