package reasoning

import (
	"fmt"

	"cognitive-core/internal/types"
)

// metaReason is a deterministic second pass over a synthesized result: it
// scores the synthesis itself (not the underlying problem) and records why,
// plus what's missing.
func metaReason(result *types.ReasoningResult, runs []backendRun) *types.MetaAnnotation {
	agreement := backendAgreement(runs)
	coverage := clampUnit(float64(len(result.BackendsUsed)) / 3.0)
	quality := clampUnit(0.5*result.Confidence + 0.3*agreement + 0.2*coverage)

	justification := fmt.Sprintf(
		"confidence %.2f over %d backend(s) with %.2f agreement and %.2f coverage",
		result.Confidence, len(result.BackendsUsed), agreement, coverage,
	)

	var limitations []string
	if len(result.BackendsUsed) == 1 {
		limitations = append(limitations, "only a single backend contributed to this result")
	}
	if result.Confidence < 0.5 {
		limitations = append(limitations, "aggregate confidence is below the midpoint")
	}
	if agreement < 0.5 && len(runs) > 1 {
		limitations = append(limitations, "backends disagreed materially on conclusions")
	}

	var improvements []string
	if coverage < 1 {
		improvements = append(improvements, "run additional backends to raise coverage")
	}
	if len(result.Alternatives) == 0 {
		improvements = append(improvements, "no alternative conclusions were surfaced")
	}

	return &types.MetaAnnotation{
		Quality:       quality,
		Justification: justification,
		Limitations:   limitations,
		Improvements:  improvements,
	}
}

// backendAgreement is the fraction of runs whose first conclusion
// statement is the most common first statement across all runs.
func backendAgreement(runs []backendRun) float64 {
	if len(runs) == 0 {
		return 0
	}
	if len(runs) == 1 {
		return 1
	}
	counts := make(map[string]int)
	for _, r := range runs {
		if len(r.result.Conclusions) == 0 {
			continue
		}
		counts[r.result.Conclusions[0].Statement]++
	}
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	return float64(best) / float64(len(runs))
}
