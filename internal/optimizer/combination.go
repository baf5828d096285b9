package optimizer

import (
	"fmt"
	"math"

	"github.com/mselser95/binarybot/pkg/types"
)

// values enumerates every grid point for one parameter range, inclusive
// of Max when it falls on a step boundary (small epsilon guards float
// accumulation error).
func (r ParameterRange) values() []float64 {
	if r.Step <= 0 {
		return []float64{r.Min}
	}

	n := int(math.Floor((r.Max-r.Min)/r.Step + 1e-9))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, r.Min+float64(i)*r.Step)
	}
	return out
}

// combinationCount returns the full cartesian-product size of ranges
// without materializing it, so the caller can cap-check cheaply.
func combinationCount(ranges []ParameterRange) int {
	count := 1
	for _, r := range ranges {
		count *= len(r.values())
	}
	return count
}

// generateCombinations enumerates the cartesian product of ranges,
// applying constraints to drop invalid points and base to fill in
// every other parameter untouched by this phase. It aborts with an error
// prefixed by types.ErrOptimizerCombinationCap if the raw
// (pre-constraint) product exceeds max.
func generateCombinations(ranges []ParameterRange, constraints []Constraint, base map[string]float64, max int) ([]map[string]float64, error) {
	total := combinationCount(ranges)
	if total > max {
		return nil, fmt.Errorf("%s: %d combinations exceeds cap of %d", types.ErrOptimizerCombinationCap, total, max)
	}

	points := []map[string]float64{cloneMap(base)}
	for _, r := range ranges {
		vals := r.values()
		next := make([]map[string]float64, 0, len(points)*len(vals))
		for _, p := range points {
			for _, v := range vals {
				clone := cloneMap(p)
				clone[r.Name] = v
				next = append(next, clone)
			}
		}
		points = next
	}

	filtered := points[:0]
	for _, p := range points {
		if passesConstraints(p, constraints) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func passesConstraints(point map[string]float64, constraints []Constraint) bool {
	for _, c := range constraints {
		if !c(point) {
			return false
		}
	}
	return true
}

func cloneMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
