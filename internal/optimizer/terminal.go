package optimizer

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/pkg/config"
)

// runTerminalPhase runs the four-stage refinement (baseline →
// sensitivity → pairs → random) over the discrete top-3-per-parameter
// candidate set accumulated from every prior phase (spec.md §4.12
// "Terminal (multi-stage) phase").
func (o *Optimizer) runTerminalPhase(ctx context.Context, phase Phase, base config.StrategyParams, tracked map[string][]paramTrack, cumulativeEvaluated *int, totalBudget int) (PhaseResult, error) {
	grid := discreteGrid(phase, tracked)
	budget := phase.maxCombinations()

	var candidates []Candidate
	evalOne := func(point map[string]float64) (Candidate, bool) {
		select {
		case <-ctx.Done():
			return Candidate{}, false
		default:
		}
		params := applyOverrides(base, point)
		metrics, err := o.eval(ctx, params)
		*cumulativeEvaluated++
		EvaluationsTotal.Inc()
		if err != nil {
			o.logger.Warn("optimizer-terminal-evaluation-failed", zap.Error(err))
			return Candidate{}, false
		}
		c := Candidate{Params: params, Score: score(phase.OptimizeMetric, metrics)}
		o.emitProgress(phase, *cumulativeEvaluated, totalBudget, c.Score, params)
		return c, true
	}

	// Stage 1: baseline.
	baseValues := currentValues(base, grid)
	baseline, ok := evalOne(map[string]float64{})
	if !ok {
		return PhaseResult{Phase: phase, EvaluatedCount: *cumulativeEvaluated}, nil
	}
	candidates = append(candidates, baseline)
	budget--

	// Stage 2: sensitivity. Baseline is held fixed for the whole stage
	// (the source does not re-baseline mid-stage; this spec follows
	// that rather than the live-updating variant).
	sensitivity := map[string]float64{}
	for name, values := range grid {
		if budget <= 0 {
			break
		}
		best := 0.0
		for _, v := range values {
			if math.Abs(v-baseValues[name]) < 1e-9 {
				continue
			}
			if budget <= 0 {
				break
			}
			if !passesConstraints(withBaseline(map[string]float64{name: v}, baseValues), phase.Constraints) {
				continue
			}
			c, ok := evalOne(map[string]float64{name: v})
			budget--
			if !ok {
				continue
			}
			candidates = append(candidates, c)
			if improvement := c.Score - baseline.Score; improvement > best {
				best = improvement
			}
		}
		sensitivity[name] = best
	}

	// Stage 3: pairs, over the top <=7 most sensitive parameters.
	sensitiveNames := topSensitiveNames(sensitivity, 7)
	pairs := pairsByPriority(sensitiveNames, sensitivity)
	for _, pair := range pairs {
		if budget <= 0 {
			break
		}
		for _, v1 := range grid[pair[0]] {
			if budget <= 0 {
				break
			}
			for _, v2 := range grid[pair[1]] {
				if budget <= 0 {
					break
				}
				if math.Abs(v1-baseValues[pair[0]]) < 1e-9 && math.Abs(v2-baseValues[pair[1]]) < 1e-9 {
					continue // the baseline point itself
				}
				point := map[string]float64{pair[0]: v1, pair[1]: v2}
				if !passesConstraints(withBaseline(point, baseValues), phase.Constraints) {
					continue
				}
				c, ok := evalOne(point)
				budget--
				if ok {
					candidates = append(candidates, c)
				}
			}
		}
	}

	// Stage 4: random, uniformly sampled from the full discrete grid.
	count := phase.RandomSampleCount
	if count <= 0 || count > budget {
		count = budget
	}
	if count > 0 {
		rng := rand.New(rand.NewPCG(uint64(phase.Seed), uint64(phase.Seed>>32)+1))
		for _, point := range randomSample(grid, count, rng) {
			if budget <= 0 {
				break
			}
			if !passesConstraints(withBaseline(point, baseValues), phase.Constraints) {
				continue
			}
			c, ok := evalOne(point)
			budget--
			if ok {
				candidates = append(candidates, c)
			}
		}
	}

	topN := rankTopN(candidates, phase.TopN)
	recordTracked(tracked, rangesFromGrid(grid), topN)

	var bestCandidate Candidate
	if len(topN) > 0 {
		bestCandidate = topN[0]
	}

	return PhaseResult{
		Phase:          phase,
		Candidates:     topN,
		Best:           bestCandidate,
		EvaluatedCount: len(candidates),
	}, nil
}

// currentValues reads back the base point's current value for every
// parameter the discrete grid names.
func currentValues(base config.StrategyParams, grid map[string][]float64) map[string]float64 {
	fields := config.Fields(&base)
	out := make(map[string]float64, len(grid))
	for name := range grid {
		if dst, ok := fields[name]; ok {
			out[name] = *dst
		}
	}
	return out
}

// withBaseline merges a partial override point with the full baseline
// value set, so constraints written against the complete parameter
// space (e.g. "E_enter > E_exit + 0.04") see every field.
func withBaseline(point, baseValues map[string]float64) map[string]float64 {
	out := cloneMap(baseValues)
	for k, v := range point {
		out[k] = v
	}
	return out
}

// topSensitiveNames returns up to n parameter names ordered by
// descending sensitivity.
func topSensitiveNames(sensitivity map[string]float64, n int) []string {
	names := make([]string, 0, len(sensitivity))
	for name := range sensitivity {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return sensitivity[names[i]] > sensitivity[names[j]] })
	if n < len(names) {
		names = names[:n]
	}
	return names
}

// pairsByPriority returns every unordered pair of names, ordered by
// descending combined sensitivity so the most-sensitive pairs are
// tested first when the budget runs out mid-stage.
func pairsByPriority(names []string, sensitivity map[string]float64) [][2]string {
	var pairs [][2]string
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, [2]string{names[i], names[j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		si := sensitivity[pairs[i][0]] + sensitivity[pairs[i][1]]
		sj := sensitivity[pairs[j][0]] + sensitivity[pairs[j][1]]
		return si > sj
	})
	return pairs
}

// randomSample draws up to n unique points from the cartesian product
// of grid by enumerating the full product and shuffling it (the
// terminal phase's grid is small by construction — top-3-per-parameter
// across at most a handful of swept names).
func randomSample(grid map[string][]float64, n int, rng *rand.Rand) []map[string]float64 {
	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic enumeration order before shuffling

	all := []map[string]float64{{}}
	for _, name := range names {
		values := grid[name]
		next := make([]map[string]float64, 0, len(all)*len(values))
		for _, p := range all {
			for _, v := range values {
				clone := cloneMap(p)
				clone[name] = v
				next = append(next, clone)
			}
		}
		all = next
	}

	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func rangesFromGrid(grid map[string][]float64) []ParameterRange {
	out := make([]ParameterRange, 0, len(grid))
	for name := range grid {
		out = append(out, ParameterRange{Name: name})
	}
	return out
}

// discreteGrid builds the terminal phase's candidate set: the union of
// top-3 values-per-parameter tracked from every prior phase, falling
// back to a 3-point (min/mid/max) sample of the phase's own declared
// ranges when run standalone with no prior phases (e.g. in tests).
func discreteGrid(phase Phase, tracked map[string][]paramTrack) map[string][]float64 {
	grid := map[string][]float64{}
	if len(tracked) > 0 {
		for name, tracks := range tracked {
			if values := top3UniqueValues(tracks); len(values) > 0 {
				grid[name] = values
			}
		}
		return grid
	}
	for _, r := range phase.ParameterRanges {
		grid[r.Name] = fallbackValues(r)
	}
	return grid
}

// top3UniqueValues ranks tracked observations by descending score and
// keeps the first 3 distinct values.
func top3UniqueValues(tracks []paramTrack) []float64 {
	sorted := make([]paramTrack, len(tracks))
	copy(sorted, tracks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })

	var out []float64
	for _, t := range sorted {
		dup := false
		for _, v := range out {
			if math.Abs(v-t.value) < 1e-9 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t.value)
		}
		if len(out) == 3 {
			break
		}
	}
	return out
}

// fallbackValues samples a parameter range at its min, midpoint, and
// max when no tracked history exists yet to seed the terminal grid.
func fallbackValues(r ParameterRange) []float64 {
	mid := (r.Min + r.Max) / 2
	out := []float64{r.Min, mid, r.Max}
	dedup := out[:0]
	for _, v := range out {
		found := false
		for _, d := range dedup {
			if math.Abs(d-v) < 1e-9 {
				found = true
				break
			}
		}
		if !found {
			dedup = append(dedup, v)
		}
	}
	return dedup
}
