package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/performance"
	"github.com/mselser95/binarybot/pkg/config"
)

// EvalFunc runs one full backtest for the given parameter set and
// returns the resulting performance metrics (spec.md §4.12 "every
// evaluation is a full backtest over the given sessions"). The
// optimizer is deliberately ignorant of sessions/storage — the caller
// closes over whatever it needs to run backtest.Run + performance.Compute.
type EvalFunc func(ctx context.Context, params config.StrategyParams) (performance.Metrics, error)

// Progress is one update streamed to a subscribed observer (spec.md
// §4.12 "streams progress updates (overall %, current phase, current
// best)").
type Progress struct {
	PhaseNumber    int
	PhaseName      string
	Evaluated      int
	PhaseTotal     int
	OverallPercent float64
	BestScore      float64
	BestParams     config.StrategyParams
}

// PhaseResult is everything one phase produced, persisted verbatim via
// storage.Repository.save_optimization_run (spec.md §6).
type PhaseResult struct {
	Phase          Phase
	Skipped        bool
	Candidates     []Candidate
	Best           Candidate
	EvaluatedCount int
}

// Optimizer drives the sequential phase list, carrying the best
// parameters (and, for the terminal phase, the top-3-per-parameter
// value set) forward between phases.
type Optimizer struct {
	logger   *zap.Logger
	eval     EvalFunc
	progress chan Progress
}

// New creates an Optimizer. The progress channel is buffered generously
// so a slow/absent observer never blocks evaluation.
func New(logger *zap.Logger, eval EvalFunc) *Optimizer {
	return &Optimizer{
		logger:   logger,
		eval:     eval,
		progress: make(chan Progress, 1024),
	}
}

// Progress returns the channel of streamed progress updates.
func (o *Optimizer) Progress() <-chan Progress {
	return o.progress
}

// paramTrack remembers one observed parameter value and the score of
// the candidate it came from, so the terminal phase can reconstruct
// the top-3-per-parameter discrete grid (spec.md §4.12 "Terminal
// phase ... union of top-3 values-per-parameter from all prior phases").
type paramTrack struct {
	value float64
	score float64
}

// Run executes phases sequentially, closes the progress channel when
// done, and returns the per-phase results plus the final best params.
func (o *Optimizer) Run(ctx context.Context, base config.StrategyParams, phases []Phase) ([]PhaseResult, config.StrategyParams, error) {
	defer close(o.progress)

	best := base
	bestScore := 0.0
	results := make([]PhaseResult, 0, len(phases))
	tracked := map[string][]paramTrack{}

	totalBudget := 0
	for _, p := range phases {
		totalBudget += p.maxCombinations()
	}
	cumulativeEvaluated := 0

	for _, phase := range phases {
		phaseStart := time.Now()

		var result PhaseResult
		var err error
		if phase.Algorithm == AlgorithmMultiStage {
			result, err = o.runTerminalPhase(ctx, phase, best, tracked, &cumulativeEvaluated, totalBudget)
		} else {
			result, err = o.runExhaustivePhase(ctx, phase, best, tracked, &cumulativeEvaluated, totalBudget)
		}
		if err != nil {
			return results, best, fmt.Errorf("phase %d (%s): %w", phase.Number, phase.Name, err)
		}

		PhaseDuration.WithLabelValues(phase.Name).Observe(time.Since(phaseStart).Seconds())
		results = append(results, result)

		if !result.Skipped && len(result.Candidates) > 0 {
			best = result.Best.Params
			bestScore = result.Best.Score
			o.emitProgress(phase, cumulativeEvaluated, totalBudget, bestScore, best)
		}
	}

	return results, best, nil
}

func (o *Optimizer) emitProgress(phase Phase, evaluated, total int, bestScore float64, bestParams config.StrategyParams) {
	pct := 100.0
	if total > 0 {
		pct = 100.0 * float64(evaluated) / float64(total)
	}
	select {
	case o.progress <- Progress{
		PhaseNumber:    phase.Number,
		PhaseName:      phase.Name,
		Evaluated:      evaluated,
		PhaseTotal:     total,
		OverallPercent: pct,
		BestScore:      bestScore,
		BestParams:     bestParams,
	}:
	default:
		o.logger.Warn("optimizer-progress-channel-full-dropping-update", zap.String("phase", phase.Name))
	}
}

// runExhaustivePhase grid-searches phase.ParameterRanges around base,
// scoring every (constraint-passing) combination.
func (o *Optimizer) runExhaustivePhase(ctx context.Context, phase Phase, base config.StrategyParams, tracked map[string][]paramTrack, cumulativeEvaluated *int, totalBudget int) (PhaseResult, error) {
	combos, err := generateCombinations(phase.ParameterRanges, phase.Constraints, map[string]float64{}, phase.maxCombinations())
	if err != nil {
		CombinationCapAbortsTotal.Inc()
		return PhaseResult{}, err
	}

	candidates := make([]Candidate, 0, len(combos))
	allSharpeNegative := true

	for _, combo := range combos {
		select {
		case <-ctx.Done():
			return PhaseResult{}, ctx.Err()
		default:
		}

		params := applyOverrides(base, combo)
		metrics, evalErr := o.eval(ctx, params)
		*cumulativeEvaluated++
		EvaluationsTotal.Inc()
		if evalErr != nil {
			o.logger.Warn("optimizer-evaluation-failed", zap.Int("phase", phase.Number), zap.Error(evalErr))
			continue
		}

		if metrics.Sharpe >= 0 {
			allSharpeNegative = false
		}

		c := Candidate{Params: params, Score: score(phase.OptimizeMetric, metrics)}
		candidates = append(candidates, c)

		o.emitProgress(phase, *cumulativeEvaluated, totalBudget, c.Score, params)

		if phase.EarlyStopThreshold != nil && c.Score >= *phase.EarlyStopThreshold {
			break
		}
	}

	if phase.SkipIfNegative && allSharpeNegative && len(candidates) > 0 {
		PhaseSkippedTotal.WithLabelValues(phase.Name).Inc()
		return PhaseResult{Phase: phase, Skipped: true, EvaluatedCount: len(candidates)}, nil
	}

	topN := rankTopN(candidates, phase.TopN)
	recordTracked(tracked, phase.ParameterRanges, topN)

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

// rankTopN sorts candidates by descending score and truncates to n
// (n<=0 means "return all").
func rankTopN(candidates []Candidate, n int) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	if n > 0 && n < len(sorted) {
		return sorted[:n]
	}
	return sorted
}

// recordTracked appends each topN candidate's value for every
// parameter this phase swept, building the terminal phase's
// top-3-per-parameter candidate pool.
func recordTracked(tracked map[string][]paramTrack, ranges []ParameterRange, topN []Candidate) {
	for _, r := range ranges {
		for _, c := range topN {
			params := c.Params
			f := config.Fields(&params)
			if dst, ok := f[r.Name]; ok {
				tracked[r.Name] = append(tracked[r.Name], paramTrack{value: *dst, score: c.Score})
			}
		}
	}
}
