// Package optimizer implements the phased black-box parameter search
// over the Time-Above-0.5 strategy (spec.md §4.12). Each phase grid-
// searches a parameter subset (or, for the terminal phase, runs a
// baseline/sensitivity/pairs/random multi-stage refinement) and the
// best topN combinations carry forward as the base point for the next
// phase. No pack repo runs a black-box optimizer, so the phase/stage
// control flow is original to this spec; it follows the teacher's
// bounded-iteration-with-a-hard-cap idiom from internal/discovery's
// pagination loop and the observer/progress-channel shape of
// internal/arbitrage's opportunity channel.
package optimizer

import "github.com/mselser95/binarybot/pkg/config"

// Algorithm selects how a phase enumerates candidate parameter points.
type Algorithm string

const (
	AlgorithmExhaustive Algorithm = "exhaustive"
	AlgorithmMultiStage Algorithm = "multi-stage"
)

// Metric names a scalar or the composite objective a phase optimizes
// for (spec.md §4.12).
type Metric string

const (
	MetricSharpe       Metric = "sharpe"
	MetricTotalPnL     Metric = "total_pnl"
	MetricTotalReturn  Metric = "total_return"
	MetricWinRate      Metric = "win_rate"
	MetricProfitFactor Metric = "profit_factor"
	MetricComposite    Metric = "composite"
)

// ParameterRange describes one swept StrategyParams field: every value
// from Min to Max in increments of Step is a candidate (inclusive of
// Max when it lands on a step boundary).
type ParameterRange struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

// Constraint is a predicate over a candidate combination (e.g.
// "E_enter > E_exit + 0.04"), applied during combination generation to
// prune invalid points before they're ever evaluated.
type Constraint func(point map[string]float64) bool

// DefaultMaxCombinations bounds a non-terminal phase's combination
// count (spec.md §4.12 "default 10,000").
const DefaultMaxCombinations = 10000

// DefaultTerminalBudget bounds the terminal multi-stage phase's total
// evaluation count across all four stages (spec.md §4.12 "default 250").
const DefaultTerminalBudget = 250

// Phase is one step of the optimizer's sequential search (spec.md
// §4.12 "Phase object").
type Phase struct {
	Number              int
	Name                string
	ParameterRanges     []ParameterRange
	OptimizeMetric      Metric
	Constraints         []Constraint
	TopN                int
	EarlyStopThreshold  *float64
	SkipIfNegative      bool
	Algorithm           Algorithm
	MaxCombinations     int // 0 means DefaultMaxCombinations / DefaultTerminalBudget

	// Seed drives the terminal phase's Random stage sampling. It is a
	// caller-supplied value, never wall-clock entropy, so a run is
	// exactly reproducible.
	Seed int64

	// RandomSampleCount bounds the terminal phase's Random stage. Zero
	// means "fill whatever budget the Baseline/Sensitivity/Pairs stages
	// left".
	RandomSampleCount int
}

// maxCombinations resolves the phase's effective combination cap,
// applying the algorithm-specific default when unset.
func (p Phase) maxCombinations() int {
	if p.MaxCombinations > 0 {
		return p.MaxCombinations
	}
	if p.Algorithm == AlgorithmMultiStage {
		return DefaultTerminalBudget
	}
	return DefaultMaxCombinations
}

// Candidate is one fully-resolved parameter point plus the score it
// earned during evaluation.
type Candidate struct {
	Params config.StrategyParams
	Score  float64
}

// applyOverrides returns a copy of base with each name/value in
// overrides set on the matching field (spec.md §9 parameter naming,
// shared with config.ParseStrategyConfig's table).
func applyOverrides(base config.StrategyParams, overrides map[string]float64) config.StrategyParams {
	out := base
	fields := config.Fields(&out)
	for name, value := range overrides {
		if dst, ok := fields[name]; ok {
			*dst = value
		}
	}
	return out
}

// asOverrides reads back the fields named by names from p, the inverse
// of applyOverrides. Nothing in the package calls it; Run carries the
// previous phase's winner forward as a whole StrategyParams value.
func asOverrides(p config.StrategyParams, names []string) map[string]float64 {
	fields := config.Fields(&p)
	out := make(map[string]float64, len(names))
	for _, name := range names {
		if dst, ok := fields[name]; ok {
			out[name] = *dst
		}
	}
	return out
}
