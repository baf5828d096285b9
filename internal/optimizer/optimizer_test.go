package optimizer

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/binarybot/internal/performance"
	"github.com/mselser95/binarybot/pkg/config"
)

// peakEval scores a candidate by how close its K field lands to 2.5,
// so the optimizer's best-candidate selection has a known right answer.
func peakEval(ctx context.Context, params config.StrategyParams) (performance.Metrics, error) {
	return performance.Metrics{Sharpe: -math.Abs(params.K - 2.5)}, nil
}

func TestOptimizer_ExhaustivePhaseFindsPeak(t *testing.T) {
	opt := New(zaptest.NewLogger(t), peakEval)

	phase := Phase{
		Number:          1,
		Name:            "k-sweep",
		ParameterRanges: []ParameterRange{{Name: "k", Min: 0, Max: 5, Step: 0.5}},
		OptimizeMetric:  MetricSharpe,
		TopN:            3,
		Algorithm:       AlgorithmExhaustive,
	}

	results, best, err := opt.Run(context.Background(), config.StrategyParams{}, []Phase{phase})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 2.5, best.K, 1e-9)
	assert.InDelta(t, 0, results[0].Best.Score, 1e-9)
}

func TestOptimizer_SkipIfNegativeSkipsPhase(t *testing.T) {
	alwaysNegative := func(ctx context.Context, params config.StrategyParams) (performance.Metrics, error) {
		return performance.Metrics{Sharpe: -1}, nil
	}
	opt := New(zaptest.NewLogger(t), alwaysNegative)

	phase := Phase{
		Number:          1,
		Name:            "doomed",
		ParameterRanges: []ParameterRange{{Name: "k", Min: 0, Max: 2, Step: 1}},
		OptimizeMetric:  MetricSharpe,
		SkipIfNegative:  true,
		Algorithm:       AlgorithmExhaustive,
	}

	results, best, err := opt.Run(context.Background(), config.StrategyParams{K: 1}, []Phase{phase})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.InDelta(t, 1, best.K, 1e-9) // base carried through unchanged
}

func TestOptimizer_CombinationCapAbortsPhase(t *testing.T) {
	opt := New(zaptest.NewLogger(t), peakEval)

	phase := Phase{
		Number: 1,
		Name:   "too-big",
		ParameterRanges: []ParameterRange{
			{Name: "k", Min: 0, Max: 100, Step: 1},
			{Name: "Q_max", Min: 0, Max: 100, Step: 1},
		},
		OptimizeMetric:  MetricSharpe,
		Algorithm:       AlgorithmExhaustive,
		MaxCombinations: 10,
	}

	_, _, err := opt.Run(context.Background(), config.StrategyParams{}, []Phase{phase})
	assert.Error(t, err)
}

func TestOptimizer_ProgressChannelClosesAfterRun(t *testing.T) {
	opt := New(zaptest.NewLogger(t), peakEval)
	phase := Phase{
		Number:          1,
		Name:            "k-sweep",
		ParameterRanges: []ParameterRange{{Name: "k", Min: 0, Max: 1, Step: 1}},
		OptimizeMetric:  MetricSharpe,
		Algorithm:       AlgorithmExhaustive,
	}

	_, _, err := opt.Run(context.Background(), config.StrategyParams{}, []Phase{phase})
	require.NoError(t, err)

	for range opt.Progress() {
	}
}

func TestOptimizer_PhasesCarryBestForward(t *testing.T) {
	opt := New(zaptest.NewLogger(t), peakEval)

	phase1 := Phase{
		Number:          1,
		Name:            "coarse",
		ParameterRanges: []ParameterRange{{Name: "k", Min: 0, Max: 5, Step: 1}},
		OptimizeMetric:  MetricSharpe,
		TopN:            3,
		Algorithm:       AlgorithmExhaustive,
	}
	phase2 := Phase{
		Number:          2,
		Name:            "fine",
		ParameterRanges: []ParameterRange{{Name: "k", Min: 1.5, Max: 3.5, Step: 0.25}},
		OptimizeMetric:  MetricSharpe,
		TopN:            3,
		Algorithm:       AlgorithmExhaustive,
	}

	_, best, err := opt.Run(context.Background(), config.StrategyParams{}, []Phase{phase1, phase2})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, best.K, 1e-9)
}
