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

// twoParamPeakEval rewards K near 2.5 and QStep near 10, independently,
// so sensitivity/pairs/random can be checked against a known optimum.
func twoParamPeakEval(ctx context.Context, params config.StrategyParams) (performance.Metrics, error) {
	s := -math.Abs(params.K-2.5) - math.Abs(params.QStep-10)
	return performance.Metrics{Sharpe: s}, nil
}

func TestRunTerminalPhase_StandaloneFallsBackToPhaseRanges(t *testing.T) {
	opt := New(zaptest.NewLogger(t), twoParamPeakEval)

	phase := Phase{
		Number: 1,
		Name:   "terminal",
		ParameterRanges: []ParameterRange{
			{Name: "k", Min: 1, Max: 4, Step: 1.5},
			{Name: "q_step", Min: 5, Max: 15, Step: 5},
		},
		OptimizeMetric:  MetricSharpe,
		TopN:            5,
		Algorithm:       AlgorithmMultiStage,
		MaxCombinations: 50,
		Seed:            7,
	}

	results, _, err := opt.Run(context.Background(), config.StrategyParams{K: 1, QStep: 5}, []Phase{phase})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].EvaluatedCount, 1)
	assert.LessOrEqual(t, results[0].EvaluatedCount, 50)
}

func TestRunTerminalPhase_UsesTrackedValuesFromPriorPhase(t *testing.T) {
	opt := New(zaptest.NewLogger(t), twoParamPeakEval)

	coarse := Phase{
		Number:          1,
		Name:            "coarse",
		ParameterRanges: []ParameterRange{{Name: "k", Min: 0, Max: 5, Step: 1}},
		OptimizeMetric:  MetricSharpe,
		TopN:            3,
		Algorithm:       AlgorithmExhaustive,
	}
	terminal := Phase{
		Number:          2,
		Name:            "terminal",
		OptimizeMetric:  MetricSharpe,
		TopN:            3,
		Algorithm:       AlgorithmMultiStage,
		MaxCombinations: 30,
		Seed:            3,
	}

	results, _, err := opt.Run(context.Background(), config.StrategyParams{QStep: 10}, []Phase{coarse, terminal})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[1].Skipped)
	assert.GreaterOrEqual(t, results[1].Best.Score, results[0].Best.Score-1e-6)
}

func TestTop3UniqueValues_DedupsAndCaps(t *testing.T) {
	tracks := []paramTrack{
		{value: 1, score: 0.9},
		{value: 1, score: 0.5},
		{value: 2, score: 0.8},
		{value: 3, score: 0.7},
		{value: 4, score: 0.6},
	}
	got := top3UniqueValues(tracks)
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestFallbackValues_MinMidMax(t *testing.T) {
	r := ParameterRange{Min: 0, Max: 10}
	assert.Equal(t, []float64{0, 5, 10}, fallbackValues(r))
}
