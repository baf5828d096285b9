package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterRange_ValuesInclusiveOfMax(t *testing.T) {
	r := ParameterRange{Name: "k", Min: 1, Max: 2, Step: 0.5}
	assert.Equal(t, []float64{1, 1.5, 2}, r.values())
}

func TestParameterRange_ZeroStepReturnsMinOnly(t *testing.T) {
	r := ParameterRange{Name: "k", Min: 2, Max: 5}
	assert.Equal(t, []float64{2}, r.values())
}

func TestGenerateCombinations_CartesianProduct(t *testing.T) {
	ranges := []ParameterRange{
		{Name: "a", Min: 0, Max: 1, Step: 1},
		{Name: "b", Min: 10, Max: 12, Step: 1},
	}
	combos, err := generateCombinations(ranges, nil, map[string]float64{}, 100)
	require.NoError(t, err)
	assert.Len(t, combos, 6)
}

func TestGenerateCombinations_ConstraintsPrune(t *testing.T) {
	ranges := []ParameterRange{
		{Name: "a", Min: 0, Max: 2, Step: 1},
	}
	onlyPositive := func(p map[string]float64) bool { return p["a"] > 0 }
	combos, err := generateCombinations(ranges, []Constraint{onlyPositive}, map[string]float64{}, 100)
	require.NoError(t, err)
	assert.Len(t, combos, 2)
}

func TestGenerateCombinations_AbortsAboveCap(t *testing.T) {
	ranges := []ParameterRange{
		{Name: "a", Min: 0, Max: 100, Step: 1},
		{Name: "b", Min: 0, Max: 100, Step: 1},
	}
	_, err := generateCombinations(ranges, nil, map[string]float64{}, 10)
	assert.Error(t, err)
}
