package ta50

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mselser95/binarybot/pkg/config"
	"github.com/mselser95/binarybot/pkg/types"
)

func TestDecide_UnwindFirst(t *testing.T) {
	// spec.md §8 scenario 4: inv_yes=0, inv_no=40, E=+0.4, q*=+50, dq=+90.
	p := config.DefaultStrategyParams()
	exp := ExposureResult{QStar: 50, QCurrent: -40, Dq: 90, ShouldAct: true}

	action, ok := Decide(p, exp, 0, 40)
	assert.True(t, ok)
	assert.True(t, action.IsUnwind)
	assert.Equal(t, types.Sell, action.Side)
	assert.Equal(t, types.No, action.Outcome)
	assert.Equal(t, 40.0, action.Quantity)
}

func TestDecide_BuildAfterUnwindClears(t *testing.T) {
	p := config.DefaultStrategyParams()
	// Once inv_no is fully unwound, dq>0 with no NO inventory builds YES.
	exp := ExposureResult{QStar: 50, QCurrent: 0, Dq: 50, ShouldAct: true}
	action, ok := Decide(p, exp, 0, 0)
	assert.True(t, ok)
	assert.False(t, action.IsUnwind)
	assert.Equal(t, types.Buy, action.Side)
	assert.Equal(t, types.Yes, action.Outcome)
	assert.Equal(t, p.QStep, action.Quantity)
}

func TestDecide_SymmetricForNegativeDq(t *testing.T) {
	p := config.DefaultStrategyParams()
	exp := ExposureResult{QStar: -50, QCurrent: 40, Dq: -90, ShouldAct: true}
	action, ok := Decide(p, exp, 40, 0)
	assert.True(t, ok)
	assert.True(t, action.IsUnwind)
	assert.Equal(t, types.Sell, action.Side)
	assert.Equal(t, types.Yes, action.Outcome)
}

func TestDecide_NoActionWhenShouldActFalse(t *testing.T) {
	p := config.DefaultStrategyParams()
	exp := ExposureResult{ShouldAct: false}
	_, ok := Decide(p, exp, 0, 0)
	assert.False(t, ok)
}

func TestDecide_TargetDirectionClassification(t *testing.T) {
	p := config.DefaultStrategyParams()
	exp := ExposureResult{QStar: 50, QCurrent: 0, Dq: 50, ShouldAct: true}
	action, _ := Decide(p, exp, 0, 0)
	assert.Equal(t, types.LongYes, action.TargetDirection)
}
