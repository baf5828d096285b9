package ta50

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mselser95/binarybot/pkg/types"
)

func TestPrice_BuyJoinsBid(t *testing.T) {
	action := TradeAction{Side: types.Buy, Outcome: types.Yes}
	d := Price(action, 0.451, 0.46, 0.39, 0.40, 0.01, 0.2)
	assert.InDelta(t, 0.45, d.Price, 1e-9)
}

func TestPrice_SellJoinsAsk(t *testing.T) {
	action := TradeAction{Side: types.Sell, Outcome: types.No}
	d := Price(action, 0.451, 0.46, 0.39, 0.402, 0.01, 0.2)
	assert.InDelta(t, 0.40, d.Price, 1e-9)
}

func TestPrice_ConfidenceLevels(t *testing.T) {
	unwind := TradeAction{Side: types.Sell, Outcome: types.Yes, IsUnwind: true}
	assert.Equal(t, 0.95, Price(unwind, 0.5, 0.51, 0.49, 0.5, 0.01, 0.5).Confidence)

	build := TradeAction{Side: types.Buy, Outcome: types.Yes}
	assert.Equal(t, 0.90, Price(build, 0.5, 0.51, 0.49, 0.5, 0.01, 0.30).Confidence)
	assert.Equal(t, 0.80, Price(build, 0.5, 0.51, 0.49, 0.5, 0.01, 0.19).Confidence)
	assert.Equal(t, 0.70, Price(build, 0.5, 0.51, 0.49, 0.5, 0.01, 0.10).Confidence)
}
