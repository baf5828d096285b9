package config

import "strconv"

// ArbitrageParams is the typed configuration record for the leg-balancing
// arbitrage engine (spec.md §4.7, §6).
type ArbitrageParams struct {
	OrderSize        float64
	MaxPosition      float64
	MinProfitMargin  float64
	NormalCooldownMS int64
	CloseoutCooldownMS int64
	ImbalanceThreshold float64
	ProfitThreshold    float64
	MaxSingleLegPrice  float64
	CloseoutThreshold  float64
}

// DefaultArbitrageParams returns the spec.md §4.7/§6 default arbitrage
// configuration.
func DefaultArbitrageParams() ArbitrageParams {
	return ArbitrageParams{
		OrderSize:          10,
		MaxPosition:        100,
		MinProfitMargin:    0.05,
		NormalCooldownMS:   3000,
		CloseoutCooldownMS: 500,
		ImbalanceThreshold: 0.5,
		ProfitThreshold:    0.98,
		MaxSingleLegPrice:  0.75,
		CloseoutThreshold:  0.90,
	}
}

// ParseArbitrageConfig builds ArbitrageParams from defaults, overriding
// order_size / max_position / min_profit_margin when present in raw.
func ParseArbitrageConfig(raw map[string]string) ArbitrageParams {
	params := DefaultArbitrageParams()
	if v, ok := raw["order_size"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.OrderSize = f
		}
	}
	if v, ok := raw["max_position"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxPosition = f
		}
	}
	if v, ok := raw["min_profit_margin"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinProfitMargin = f
		}
	}
	return params
}
