package config

import (
	"math"
	"strconv"

	"go.uber.org/zap"
)

// StrategyParams is the typed configuration record for the Time-Above-0.5
// pipeline. It replaces the opaque key->value map carried by
// types.BotInstance.StrategyConfig once parsed (spec.md §9 "dynamic maps of
// parameters").
type StrategyParams struct {
	HTau     float64
	HD       float64
	WChopSec float64

	T0     float64
	ThetaB float64

	Alpha float64
	Beta  float64
	Gamma float64

	D0 float64
	D1 float64

	C0     float64
	Sigma0 float64

	K     float64
	QMax  float64
	QStep float64

	DeltaMin float64
	Delta0   float64
	LambdaS  float64
	LambdaC  float64
	AMin     float64

	EEnter   float64
	EExit    float64
	ETaker   float64
	EOverride float64

	SpreadMaxEntry float64
	SpreadHalt     float64

	TFlat float64

	RebalanceInterval float64
	Cooldown          float64
	MinHold           float64
}

// DefaultStrategyParams returns the spec.md §6 default strategy
// configuration.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		HTau:     45.0,
		HD:       60.0,
		WChopSec: 90.0,

		T0:     3.0,
		ThetaB: 1.5,

		Alpha: 1.0,
		Beta:  0.6,
		Gamma: 0.3,

		D0: 0.015,
		D1: 0.010,

		C0:     2.0,
		Sigma0: 0.08,

		K:     2.5,
		QMax:  600,
		QStep: 10,

		DeltaMin: 0.003,
		Delta0:   0.004,
		LambdaS:  0.5,
		LambdaC:  0.002,
		AMin:     0.15,

		EEnter:    0.18,
		EExit:     0.10,
		ETaker:    0.30,
		EOverride: 0.35,

		SpreadMaxEntry: 0.025,
		SpreadHalt:     0.04,

		TFlat: 1.0,

		RebalanceInterval: 2.0,
		Cooldown:          2.0,
		MinHold:           15.0,
	}
}

// paramFields maps each §6 configuration key to a setter closure, letting
// ParseStrategyConfig stay table-driven instead of one switch arm per key.
func paramFields(p *StrategyParams) map[string]*float64 {
	return map[string]*float64{
		"H_tau":             &p.HTau,
		"H_d":               &p.HD,
		"W_chop_sec":        &p.WChopSec,
		"T0":                &p.T0,
		"theta_b":           &p.ThetaB,
		"alpha":             &p.Alpha,
		"beta":              &p.Beta,
		"gamma":             &p.Gamma,
		"d0":                &p.D0,
		"d1":                &p.D1,
		"c0":                &p.C0,
		"sigma0":            &p.Sigma0,
		"k":                 &p.K,
		"Q_max":             &p.QMax,
		"q_step":            &p.QStep,
		"delta_min":         &p.DeltaMin,
		"delta0":            &p.Delta0,
		"lambda_s":          &p.LambdaS,
		"lambda_c":          &p.LambdaC,
		"A_min":             &p.AMin,
		"E_enter":           &p.EEnter,
		"E_exit":            &p.EExit,
		"E_taker":           &p.ETaker,
		"E_override":        &p.EOverride,
		"spread_max_entry":  &p.SpreadMaxEntry,
		"spread_halt":       &p.SpreadHalt,
		"T_flat":            &p.TFlat,
		"rebalance_interval": &p.RebalanceInterval,
		"cooldown":          &p.Cooldown,
		"min_hold":          &p.MinHold,
	}
}

// Fields exposes the name->pointer table for a params value, letting
// external callers (the parameter optimizer) set individual fields by
// their §6 key without duplicating the name table.
func Fields(p *StrategyParams) map[string]*float64 {
	return paramFields(p)
}

// ParseStrategyConfig builds a StrategyParams starting from the §6
// defaults and overriding each key found in raw. Keys that fail to parse
// as a finite float fall back to the default (ConfigOutOfRange, spec.md
// §7) and are logged as a warning; unknown keys are ignored but logged
// (spec.md §9).
func ParseStrategyConfig(raw map[string]string, logger *zap.Logger) StrategyParams {
	params := DefaultStrategyParams()
	fields := paramFields(&params)

	for key, value := range raw {
		dst, known := fields[key]
		if !known {
			if logger != nil {
				logger.Warn("strategy-config-unknown-key", zap.String("key", key), zap.String("value", value))
			}
			continue
		}

		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || isNonFinite(parsed) {
			if logger != nil {
				logger.Warn("strategy-config-out-of-range",
					zap.String("key", key),
					zap.String("value", value),
					zap.Float64("default", *dst),
				)
			}
			continue
		}

		*dst = parsed
	}

	return params
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
