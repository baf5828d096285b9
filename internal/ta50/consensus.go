// Package ta50 implements the Time-Above-0.5 signal pipeline: consensus
// pricing, the stateful edge-score calculator, exposure management, the
// unwind-first decision engine, and maker-style price selection (spec.md
// §4.1-§4.6). Grounded on the teacher's internal/arbitrage package for
// per-step pure-function shape and the promauto metrics convention.
package ta50

const consensusEpsilon = 1e-6

// ConsensusResult is the output of ComputeConsensus (spec.md §3 Consensus
// Price, §4.1).
type ConsensusResult struct {
	P         float64
	SpreadYes float64
	SpreadNo  float64
	SpreadC   float64
	Valid     bool
}

// neutral is returned whenever consensus cannot be computed: p=0.5,
// valid=false, zero spreads.
var neutral = ConsensusResult{P: 0.5, Valid: false}

// ComputeConsensus blends both legs' mid prices into a single probability
// estimate, weighted inversely by each leg's spread. Returns valid=false
// with p=0.5 on any missing or non-positive side (spec.md §4.1).
func ComputeConsensus(yesBid, yesAsk, noBid, noAsk float64) ConsensusResult {
	if yesBid <= 0 || yesAsk <= 0 || noBid <= 0 || noAsk <= 0 {
		return neutral
	}

	spreadYes := yesAsk - yesBid
	spreadNo := noAsk - noBid

	midYes := (yesBid + yesAsk) / 2
	midNo := (noBid + noAsk) / 2
	pFromNo := 1 - midNo

	wYes := 1 / (spreadYes + consensusEpsilon)
	wNo := 1 / (spreadNo + consensusEpsilon)

	p := (wYes*midYes + wNo*pFromNo) / (wYes + wNo)
	p = clamp(p, 0.01, 0.99)

	spreadC := spreadYes
	if spreadNo < spreadC {
		spreadC = spreadNo
	}

	return ConsensusResult{
		P:         p,
		SpreadYes: spreadYes,
		SpreadNo:  spreadNo,
		SpreadC:   spreadC,
		Valid:     true,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
