package backtest

import "github.com/mselser95/binarybot/pkg/types"

// PreparedSnapshot is one validated, precomputed order-book snapshot
// ready for replay (spec.md §4.8 "Initialization per run").
type PreparedSnapshot struct {
	Snapshot      types.OrderBookSnapshot
	ConsensusP    float64
	SpreadC       float64
	Corrected     int
}

// PrepareSnapshots validates and precomputes consensus pricing for every
// snapshot, discarding any with a missing side and counting corrections
// for inverted bid/ask pairs (spec.md §3, §4.8). consensusFn is injected
// rather than called directly, keeping this helper independent of ta50's
// ConsensusResult type; the engine passes ta50Consensus, an adapter over
// ta50.ComputeConsensus.
func PrepareSnapshots(raw []types.OrderBookSnapshot, consensusFn func(yesBid, yesAsk, noBid, noAsk float64) (p, spreadC float64, valid bool)) (prepared []PreparedSnapshot, discarded, corrected int) {
	for _, snap := range raw {
		if !snap.Valid() {
			discarded++
			continue
		}

		fixed, numCorrected := snap.CorrectInversions()
		corrected += numCorrected

		p, spreadC, valid := consensusFn(fixed.BidYes, fixed.AskYes, fixed.BidNo, fixed.AskNo)
		if !valid {
			discarded++
			continue
		}

		prepared = append(prepared, PreparedSnapshot{
			Snapshot:   fixed,
			ConsensusP: p,
			SpreadC:    spreadC,
			Corrected:  numCorrected,
		})
	}
	return prepared, discarded, corrected
}

// EvaluationSchedule throttles a time-ordered snapshot sequence to at
// most one evaluation per rebalanceIntervalSeconds, yielding the indices
// into snapshots that the strategy pipeline should actually evaluate
// (spec.md §4.8 step 1).
func EvaluationSchedule(snapshots []PreparedSnapshot, rebalanceIntervalSeconds float64) []int {
	if len(snapshots) == 0 {
		return nil
	}

	var schedule []int
	var lastEvalTime *int64
	for i, s := range snapshots {
		ts := s.Snapshot.Timestamp.UnixMilli()
		if lastEvalTime != nil {
			elapsedSeconds := float64(ts-*lastEvalTime) / 1000.0
			if elapsedSeconds < rebalanceIntervalSeconds {
				continue
			}
		}
		schedule = append(schedule, i)
		t := ts
		lastEvalTime = &t
	}
	return schedule
}
