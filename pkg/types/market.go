package types

import "time"

// Outcome identifies one leg of a binary market.
type Outcome string

const (
	Yes Outcome = "YES"
	No  Outcome = "NO"
)

// Opposite returns the complementary leg.
func (o Outcome) Opposite() Outcome {
	if o == Yes {
		return No
	}
	return Yes
}

// Market is a binary prediction-market event with two tradable legs.
type Market struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Question   string    `json:"question"`
	YesTokenID string    `json:"yes_token_id"`
	NoTokenID  string    `json:"no_token_id"`
	TickSize   float64   `json:"tick_size"`
	MinSize    float64   `json:"min_size"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// TokenID returns the CLOB token id for the given leg.
func (m Market) TokenID(o Outcome) string {
	if o == Yes {
		return m.YesTokenID
	}
	return m.NoTokenID
}

// OrderBookSnapshot is the best bid/ask pair for both legs of a market at a
// point in time. Invariant (after correction): BidYes <= AskYes, BidNo <= AskNo.
type OrderBookSnapshot struct {
	MarketID  string
	Timestamp time.Time
	BidYes    float64
	AskYes    float64
	BidNo     float64
	AskNo     float64

	// Corrected* record whether an inverted bid/ask pair was swapped on that
	// leg; used only for telemetry, never fatal.
	CorrectedYes bool
	CorrectedNo  bool
}

// SpreadYes is AskYes - BidYes.
func (s OrderBookSnapshot) SpreadYes() float64 { return s.AskYes - s.BidYes }

// SpreadNo is AskNo - BidNo.
func (s OrderBookSnapshot) SpreadNo() float64 { return s.AskNo - s.BidNo }

// Valid reports whether every side of the snapshot is a positive, present
// quote. Snapshots failing this are discarded by callers, not corrected.
func (s OrderBookSnapshot) Valid() bool {
	return s.BidYes > 0 && s.AskYes > 0 && s.BidNo > 0 && s.AskNo > 0
}

// CorrectInversions swaps bid/ask on any leg where bid > ask, recording the
// correction. Returns the corrected snapshot and the number of legs fixed.
func (s OrderBookSnapshot) CorrectInversions() (OrderBookSnapshot, int) {
	corrected := 0
	out := s
	if out.BidYes > out.AskYes {
		out.BidYes, out.AskYes = out.AskYes, out.BidYes
		out.CorrectedYes = true
		corrected++
	}
	if out.BidNo > out.AskNo {
		out.BidNo, out.AskNo = out.AskNo, out.BidNo
		out.CorrectedNo = true
		corrected++
	}
	return out, corrected
}

// BestBidAsk returns the best bid/ask for the given leg.
func (s OrderBookSnapshot) BestBidAsk(o Outcome) (bid, ask float64) {
	if o == Yes {
		return s.BidYes, s.AskYes
	}
	return s.BidNo, s.AskNo
}

// RecordingSession is a market's lifetime recording window. Ticks and
// snapshots attach to exactly one session.
type RecordingSession struct {
	ID         string
	MarketID   string
	MarketName string
	StartTime  time.Time
	EndTime    time.Time
}
