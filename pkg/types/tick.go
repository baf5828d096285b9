package types

import "time"

// Tick is a trade print recorded during a session: timestamp, outcome
// leg, price, size. Ticks are ordered by Timestamp within a session.
type Tick struct {
	SessionID string
	Timestamp time.Time
	Outcome   Outcome
	Price     float64
	Size      float64
}
