// Package state holds per-bot strategy state: the Time-Above-0.5
// estimator's tau/dbar, bounded price history, and the throttle
// timestamps the risk validator reads. Each bot exclusively owns its
// entry; the store keys by bot id and provides scoped reads/writes
// (spec.md §3 Bot Strategy State, §9 "avoid owning references between
// strategy modules").
package state

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// PricePoint is one (timestamp, consensus price) sample in a bot's
// bounded price history.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// PriceHistoryCap is the maximum number of price points retained per bot;
// oldest entries are truncated from the front on overflow (spec.md §9).
const PriceHistoryCap = 5000

// State is one bot's Time-Above-0.5 strategy state.
type State struct {
	Tau  float64
	Dbar float64

	PriceHistory []PricePoint

	LastDecisionTime        time.Time
	LastFillTime             time.Time
	LastDirectionChangeTime  time.Time
	CurrentDirection         string // a types.Direction value, stored as a plain string
}

// AppendPrice appends (ts, p) to the bounded history, truncating the
// front on overflow.
func (s *State) AppendPrice(ts time.Time, p float64) {
	s.PriceHistory = append(s.PriceHistory, PricePoint{Timestamp: ts, Price: p})
	if len(s.PriceHistory) > PriceHistoryCap {
		overflow := len(s.PriceHistory) - PriceHistoryCap
		s.PriceHistory = s.PriceHistory[overflow:]
	}
}

// LastPriceTime returns the timestamp of the most recent price sample, or
// the zero Time if history is empty.
func (s *State) LastPriceTime() (time.Time, bool) {
	if len(s.PriceHistory) == 0 {
		return time.Time{}, false
	}
	return s.PriceHistory[len(s.PriceHistory)-1].Timestamp, true
}

// newState returns a freshly initialized state with tau at the neutral
// midpoint (p=0.5 has never been observed either way).
func newState() *State {
	return &State{Tau: 0.5}
}

// Store owns per-bot State records, keyed by bot id, under a single
// read-write lock biased toward readers (teacher's
// internal/orderbook.Manager snapshot-map shape, keyed by bot id instead
// of token id).
type Store struct {
	mu     sync.RWMutex
	states map[string]*State
	logger *zap.Logger
}

// New creates an empty strategy-state store.
func New(logger *zap.Logger) *Store {
	return &Store{
		states: make(map[string]*State),
		logger: logger,
	}
}

// GetOrCreate returns the bot's state, creating it on first use.
func (s *Store) GetOrCreate(botID string) *State {
	s.mu.RLock()
	st, ok := s.states[botID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.states[botID]; ok {
		return st
	}
	st = newState()
	s.states[botID] = st
	TrackedBots.Set(float64(len(s.states)))
	return st
}

// Get returns the bot's state without creating it.
func (s *Store) Get(botID string) (*State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[botID]
	return st, ok
}

// Delete removes the bot's state entry. Must be called after the bot's
// task has stopped (spec.md §5 shared-resource policy).
func (s *Store) Delete(botID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, botID)
	TrackedBots.Set(float64(len(s.states)))
	if s.logger != nil {
		s.logger.Info("bot-state-deleted", zap.String("bot-id", botID))
	}
}

// Len returns the number of tracked bots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
