package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// FeedMessage is a single inbound message from a MarketFeed websocket
// connection: either a full book snapshot or a last-trade print. Mirrors
// the teacher's OrderbookMessage wire shape (string timestamp, string
// price/size fields) since real exchange feeds serialize numbers as
// strings to avoid float precision loss.
type FeedMessage struct {
	EventType string       `json:"event_type"` // "book" or "last_trade_price"
	TokenID   string       `json:"asset_id"`
	MarketID  string       `json:"market"`
	Timestamp int64        `json:"-"` // parsed from string via UnmarshalJSON
	Bids      []PriceLevel `json:"bids,omitempty"`
	Asks      []PriceLevel `json:"asks,omitempty"`
	Price     string       `json:"price,omitempty"`
	Size      string       `json:"size,omitempty"`
}

// UnmarshalJSON handles the string-encoded timestamp the feed sends.
func (m *FeedMessage) UnmarshalJSON(data []byte) error {
	type alias FeedMessage
	aux := &struct {
		TimestampStr string `json:"timestamp"`
		*alias
	}{alias: (*alias)(m)}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.TimestampStr != "" {
		ts, err := strconv.ParseInt(aux.TimestampStr, 10, 64)
		if err != nil {
			return err
		}
		m.Timestamp = ts
	}
	return nil
}

// PriceLevel is a single price/size level as the feed serializes it.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// BestPrice parses the level's price, returning 0 on a malformed value.
func (p PriceLevel) BestPrice() float64 {
	v, _ := strconv.ParseFloat(p.Price, 64)
	return v
}

// BestSize parses the level's size, returning 0 on a malformed value.
func (p PriceLevel) BestSize() float64 {
	v, _ := strconv.ParseFloat(p.Size, 64)
	return v
}

// SingleLegSnapshot is the best bid/ask for one leg of a market, as
// delivered by the feed before the two legs are assembled into an
// OrderBookSnapshot.
type SingleLegSnapshot struct {
	MarketID     string
	TokenID      string
	Outcome      Outcome
	BestBidPrice float64
	BestBidSize  float64
	BestAskPrice float64
	BestAskSize  float64
	LastUpdated  time.Time
}
