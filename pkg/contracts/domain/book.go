package domain

import (
	"time"
)

// BookSnapshot is the best bid and ask after an event that changed either.
type BookSnapshot struct {
	Time    time.Duration `json:"time"`
	BestBid Ticks         `json:"best_bid"`
	BestAsk Ticks         `json:"best_ask"`
}

// Valid reports whether both sides are populated.
func (s BookSnapshot) Valid() bool {
	return s.BestBid != NoBid && s.BestAsk != NoAsk
}

// Midpoint returns the arithmetic mean of best bid and best ask in ticks.
// Callers must check Valid first.
func (s BookSnapshot) Midpoint() float64 {
	return (float64(s.BestBid) + float64(s.BestAsk)) / 2
}

// Spread returns best ask minus best bid. Callers must check Valid first.
func (s BookSnapshot) Spread() Ticks {
	return s.BestAsk - s.BestBid
}

// SnapshotFromQuote converts a quote record into a snapshot.
func SnapshotFromQuote(q Quote) BookSnapshot {
	return BookSnapshot{Time: q.Time, BestBid: q.Bid, BestAsk: q.Ask}
}
