package domain

import (
	"math"
	"strconv"
	"time"
)

// Ticks is a price in the feed's fixed-point convention (dollars x 10,000).
type Ticks int64

// TicksPerDollar is the fixed-point scale used by ITCH and TAQ prices.
const TicksPerDollar = 10000

const (
	// NoBid is the sentinel best bid of an empty bid side.
	NoBid Ticks = 0
	// NoAsk is the sentinel best ask of an empty ask side.
	NoAsk Ticks = math.MaxInt64
)

// Dollars converts ticks to a dollar amount.
func (t Ticks) Dollars() float64 {
	return float64(t) / TicksPerDollar
}

// String formats the price in dollars with four decimals.
func (t Ticks) String() string {
	return strconv.FormatFloat(t.Dollars(), 'f', 4, 64)
}

// Side is the side of a resting limit order.
type Side uint8

const (
	SideUnknown Side = iota
	SideBid
	SideAsk
)

// String returns the string representation of the side
func (s Side) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// EventKind tags a normalized order-book event.
type EventKind uint8

const (
	EventUnknown EventKind = iota
	// EventInsert adds a limit order (ITCH "B" or "S").
	EventInsert
	// EventExecute executes part of a resting order ("E").
	EventExecute
	// EventCancel cancels part of a resting order ("C").
	EventCancel
	// EventFullExecute executes the remainder of a resting order ("F").
	EventFullExecute
	// EventDelete removes a resting order ("D").
	EventDelete
	// EventBulkCross is the bulk volume of a cross event ("X").
	EventBulkCross
	// EventHiddenExecute executes a non-displayed order ("T").
	EventHiddenExecute
)

var eventKindNames = map[EventKind]string{
	EventInsert:        "insert",
	EventExecute:       "execute",
	EventCancel:        "cancel",
	EventFullExecute:   "full_execute",
	EventDelete:        "delete",
	EventBulkCross:     "bulk_cross",
	EventHiddenExecute: "hidden_execute",
}

// String returns the string representation of the event kind
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// TouchesBook reports whether the kind changes the displayed book.
func (k EventKind) TouchesBook() bool {
	return k >= EventInsert && k <= EventDelete
}

// RemovesOrder reports whether the kind takes an order off the book.
func (k EventKind) RemovesOrder() bool {
	return k == EventFullExecute || k == EventDelete
}

// IsExecution reports whether the kind is a displayed execution.
func (k EventKind) IsExecution() bool {
	return k == EventExecute || k == EventFullExecute
}

// OrderEvent is one normalized order-book message. Side and Price are only
// meaningful for inserts; later events refer back to the insert by OrderID.
type OrderEvent struct {
	Time    time.Duration `json:"time"`
	OrderID uint64        `json:"order_id"`
	Kind    EventKind     `json:"kind"`
	Side    Side          `json:"side,omitempty"`
	Volume  int64         `json:"volume"`
	Price   Ticks         `json:"price"`
}

// Quote is one top-of-book record from a quote feed.
type Quote struct {
	Time time.Duration `json:"time"`
	Bid  Ticks         `json:"bid"`
	Ask  Ticks         `json:"ask"`
}
