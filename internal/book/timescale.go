package book

import (
	"errors"
	"fmt"
	"time"

	"lobstat/pkg/contracts/domain"
)

// ErrNoQuotes is returned when a day has no valid snapshot to resample.
var ErrNoQuotes = errors.New("no valid snapshots")

const (
	// MarketOpen is the start of the analysed window, 09:40.
	MarketOpen = 9*time.Hour + 40*time.Minute
	// MarketClose is the end of the analysed window, 15:50.
	MarketClose = 15*time.Hour + 50*time.Minute
)

// TimeGrid is a sequence of Len buckets of width Step starting at Start.
// Bucket i covers [Start+i*Step, Start+(i+1)*Step).
type TimeGrid struct {
	Start time.Duration `json:"start"`
	Step  time.Duration `json:"step"`
	Len   int           `json:"len"`
}

// NewTimeGrid covers [from, to) with buckets of width step.
func NewTimeGrid(from, to, step time.Duration) (TimeGrid, error) {
	if step <= 0 || to <= from {
		return TimeGrid{}, fmt.Errorf("invalid time grid: from=%s to=%s step=%s", from, to, step)
	}
	return TimeGrid{Start: from, Step: step, Len: int((to - from) / step)}, nil
}

// MarketGrid is the default one-second grid over 09:40-15:50.
func MarketGrid() TimeGrid {
	g, _ := NewTimeGrid(MarketOpen, MarketClose, time.Second)
	return g
}

// End returns the exclusive end of the last bucket.
func (g TimeGrid) End() time.Duration {
	return g.Start + time.Duration(g.Len)*g.Step
}

// Bucket returns the bucket containing t.
func (g TimeGrid) Bucket(t time.Duration) (int, bool) {
	if t < g.Start || t >= g.End() {
		return 0, false
	}
	return int((t - g.Start) / g.Step), true
}

// MidpointGrid samples the midpoint, in dollars, at the end of every bucket:
// the last valid snapshot before the bucket's end, carried forward through
// quiet buckets. Buckets before the first snapshot in the window take the
// last snapshot before the window or, when the day starts inside the
// window, the first snapshot.
func MidpointGrid(snaps []domain.BookSnapshot, g TimeGrid) ([]float64, error) {
	valid := validOnly(snaps)
	if len(valid) == 0 {
		return nil, ErrNoQuotes
	}

	out := make([]float64, g.Len)
	cur := -1
	for i := range out {
		end := g.Start + time.Duration(i+1)*g.Step
		for cur+1 < len(valid) && valid[cur+1].Time < end {
			cur++
		}
		if cur < 0 {
			out[i] = dollars(valid[0])
			continue
		}
		out[i] = dollars(valid[cur])
	}
	return out, nil
}

// SignGrid aggregates trade signs into buckets that lag the quote grid by
// one step: entry i is the sign of the summed signs in
// [Start+(i+1)*Step, Start+(i+2)*Step), and SignUndefined when that bucket
// has no trades or its signs cancel out.
func SignGrid(trades []domain.Trade, g TimeGrid) []domain.Sign {
	sums := make([]int64, g.Len)
	shifted := TimeGrid{Start: g.Start + g.Step, Step: g.Step, Len: g.Len}
	for _, tr := range trades {
		if i, ok := shifted.Bucket(tr.Time); ok {
			sums[i] += int64(tr.Sign)
		}
	}

	out := make([]domain.Sign, g.Len)
	for i, s := range sums {
		out[i] = domain.SignOf(s)
	}
	return out
}

// MidpointAtTrades returns the midpoint, in dollars, prevailing at each
// trade. Trades before the first valid snapshot use that snapshot.
func MidpointAtTrades(snaps []domain.BookSnapshot, trades []domain.Trade) ([]float64, error) {
	valid := validOnly(snaps)
	if len(valid) == 0 {
		return nil, ErrNoQuotes
	}

	out := make([]float64, len(trades))
	cur := 0
	for i, tr := range trades {
		for cur+1 < len(valid) && valid[cur+1].Time <= tr.Time {
			cur++
		}
		out[i] = dollars(valid[cur])
	}
	return out, nil
}

// EventIndex returns the bucket of every trade, or -1 for trades outside
// the grid.
func EventIndex(trades []domain.Trade, g TimeGrid) []int {
	out := make([]int, len(trades))
	for i, tr := range trades {
		if b, ok := g.Bucket(tr.Time); ok {
			out[i] = b
		} else {
			out[i] = -1
		}
	}
	return out
}

// MarketHours keeps the snapshots in [from, to).
func MarketHours(snaps []domain.BookSnapshot, from, to time.Duration) []domain.BookSnapshot {
	out := make([]domain.BookSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.Time >= from && s.Time < to {
			out = append(out, s)
		}
	}
	return out
}

// TradesInHours keeps the trades in [from, to).
func TradesInHours(trades []domain.Trade, from, to time.Duration) []domain.Trade {
	out := make([]domain.Trade, 0, len(trades))
	for _, tr := range trades {
		if tr.Time >= from && tr.Time < to {
			out = append(out, tr)
		}
	}
	return out
}

func validOnly(snaps []domain.BookSnapshot) []domain.BookSnapshot {
	out := make([]domain.BookSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.Valid() {
			out = append(out, s)
		}
	}
	return out
}

func dollars(s domain.BookSnapshot) float64 {
	return s.Midpoint() / domain.TicksPerDollar
}
