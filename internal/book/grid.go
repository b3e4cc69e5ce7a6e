package book

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lobstat/pkg/contracts/domain"
)

const (
	// DefaultBand is the relative margin added around the day's price range.
	DefaultBand = 0.10
	// DefaultStep is one cent.
	DefaultStep domain.Ticks = 100
)

// Grid is the bounded set of price levels tracked by an Engine. Level i has
// price Min + i*Step; Max is the last level.
type Grid struct {
	Min  domain.Ticks `json:"min"`
	Max  domain.Ticks `json:"max"`
	Step domain.Ticks `json:"step"`
}

// Validate checks the grid bounds.
func (g Grid) Validate() error {
	if g.Step <= 0 || g.Max < g.Min || g.Min < 0 {
		return fmt.Errorf("%w: min=%d max=%d step=%d", ErrInvalidGrid, g.Min, g.Max, g.Step)
	}
	return nil
}

// Levels returns the number of price levels.
func (g Grid) Levels() int {
	return int((g.Max-g.Min)/g.Step) + 1
}

// Index returns the level nearest to price and whether it lies on the grid.
func (g Grid) Index(price domain.Ticks) (int, bool) {
	d := price - g.Min
	half := g.Step / 2
	if d < -half {
		return 0, false
	}
	idx := int((d + half) / g.Step)
	if idx >= g.Levels() {
		return 0, false
	}
	return idx, true
}

// Price returns the price of level idx.
func (g Grid) Price(idx int) domain.Ticks {
	return g.Min + domain.Ticks(idx)*g.Step
}

// GridFromEvents derives the grid from the day's full executions: the
// lowest and highest reference prices widened by band and snapped to step.
// The reference price of a full execution is its order's insert price. When
// the day has no full executions, insert prices are used instead.
func GridFromEvents(events []domain.OrderEvent, band float64, step domain.Ticks) (Grid, error) {
	if step <= 0 {
		return Grid{}, fmt.Errorf("%w: step=%d", ErrInvalidGrid, step)
	}
	if band < 0 || band >= 1 {
		return Grid{}, fmt.Errorf("%w: band=%v", ErrInvalidGrid, band)
	}

	inserted := make(map[uint64]domain.Ticks)
	var lo, hi domain.Ticks
	var seen bool
	include := func(p domain.Ticks) {
		if p <= 0 {
			return
		}
		if !seen || p < lo {
			lo = p
		}
		if !seen || p > hi {
			hi = p
		}
		seen = true
	}

	for _, ev := range events {
		switch ev.Kind {
		case domain.EventInsert:
			inserted[ev.OrderID] = ev.Price
		case domain.EventFullExecute:
			if p, ok := inserted[ev.OrderID]; ok {
				include(p)
			} else {
				include(ev.Price)
			}
		}
	}
	if !seen {
		for _, p := range inserted {
			include(p)
		}
	}
	if !seen {
		return Grid{}, ErrEmptyStream
	}

	b := decimal.NewFromFloat(band)
	s := decimal.NewFromInt(int64(step))
	snap := func(p domain.Ticks, factor decimal.Decimal) domain.Ticks {
		v := decimal.NewFromInt(int64(p)).Mul(factor).Div(s).Round(0).Mul(s)
		return domain.Ticks(v.IntPart())
	}

	g := Grid{
		Min:  snap(lo, decimal.NewFromInt(1).Sub(b)),
		Max:  snap(hi, decimal.NewFromInt(1).Add(b)),
		Step: step,
	}
	if g.Min < 0 {
		g.Min = 0
	}
	return g, g.Validate()
}
