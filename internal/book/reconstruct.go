package book

import (
	"fmt"
	"log/slog"

	"lobstat/pkg/contracts/domain"
)

// Options controls a reconstruction.
type Options struct {
	// Grid overrides the derived grid when Step is non-zero.
	Grid   Grid
	Band   float64
	Step   domain.Ticks
	Logger *slog.Logger
}

// Result is the output of one day's reconstruction.
type Result struct {
	Grid      Grid
	Snapshots []domain.BookSnapshot
	Trades    []domain.Trade
	Events    int
	Resting   int
}

// Reconstruct derives the price grid and replays events through a fresh
// Engine. events must be in nondecreasing time order.
func Reconstruct(events []domain.OrderEvent, opts Options) (*Result, error) {
	if opts.Band == 0 {
		opts.Band = DefaultBand
	}
	if opts.Step == 0 {
		opts.Step = DefaultStep
	}

	grid := opts.Grid
	if grid.Step == 0 {
		var err error
		grid, err = GridFromEvents(events, opts.Band, opts.Step)
		if err != nil {
			return nil, fmt.Errorf("derive price grid: %w", err)
		}
	}

	engine, err := NewEngine(grid, opts.Logger)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := engine.Apply(ev); err != nil {
			return nil, fmt.Errorf("replay order events: %w", err)
		}
	}

	return &Result{
		Grid:      grid,
		Snapshots: engine.Snapshots(),
		Trades:    engine.Trades(),
		Events:    len(events),
		Resting:   engine.Resting(),
	}, nil
}

// SnapshotsFromQuotes keeps the quotes that change the best bid or ask.
func SnapshotsFromQuotes(quotes []domain.Quote) []domain.BookSnapshot {
	out := make([]domain.BookSnapshot, 0, len(quotes))
	last := domain.BookSnapshot{BestBid: domain.NoBid, BestAsk: domain.NoAsk}
	for _, q := range quotes {
		if q.Bid == last.BestBid && q.Ask == last.BestAsk {
			continue
		}
		last = domain.SnapshotFromQuote(q)
		out = append(out, last)
	}
	return out
}
