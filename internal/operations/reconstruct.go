package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"lobstat/internal/artifacts"
	"lobstat/internal/book"
	"lobstat/internal/infrastructure"
	"lobstat/pkg/contracts/domain"
)

// Data sources of a ReconstructUnit.
const (
	SourceITCH = "itch"
	SourceTAQ  = "taq"
)

// ReconstructUnit rebuilds the book and the signed trades of one
// ticker-day and stores the series used by responses:
//
//	snapshots   best bid/ask changes, whole day
//	trades      signed trades in the market window with their midpoint
//	midpoint    midpoint on the physical clock
//	trade_signs aggregated trade signs on the physical clock
type ReconstructUnit struct {
	Ticker string
	Date   string
	// Source is SourceITCH or SourceTAQ.
	Source string
}

// ID implements Unit
func (u ReconstructUnit) ID() string {
	return fmt.Sprintf("reconstruct/%s/%s/%s", u.Source, u.Ticker, u.Date)
}

// Kind implements Unit
func (u ReconstructUnit) Kind() string { return KindReconstruct }

// Run implements Unit
func (u ReconstructUnit) Run(ctx context.Context, env *Env) (Outcome, error) {
	ctx = infrastructure.WithUnit(ctx, u.ID())
	logger := env.logger().With(
		slog.String("ticker", u.Ticker),
		slog.String("date", u.Date))

	var (
		out    Outcome
		snaps  []domain.BookSnapshot
		trades []domain.Trade
		err    error
	)
	switch u.Source {
	case SourceITCH:
		snaps, trades, err = u.fromOrders(ctx, env, &out)
	case SourceTAQ, "":
		snaps, trades, err = u.fromQuotes(ctx, env, &out)
	default:
		err = fmt.Errorf("unknown source %q", u.Source)
	}
	if err != nil {
		return out, err
	}

	grid, err := env.timeGrid()
	if err != nil {
		return out, err
	}
	mid, err := book.MidpointGrid(snaps, grid)
	if err != nil {
		return out, fmt.Errorf("resample midpoint: %w", err)
	}
	signs := book.SignGrid(trades, grid)

	inHours := book.TradesInHours(trades, grid.Start, grid.End())
	tradeMid, err := book.MidpointAtTrades(snaps, inHours)
	if err != nil {
		return out, fmt.Errorf("midpoint at trades: %w", err)
	}

	attrs := map[string]string{"source": u.Source}
	writes := []struct {
		key   domain.ArtifactKey
		table artifacts.Table
	}{
		{seriesKey(domain.ArtifactSnapshots, u.Ticker, u.Date, ""), snapshotsTable(snaps)},
		{seriesKey(domain.ArtifactTrades, u.Ticker, u.Date, domain.ScaleTrade), tradesTable(inHours, tradeMid)},
		{seriesKey(domain.ArtifactMidpoint, u.Ticker, u.Date, domain.ScalePhysical), midpointTable(mid)},
		{seriesKey(domain.ArtifactTradeSigns, u.Ticker, u.Date, domain.ScalePhysical), signTable(signs)},
	}
	for _, w := range writes {
		if err := env.put(ctx, w.key, w.table, attrs); err != nil {
			return out, err
		}
		out.Artifacts = append(out.Artifacts, w.key)
	}

	logger.InfoContext(ctx, "day reconstructed",
		slog.Int("snapshots", len(snaps)),
		slog.Int("trades", len(trades)),
		slog.Int("trades_in_hours", len(inHours)))
	return out, nil
}

func (u ReconstructUnit) fromOrders(ctx context.Context, env *Env, out *Outcome) ([]domain.BookSnapshot, []domain.Trade, error) {
	raws, found, err := env.Source.Orders(ctx, u.Ticker, u.Date)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, NewMissingInputError(u.ID(), "order file")
	}

	events, stats := env.normalizer().Orders(raws)
	out.addRejected(stats)

	res, err := book.Reconstruct(events, book.Options{
		Band:   env.Run.Band,
		Step:   domain.Ticks(env.Run.TickStep),
		Logger: env.logger(),
	})
	if err != nil {
		return nil, nil, err
	}
	env.logger().DebugContext(ctx, "book replayed",
		slog.Int64("grid_min", int64(res.Grid.Min)),
		slog.Int64("grid_max", int64(res.Grid.Max)),
		slog.Int("resting_orders", res.Resting))
	return res.Snapshots, res.Trades, nil
}

func (u ReconstructUnit) fromQuotes(ctx context.Context, env *Env, out *Outcome) ([]domain.BookSnapshot, []domain.Trade, error) {
	rawQuotes, found, err := env.Source.Quotes(ctx, u.Ticker, u.Date)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, NewMissingInputError(u.ID(), "quote file")
	}
	rawTrades, found, err := env.Source.Trades(ctx, u.Ticker, u.Date)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, NewMissingInputError(u.ID(), "trade file")
	}

	n := env.normalizer()
	quotes, qstats := n.Quotes(rawQuotes)
	prints, tstats := n.Trades(rawTrades)
	out.addRejected(qstats)
	out.addRejected(tstats)

	policy, err := env.seedPolicy()
	if err != nil {
		return nil, nil, err
	}
	trades, err := book.ClassifyTicks(prints, policy)
	if err != nil {
		return nil, nil, fmt.Errorf("classify %s trades: %w", strconv.Quote(u.Ticker), err)
	}
	return book.SnapshotsFromQuotes(quotes), trades, nil
}
