package operations

import (
	"context"
	"fmt"
	"log/slog"

	"lobstat/internal/artifacts"
	"lobstat/internal/book"
	"lobstat/internal/config"
	"lobstat/internal/feed"
	"lobstat/internal/infrastructure"
	"lobstat/internal/normalize"
	"lobstat/internal/statistics"
	"lobstat/pkg/contracts/domain"
)

// Unit kinds, used in logs, metrics and reports.
const (
	KindReconstruct = "reconstruct"
	KindResponse    = "response"
	KindStatistics  = "statistics"
)

// Unit is one independent piece of batch work.
type Unit interface {
	// ID identifies the unit in logs and reports.
	ID() string
	Kind() string
	Run(ctx context.Context, env *Env) (Outcome, error)
}

// Outcome is what a successful unit produced.
type Outcome struct {
	Artifacts   []domain.ArtifactKey
	Rejected    map[normalize.Reason]int
	MissingDays []string
	// Year is set by StatisticsUnit.
	Year *statistics.YearStats
}

func (o *Outcome) addRejected(s normalize.Stats) {
	for reason, n := range s.ByReason {
		if o.Rejected == nil {
			o.Rejected = make(map[normalize.Reason]int)
		}
		o.Rejected[reason] += n
	}
}

// Env holds what units share during a run.
type Env struct {
	Source  *feed.Source
	Store   artifacts.Store
	Run     config.RunConfig
	Logger  *slog.Logger
	Metrics *infrastructure.BatchMetrics
	RunID   string
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) normalizer() *normalize.Normalizer {
	var opts []normalize.Option
	if e.Run.ITCHUnit > 0 {
		opts = append(opts, normalize.WithOrderTimeUnit(e.Run.ITCHUnit))
	}
	if e.Run.TAQUnit > 0 {
		opts = append(opts, normalize.WithTAQTimeUnit(e.Run.TAQUnit))
	}
	return normalize.New(e.logger(), opts...)
}

// timeGrid returns the physical clock of the run.
func (e *Env) timeGrid() (book.TimeGrid, error) {
	if e.Run.Step == 0 {
		return book.MarketGrid(), nil
	}
	open, closing := e.Run.MarketOpen, e.Run.MarketClose
	if open == 0 && closing == 0 {
		open, closing = book.MarketOpen, book.MarketClose
	}
	return book.NewTimeGrid(open, closing, e.Run.Step)
}

func (e *Env) seedPolicy() (book.SeedPolicy, error) {
	if e.Run.SeedPolicy == "" {
		return book.SeedBackfill, nil
	}
	return book.ParseSeedPolicy(e.Run.SeedPolicy)
}

func (e *Env) put(ctx context.Context, key domain.ArtifactKey, table artifacts.Table, attrs map[string]string) error {
	a := artifacts.New(key, table)
	a.Meta.RunID = e.RunID
	a.Meta.Attrs = attrs
	if err := e.Store.Put(ctx, a); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// seriesKey is the key of a per-day series written by ReconstructUnit.
func seriesKey(kind domain.ArtifactKind, ticker, date string, scale domain.Scale) domain.ArtifactKey {
	return domain.ArtifactKey{
		Kind:   kind,
		Ticker: ticker,
		Year:   yearOf(date),
		Date:   date,
		Scale:  scale,
	}
}

func yearOf(date string) int {
	var y int
	fmt.Sscanf(date, "%4d", &y)
	return y
}
