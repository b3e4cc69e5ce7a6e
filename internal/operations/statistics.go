package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"lobstat/internal/artifacts"
	"lobstat/internal/feed"
	"lobstat/internal/infrastructure"
	"lobstat/internal/statistics"
	"lobstat/pkg/contracts/domain"
)

// StatisticsUnit computes quote and trade statistics of one ticker over
// the business days of a year.
type StatisticsUnit struct {
	Ticker string
	Year   int
}

// ID implements Unit
func (u StatisticsUnit) ID() string {
	return fmt.Sprintf("statistics/%s/%d", u.Ticker, u.Year)
}

// Kind implements Unit
func (u StatisticsUnit) Kind() string { return KindStatistics }

// Key returns the key of the per-day statistics artifact.
func (u StatisticsUnit) Key() domain.ArtifactKey {
	return domain.ArtifactKey{Kind: domain.ArtifactStatistics, Ticker: u.Ticker, Year: u.Year}
}

// Run implements Unit
func (u StatisticsUnit) Run(ctx context.Context, env *Env) (Outcome, error) {
	ctx = infrastructure.WithUnit(ctx, u.ID())
	var out Outcome
	dates, err := feed.BusinessDays(u.Year, env.Run.Holidays)
	if err != nil {
		return out, err
	}

	n := env.normalizer()
	days := make([]statistics.DayStats, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rawQuotes, qfound, err := env.Source.Quotes(ctx, u.Ticker, date)
		if err != nil {
			return out, fmt.Errorf("day %s: %w", date, err)
		}
		rawTrades, tfound, err := env.Source.Trades(ctx, u.Ticker, date)
		if err != nil {
			return out, fmt.Errorf("day %s: %w", date, err)
		}
		if !qfound || !tfound {
			days = append(days, statistics.Missing(date))
			continue
		}

		quotes, qstats := n.Quotes(rawQuotes)
		trades, tstats := n.Trades(rawTrades)
		out.addRejected(qstats)
		out.addRejected(tstats)
		days = append(days, statistics.Day(date, quotes, trades))
	}

	year := statistics.Year(u.Ticker, u.Year, days)
	out.Year = &year
	out.MissingDays = year.MissingDays
	if year.Days == 0 {
		return out, NewMissingInputError(u.ID(), fmt.Sprintf("quotes and trades for all %d business days", len(dates)))
	}

	table := artifacts.NewTable("date", "quotes", "trades", "avg_spread", "midpoint_error")
	for _, d := range days {
		if !d.Found {
			continue
		}
		date, _ := strconv.ParseFloat(strings.ReplaceAll(d.Date, "-", ""), 64)
		table.Append(date, float64(d.Quotes), float64(d.Trades), d.AvgSpread, d.MidpointError)
	}
	if err := env.put(ctx, u.Key(), table, map[string]string{
		"days":         strconv.Itoa(year.Days),
		"missing_days": strconv.Itoa(len(year.MissingDays)),
	}); err != nil {
		return out, err
	}
	out.Artifacts = []domain.ArtifactKey{u.Key()}

	env.logger().InfoContext(ctx, "year statistics computed",
		slog.Int("days", year.Days),
		slog.String("avg_spread", strconv.FormatFloat(year.AvgSpread, 'f', 4, 64)))
	return out, nil
}
