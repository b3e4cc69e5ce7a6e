package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"lobstat/internal/artifacts"
	"lobstat/internal/book"
	"lobstat/internal/feed"
	"lobstat/internal/infrastructure"
	"lobstat/internal/response"
	"lobstat/pkg/contracts/domain"
)

// errUnreadableDay marks a day whose series exist but cannot be loaded or
// decoded. Such days are skipped like missing ones.
var errUnreadableDay = errors.New("unreadable day series")

func unreadable(err error) error {
	return fmt.Errorf("%w: %w", errUnreadableDay, err)
}

// ResponseUnit computes one year aggregate of a response function or sign
// correlator for the pair (TickerI, TickerJ): TickerI is observed, TickerJ
// drives. TickerI == TickerJ is the self statistic.
//
// The artifact has columns tau, value and count. Row k holds lag index
// k = 0..TauMax-1 and is labelled tau = k+1, the number of steps between the
// driving sign and the observed value.
type ResponseUnit struct {
	TickerI string
	TickerJ string
	Year    int
	Scale   domain.Scale
	Params  response.Params
}

// ID implements Unit
func (u ResponseUnit) ID() string {
	id := fmt.Sprintf("response/%s/%s/%s/%d/%s/%s/%s",
		u.Params.Statistic, u.TickerI, u.TickerJ, u.Year, u.Scale, u.Params.Return, u.Params.LagGrid())
	if u.Params.Shift != 0 {
		id += "/shift" + strconv.Itoa(u.Params.Shift)
	}
	return id
}

// Kind implements Unit
func (u ResponseUnit) Kind() string { return KindResponse }

// Key returns the key of the artifact the unit writes.
func (u ResponseUnit) Key() domain.ArtifactKey {
	key := domain.ArtifactKey{
		Kind:       domain.ArtifactResponse,
		Ticker:     u.TickerI,
		Year:       u.Year,
		Scale:      u.Scale,
		Statistic:  u.Params.Statistic,
		ReturnKind: u.Params.Return,
		LagGrid:    u.Params.LagGrid(),
		Shift:      u.Params.Shift,
	}
	if u.TickerJ != u.TickerI {
		key.Counterpart = u.TickerJ
	}
	if u.Params.Statistic == domain.StatisticSignCorrelator {
		key.ReturnKind = ""
	}
	return key
}

// Run implements Unit
func (u ResponseUnit) Run(ctx context.Context, env *Env) (Outcome, error) {
	var out Outcome
	if err := u.Params.Validate(); err != nil {
		return out, err
	}
	if u.Scale == domain.ScaleTrade && u.TickerI != u.TickerJ {
		return out, fmt.Errorf("trade scale needs a single ticker, got %s and %s", u.TickerI, u.TickerJ)
	}

	ctx = infrastructure.WithUnit(ctx, u.ID())
	logger := env.logger()
	dates, err := feed.BusinessDays(u.Year, env.Run.Holidays)
	if err != nil {
		return out, err
	}

	year := response.NewYear(u.Params.TauMax)
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		acc, found, err := u.day(ctx, env, date)
		if errors.Is(err, errUnreadableDay) && ctx.Err() == nil {
			logger.WarnContext(ctx, "day skipped, series unreadable",
				slog.String("date", date),
				slog.String("error", err.Error()))
			_ = year.Add(response.Missing(date))
			continue
		}
		if err != nil {
			return out, fmt.Errorf("day %s: %w", date, err)
		}
		if !found {
			logger.DebugContext(ctx, "day skipped, series missing", slog.String("date", date))
			_ = year.Add(response.Missing(date))
			continue
		}
		if err := year.Add(response.DayResult{Date: date, Found: true, Acc: acc}); err != nil {
			return out, err
		}
	}

	out.MissingDays = year.MissingDays()
	if year.Days() == 0 {
		return out, NewMissingInputError(u.ID(), fmt.Sprintf("series for all %d business days", len(dates)))
	}
	if len(out.MissingDays) > 0 {
		logger.WarnContext(ctx, "days missing from year aggregate",
			slog.Int("missing", len(out.MissingDays)),
			slog.Int("days", year.Days()))
	}

	totals := year.Totals()
	ratio := year.Ratio()
	table := artifacts.NewTable("tau", "value", "count")
	for tau := range ratio {
		table.Append(float64(tau+1), ratio[tau], totals.Counts[tau])
	}
	key := u.Key()
	if err := env.put(ctx, key, table, map[string]string{
		"days":         strconv.Itoa(year.Days()),
		"missing_days": strconv.Itoa(len(out.MissingDays)),
	}); err != nil {
		return out, err
	}
	out.Artifacts = []domain.ArtifactKey{key}
	return out, nil
}

// day returns the sums of one date, or found=false when a series is missing.
func (u ResponseUnit) day(ctx context.Context, env *Env, date string) (*response.Accumulator, bool, error) {
	switch u.Scale {
	case domain.ScaleTrade:
		trades, found, err := u.load(ctx, env, domain.ArtifactTrades, u.TickerI, date, domain.ScaleTrade)
		if err != nil || !found {
			return nil, found, err
		}
		ts, err := readTrades(trades)
		if err != nil {
			return nil, false, unreadable(err)
		}
		acc, err := response.Day(response.Series{Mid: ts.Mid, Signs: ts.Signs}, ts.Signs, u.Params)
		return acc, err == nil, err

	case domain.ScalePhysical, domain.ScaleEvent:
		obs, found, err := u.observed(ctx, env, date)
		if err != nil || !found {
			return nil, found, err
		}
		if u.Scale == domain.ScalePhysical {
			signs, found, err := u.load(ctx, env, domain.ArtifactTradeSigns, u.TickerJ, date, domain.ScalePhysical)
			if err != nil || !found {
				return nil, found, err
			}
			driver, err := column(signs, colSign)
			if err != nil {
				return nil, false, unreadable(err)
			}
			acc, err := response.Day(obs, toSigns(driver), u.Params)
			return acc, err == nil, err
		}

		trades, found, err := u.load(ctx, env, domain.ArtifactTrades, u.TickerJ, date, domain.ScaleTrade)
		if err != nil || !found {
			return nil, found, err
		}
		ts, err := readTrades(trades)
		if err != nil {
			return nil, false, unreadable(err)
		}
		grid, err := env.timeGrid()
		if err != nil {
			return nil, false, err
		}
		acc, err := response.DayEvents(obs, eventSamples(ts, grid), u.Params)
		return acc, err == nil, err

	default:
		return nil, false, fmt.Errorf("unknown scale %q", u.Scale)
	}
}

// observed loads the physical-clock series of TickerI that the statistic
// needs.
func (u ResponseUnit) observed(ctx context.Context, env *Env, date string) (response.Series, bool, error) {
	kind, col := domain.ArtifactMidpoint, colMidpoint
	if u.Params.Statistic == domain.StatisticSignCorrelator {
		kind, col = domain.ArtifactTradeSigns, colSign
	}
	a, found, err := u.load(ctx, env, kind, u.TickerI, date, domain.ScalePhysical)
	if err != nil || !found {
		return response.Series{}, found, err
	}
	values, err := column(a, col)
	if err != nil {
		return response.Series{}, false, unreadable(err)
	}
	if kind == domain.ArtifactMidpoint {
		return response.Series{Mid: values}, true, nil
	}
	return response.Series{Signs: toSigns(values)}, true, nil
}

func (u ResponseUnit) load(ctx context.Context, env *Env, kind domain.ArtifactKind, ticker, date string, scale domain.Scale) (*artifacts.Artifact, bool, error) {
	a, found, err := env.Store.Get(ctx, seriesKey(kind, ticker, date, scale))
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, err
		}
		return nil, false, unreadable(fmt.Errorf("load %s %s: %w", kind, ticker, err))
	}
	return a, found, nil
}

// eventSamples places every trade at the physical bucket it falls in.
func eventSamples(ts tradeSeries, grid book.TimeGrid) []response.Sample {
	samples := make([]response.Sample, 0, len(ts.Times))
	for i, t := range ts.Times {
		if b, ok := grid.Bucket(t); ok {
			samples = append(samples, response.Sample{Index: b, Sign: ts.Signs[i]})
		}
	}
	return samples
}
