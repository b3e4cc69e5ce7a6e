package app

import (
	"fmt"
	"strings"
	"time"

	"lobstat/internal/config"
	"lobstat/internal/feed"
	"lobstat/internal/operations"
	"lobstat/internal/response"
	"lobstat/internal/validation"
	"lobstat/pkg/contracts/domain"
)

// Dates returns the business days of year within [from, to]. Empty bounds
// are open.
func Dates(year int, holidays []string, from, to string) ([]string, error) {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, bound); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", bound, err)
		}
	}

	days, err := feed.BusinessDays(year, holidays)
	if err != nil {
		return nil, err
	}
	out := days[:0]
	for _, d := range days {
		if (from == "" || d >= from) && (to == "" || d <= to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ReconstructUnits returns one unit per ticker and date, tickers outermost.
func ReconstructUnits(source string, tickers, dates []string) []operations.Unit {
	units := make([]operations.Unit, 0, len(tickers)*len(dates))
	for _, ticker := range tickers {
		for _, date := range dates {
			units = append(units, operations.ReconstructUnit{Ticker: ticker, Date: date, Source: source})
		}
	}
	return units
}

// ResponseUnits converts expanded sweep jobs into units.
func ResponseUnits(jobs []config.ResponseJob) ([]operations.Unit, error) {
	units := make([]operations.Unit, 0, len(jobs))
	for i, job := range jobs {
		params := response.Params{
			TauMax:    job.TauMax,
			Return:    domain.ReturnKind(job.Return),
			Statistic: domain.Statistic(job.Statistic),
			Shift:     job.Shift,
		}
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("job %d (%s/%s): %w", i+1, job.TickerI, job.TickerJ, err)
		}
		units = append(units, operations.ResponseUnit{
			TickerI: job.TickerI,
			TickerJ: job.TickerJ,
			Year:    job.Year,
			Scale:   domain.Scale(job.Scale),
			Params:  params,
		})
	}
	return units, nil
}

// StatisticsUnits returns one unit per ticker.
func StatisticsUnits(tickers []string, year int) []operations.Unit {
	units := make([]operations.Unit, len(tickers))
	for i, ticker := range tickers {
		units[i] = operations.StatisticsUnit{Ticker: ticker, Year: year}
	}
	return units
}

// ParseTickers splits a comma-separated ticker list, upper-casing and
// de-duplicating it in order.
func ParseTickers(list string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, field := range strings.Split(list, ",") {
		ticker := strings.ToUpper(strings.TrimSpace(field))
		if ticker == "" || seen[ticker] {
			continue
		}
		if !validation.IsTicker(ticker) {
			return nil, fmt.Errorf("invalid ticker %q", field)
		}
		seen[ticker] = true
		out = append(out, ticker)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no tickers given")
	}
	return out, nil
}
