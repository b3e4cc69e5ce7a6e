package statistics

import (
	"math"
	"sort"

	"lobstat/pkg/contracts/domain"
)

// DayStats summarises one ticker-day. Missing days carry Found=false and NaN
// values.
type DayStats struct {
	Date   string
	Found  bool
	Quotes int
	Trades int
	// AvgSpread is the mean quoted spread in dollars.
	AvgSpread float64
	// MidpointError is the mean, over distinct quote timestamps, of the
	// relative gap between the average and the last midpoint at that time.
	MidpointError float64
}

// Missing returns the statistics of a day without input.
func Missing(date string) DayStats {
	return DayStats{Date: date, AvgSpread: math.NaN(), MidpointError: math.NaN()}
}

// Day computes the statistics of one day of quotes and trades.
func Day(date string, quotes []domain.Quote, trades []domain.TradePrint) DayStats {
	s := DayStats{
		Date:          date,
		Found:         true,
		Quotes:        len(quotes),
		Trades:        len(trades),
		AvgSpread:     math.NaN(),
		MidpointError: math.NaN(),
	}
	if len(quotes) == 0 {
		return s
	}

	var spread int64
	for _, q := range quotes {
		spread += int64(q.Ask - q.Bid)
	}
	s.AvgSpread = float64(spread) / float64(len(quotes)) / domain.TicksPerDollar
	s.MidpointError = midpointError(quotes)
	return s
}

// midpointError expects quotes in nondecreasing time order.
func midpointError(quotes []domain.Quote) float64 {
	var total float64
	var groups int
	for i := 0; i < len(quotes); {
		j := i
		var sum float64
		for j < len(quotes) && quotes[j].Time == quotes[i].Time {
			sum += midpoint(quotes[j])
			j++
		}
		mean := sum / float64(j-i)
		total += math.Abs(mean-midpoint(quotes[j-1])) / mean
		groups++
		i = j
	}
	return total / float64(groups)
}

func midpoint(q domain.Quote) float64 {
	return (float64(q.Bid) + float64(q.Ask)) / 2
}

// YearStats averages the found days of a ticker-year, ignoring NaN values.
type YearStats struct {
	Ticker        string
	Year          int
	Days          int
	MissingDays   []string
	AvgQuotes     float64
	AvgTrades     float64
	AvgSpread     float64
	MidpointError float64
}

// Year aggregates day statistics. Values are NaN when no day was found.
func Year(ticker string, year int, days []DayStats) YearStats {
	y := YearStats{Ticker: ticker, Year: year}
	var quotes, trades, spread, midErr mean
	for _, d := range days {
		if !d.Found {
			y.MissingDays = append(y.MissingDays, d.Date)
			continue
		}
		y.Days++
		quotes.add(float64(d.Quotes))
		trades.add(float64(d.Trades))
		spread.add(d.AvgSpread)
		midErr.add(d.MidpointError)
	}
	y.AvgQuotes = quotes.value()
	y.AvgTrades = trades.value()
	y.AvgSpread = spread.value()
	y.MidpointError = midErr.value()
	return y
}

// SortBySpread orders years by ascending average spread; NaN sorts last.
func SortBySpread(years []YearStats) {
	sort.SliceStable(years, func(i, j int) bool {
		a, b := years[i].AvgSpread, years[j].AvgSpread
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a < b
	})
}

// mean skips NaN samples.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}
