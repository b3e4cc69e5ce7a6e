package statistics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/pkg/contracts/domain"
)

func quote(sec int, bid, ask domain.Ticks) domain.Quote {
	return domain.Quote{Time: time.Duration(sec) * time.Second, Bid: bid, Ask: ask}
}

func TestDay(t *testing.T) {
	quotes := []domain.Quote{
		quote(1, 1000000, 1000200), // mid 1000100
		quote(1, 1000000, 1000400), // mid 1000200, last of second 1
		quote(2, 1000100, 1000300), // single quote, no error
	}
	trades := []domain.TradePrint{{Time: time.Second, Price: 1000100, Volume: 10}}

	s := Day("2008-01-02", quotes, trades)
	assert.True(t, s.Found)
	assert.Equal(t, 3, s.Quotes)
	assert.Equal(t, 1, s.Trades)
	assert.InDelta(t, 0.02666666, s.AvgSpread, 1e-6)

	// second 1: mean 1000150, last 1000200
	want := (50.0 / 1000150) / 2
	assert.InDelta(t, want, s.MidpointError, 1e-12)
}

func TestDayWithoutQuotes(t *testing.T) {
	s := Day("2008-01-02", nil, []domain.TradePrint{{Price: 1, Volume: 1}})
	assert.True(t, s.Found)
	assert.Equal(t, 1, s.Trades)
	assert.True(t, math.IsNaN(s.AvgSpread))
	assert.True(t, math.IsNaN(s.MidpointError))
}

func TestYear(t *testing.T) {
	days := []DayStats{
		{Date: "2008-01-02", Found: true, Quotes: 100, Trades: 10, AvgSpread: 0.02, MidpointError: 0.001},
		Missing("2008-01-03"),
		{Date: "2008-01-04", Found: true, Quotes: 300, Trades: 30, AvgSpread: math.NaN(), MidpointError: math.NaN()},
	}
	y := Year("AAPL", 2008, days)

	assert.Equal(t, 2, y.Days)
	assert.Equal(t, []string{"2008-01-03"}, y.MissingDays)
	assert.Equal(t, 200.0, y.AvgQuotes)
	assert.Equal(t, 20.0, y.AvgTrades)
	assert.Equal(t, 0.02, y.AvgSpread)
	assert.Equal(t, 0.001, y.MidpointError)
}

func TestYearNoData(t *testing.T) {
	y := Year("AAPL", 2008, []DayStats{Missing("2008-01-02")})
	assert.Zero(t, y.Days)
	assert.True(t, math.IsNaN(y.AvgQuotes))
	assert.True(t, math.IsNaN(y.AvgSpread))
}

func TestSortBySpread(t *testing.T) {
	years := []YearStats{
		{Ticker: "C", AvgSpread: math.NaN()},
		{Ticker: "A", AvgSpread: 0.05},
		{Ticker: "B", AvgSpread: 0.01},
	}
	SortBySpread(years)

	var order []string
	for _, y := range years {
		order = append(order, y.Ticker)
	}
	require.Equal(t, []string{"B", "A", "C"}, order)
}
