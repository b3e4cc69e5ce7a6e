package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/pkg/contracts/domain"
)

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func snap(at float64, bid, ask domain.Ticks) domain.BookSnapshot {
	return domain.BookSnapshot{Time: sec(at), BestBid: bid, BestAsk: ask}
}

var quoteDay = []domain.BookSnapshot{
	snap(8, 100000, 100200),
	snap(9, 100000, domain.NoAsk),
	snap(11.5, 100100, 100300),
	snap(12, 100200, 100400),
	snap(12.5, 100300, 100500),
}

func TestMarketGrid(t *testing.T) {
	g := MarketGrid()
	assert.Equal(t, 34800*time.Second, g.Start)
	assert.Equal(t, 22200, g.Len)
	assert.Equal(t, 57000*time.Second, g.End())

	_, err := NewTimeGrid(10*time.Second, 5*time.Second, time.Second)
	assert.Error(t, err)
}

func TestMidpointGrid(t *testing.T) {
	g := TimeGrid{Start: sec(10), Step: time.Second, Len: 5}

	mid, err := MidpointGrid(quoteDay, g)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10.01, 10.02, 10.04, 10.04, 10.04}, mid, 1e-9)

	mid, err = MidpointGrid(quoteDay[2:], g)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10.02, 10.02, 10.04, 10.04, 10.04}, mid, 1e-9)

	_, err = MidpointGrid([]domain.BookSnapshot{snap(1, 100, domain.NoAsk)}, g)
	assert.ErrorIs(t, err, ErrNoQuotes)
}

func TestSignGridLagsOneStep(t *testing.T) {
	g := TimeGrid{Start: sec(10), Step: time.Second, Len: 3}
	trades := []domain.Trade{
		{Time: sec(10.5), Sign: domain.SignBuy},
		{Time: sec(11.2), Sign: domain.SignBuy},
		{Time: sec(11.7), Sign: domain.SignSell},
		{Time: sec(12.1), Sign: domain.SignBuy},
		{Time: sec(12.3), Sign: domain.SignBuy},
		{Time: sec(12.9), Sign: domain.SignSell},
		{Time: sec(13.5), Sign: domain.SignSell},
		{Time: sec(14), Sign: domain.SignSell},
	}

	assert.Equal(t, []domain.Sign{domain.SignUndefined, domain.SignBuy, domain.SignSell}, SignGrid(trades, g))
}

func TestMidpointAtTrades(t *testing.T) {
	trades := []domain.Trade{{Time: sec(7)}, {Time: sec(11.5)}, {Time: sec(12.2)}}

	mid, err := MidpointAtTrades(quoteDay, trades)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10.01, 10.02, 10.03}, mid, 1e-9)
}

func TestEventIndex(t *testing.T) {
	g := TimeGrid{Start: sec(10), Step: time.Second, Len: 5}
	trades := []domain.Trade{{Time: sec(9)}, {Time: sec(10.5)}, {Time: sec(14.9)}, {Time: sec(15)}}

	assert.Equal(t, []int{-1, 0, 4, -1}, EventIndex(trades, g))
}

func TestMarketHours(t *testing.T) {
	got := MarketHours(quoteDay, sec(9), sec(12))
	require.Len(t, got, 2)
	assert.Equal(t, sec(9), got[0].Time)
	assert.Equal(t, sec(11.5), got[1].Time)

	trades := TradesInHours([]domain.Trade{{Time: sec(1)}, {Time: sec(10)}}, sec(5), sec(20))
	assert.Len(t, trades, 1)
}
