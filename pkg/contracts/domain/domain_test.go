package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicks(t *testing.T) {
	assert.Equal(t, 123.45, Ticks(1234500).Dollars())
	assert.Equal(t, "123.4500", Ticks(1234500).String())
}

func TestSignOf(t *testing.T) {
	assert.Equal(t, SignBuy, SignOf(3))
	assert.Equal(t, SignSell, SignOf(-1))
	assert.Equal(t, SignUndefined, SignOf(0))
	assert.Equal(t, "sell", SignSell.String())
}

func TestBookSnapshot(t *testing.T) {
	s := SnapshotFromQuote(Quote{Time: time.Second, Bid: 1000000, Ask: 1000200})
	assert.True(t, s.Valid())
	assert.Equal(t, 1000100.0, s.Midpoint())
	assert.Equal(t, Ticks(200), s.Spread())

	assert.False(t, BookSnapshot{BestBid: NoBid, BestAsk: 1000200}.Valid())
	assert.False(t, BookSnapshot{BestBid: 1000000, BestAsk: NoAsk}.Valid())
}

func TestArtifactKeyPath(t *testing.T) {
	base := ArtifactKey{
		Kind:       ArtifactResponse,
		Ticker:     "AAPL",
		Year:       2008,
		Scale:      ScalePhysical,
		Statistic:  StatisticResponse,
		ReturnKind: ReturnSimple,
		LagGrid:    "tau1000",
	}
	assert.Equal(t, "response/2008/AAPL/year__scale-physical__stat-response__ret-simple__lag-tau1000", base.Path())

	variants := []func(k *ArtifactKey){
		func(k *ArtifactKey) { k.Counterpart = "MSFT" },
		func(k *ArtifactKey) { k.Shift = 10 },
		func(k *ArtifactKey) { k.Shift = -10 },
		func(k *ArtifactKey) { k.ReturnKind = ReturnLog },
		func(k *ArtifactKey) { k.Scale = ScaleEvent },
		func(k *ArtifactKey) { k.LagGrid = "tau100" },
		func(k *ArtifactKey) { k.Statistic = StatisticSignCorrelator },
	}
	seen := map[string]bool{base.Path(): true}
	for _, mutate := range variants {
		k := base
		mutate(&k)
		assert.False(t, seen[k.Path()], k.Path())
		seen[k.Path()] = true
	}

	day := base.ForDay("2008-01-02")
	assert.Equal(t, "2008-01-02", day.Date)
	assert.Contains(t, day.Path(), "/20080102__")
	assert.Equal(t, "response AAPL 2008-01-02", day.String())

	cross := base
	cross.Counterpart = "MSFT"
	assert.True(t, cross.IsCross())
	assert.Contains(t, cross.Path(), "AAPL__MSFT")
}
