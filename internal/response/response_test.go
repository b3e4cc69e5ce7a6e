package response

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/pkg/contracts/domain"
)

func params(tauMax int) Params {
	return Params{TauMax: tauMax, Return: domain.ReturnSimple, Statistic: domain.StatisticResponse}
}

func allBuys(n int) []domain.Sign {
	out := make([]domain.Sign, n)
	for i := range out {
		out[i] = domain.SignBuy
	}
	return out
}

func TestDaySelfResponseMatchesSingleLagReturns(t *testing.T) {
	mid := []float64{10, 11, 10.5, 12, 12.5}

	acc, err := Day(Series{Mid: mid}, allBuys(len(mid)), params(3))
	require.NoError(t, err)

	for tau := 0; tau < 3; tau++ {
		var want float64
		n := len(mid) - tau - 1
		for t0 := 0; t0 < n; t0++ {
			want += (mid[t0+tau+1] - mid[t0]) / mid[t0]
		}
		assert.InDelta(t, want, acc.Sums[tau], 1e-12, "tau %d", tau)
		assert.Equal(t, float64(n), acc.Counts[tau])
		assert.InDelta(t, want/float64(n), acc.Ratio()[tau], 1e-12)
	}
}

func TestDayLogReturn(t *testing.T) {
	mid := []float64{10, 20}
	p := params(1)
	p.Return = domain.ReturnLog

	acc, err := Day(Series{Mid: mid}, []domain.Sign{domain.SignSell, domain.SignBuy}, p)
	require.NoError(t, err)
	assert.InDelta(t, -math.Ln2, acc.Sums[0], 1e-12)
	assert.Equal(t, 1.0, acc.Counts[0])
}

func TestDayCountsOnlyNonzeroSigns(t *testing.T) {
	mid := []float64{1, 2, 3, 4, 5, 6}
	signs := []domain.Sign{1, 0, -1, 0, 1, 1}

	acc, err := Day(Series{Mid: mid}, signs, params(3))
	require.NoError(t, err)
	// windows [0,5), [0,4), [0,3)
	assert.Equal(t, []float64{3, 2, 2}, acc.Counts)
	assert.InDelta(t, 1.0-1.0/3+0.2, acc.Sums[0], 1e-12)
}

func TestDayMonotoneCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	mid := make([]float64, 300)
	signs := make([]domain.Sign, 300)
	price := 100.0
	for i := range mid {
		price += rng.Float64() - 0.5
		mid[i] = price
		signs[i] = domain.Sign(rng.Intn(3) - 1)
	}

	acc, err := Day(Series{Mid: mid}, signs, params(50))
	require.NoError(t, err)
	assert.True(t, MonotoneCounts(acc.Counts))

	full, err := Day(Series{Mid: mid}, allBuys(len(mid)), params(50))
	require.NoError(t, err)
	assert.Equal(t, float64(len(mid)-1), full.Counts[0])
	for tau := 1; tau < 50; tau++ {
		assert.Less(t, full.Counts[tau], full.Counts[tau-1])
	}
}

func TestDayDegenerateWindowIsNaN(t *testing.T) {
	acc, err := Day(Series{Mid: []float64{1, 2, 3}}, allBuys(3), params(5))
	require.NoError(t, err)

	ratio := acc.Ratio()
	assert.False(t, math.IsNaN(ratio[0]))
	assert.False(t, math.IsNaN(ratio[1]))
	for tau := 2; tau < 5; tau++ {
		assert.Zero(t, acc.Counts[tau])
		assert.True(t, math.IsNaN(ratio[tau]), "tau %d", tau)
	}
}

func TestDayShift(t *testing.T) {
	mid := []float64{1, 2, 4, 8, 16}
	signs := []domain.Sign{0, 0, 1, 0, 0}

	t.Run("positive shift pairs later signs with earlier midpoints", func(t *testing.T) {
		p := params(1)
		p.Shift = 2
		acc, err := Day(Series{Mid: mid}, signs, p)
		require.NoError(t, err)
		// sign at 2 pairs with mid[0] -> mid[1]
		assert.Equal(t, 1.0, acc.Counts[0])
		assert.InDelta(t, 1.0, acc.Sums[0], 1e-12)
	})

	t.Run("negative shift pairs earlier signs with later midpoints", func(t *testing.T) {
		p := params(1)
		p.Shift = -1
		acc, err := Day(Series{Mid: mid}, signs, p)
		require.NoError(t, err)
		// sign at 2 pairs with mid[3] -> mid[4]
		assert.Equal(t, 1.0, acc.Counts[0])
		assert.InDelta(t, 1.0, acc.Sums[0], 1e-12)
	})

	t.Run("shift beyond series", func(t *testing.T) {
		p := params(2)
		p.Shift = 10
		acc, err := Day(Series{Mid: mid}, signs, p)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0}, acc.Counts)
	})
}

func TestDaySignCorrelator(t *testing.T) {
	self := []domain.Sign{1, 1, -1, 1}
	p := params(2)
	p.Statistic = domain.StatisticSignCorrelator

	acc, err := Day(Series{Signs: self}, self, p)
	require.NoError(t, err)
	// tau 0: 1*1 + 1*-1 + -1*1 = -1 over 3; tau 1: 1*-1 + 1*1 = 0 over 2
	assert.Equal(t, []float64{-1, 0}, acc.Sums)
	assert.Equal(t, []float64{3, 2}, acc.Counts)

	_, err = Day(Series{Mid: []float64{1, 2, 3, 4}}, self, p)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestDayCrossResponseUsesDriverSigns(t *testing.T) {
	midI := []float64{10, 10, 11, 11}
	signsJ := []domain.Sign{0, 1, 0, 0}

	acc, err := Day(Series{Mid: midI}, signsJ, params(1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc.Counts[0])
	assert.InDelta(t, 0.1, acc.Sums[0], 1e-12)
}

func TestDayErrors(t *testing.T) {
	_, err := Day(Series{Mid: []float64{1, 2}}, allBuys(3), params(1))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Day(Series{Mid: []float64{1, 2}}, allBuys(2), Params{TauMax: 0})
	assert.Error(t, err)

	p := params(1)
	p.Statistic = domain.StatisticSignCorrelator
	_, err = DayEvents(Series{Mid: []float64{1, 2}}, nil, p)
	assert.ErrorIs(t, err, ErrMissingObservable)
}

func TestDayEvents(t *testing.T) {
	mid := []float64{10, 11, 12, 13}
	samples := []Sample{
		{Index: 0, Sign: 1},
		{Index: 0, Sign: -1},
		{Index: 1, Sign: 1},
		{Index: 2, Sign: 1},
		{Index: 3, Sign: 1},
		{Index: -1, Sign: 1},
	}

	acc, err := DayEvents(Series{Mid: mid}, samples, params(2))
	require.NoError(t, err)
	// tau 0 admits indices 0..2, tau 1 admits 0..1
	assert.Equal(t, []float64{4, 3}, acc.Counts)
	assert.InDelta(t, 0.1-0.1+1.0/11+1.0/12, acc.Sums[0], 1e-12)
	assert.InDelta(t, 0.2-0.2+2.0/11, acc.Sums[1], 1e-12)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	assert.Error(t, Params{TauMax: 10, Return: "cubic", Statistic: domain.StatisticResponse}.Validate())
	assert.Error(t, Params{TauMax: 10, Return: domain.ReturnLog, Statistic: "other"}.Validate())
	assert.Equal(t, "tau1000", DefaultParams().LagGrid())
}
