package response

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/pkg/contracts/domain"
)

func randomDays(t *testing.T, n, length, tauMax int) []DayResult {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	out := make([]DayResult, n)
	for d := range out {
		mid := make([]float64, length)
		signs := make([]domain.Sign, length)
		price := 50.0
		for i := range mid {
			price *= 1 + (rng.Float64()-0.5)/100
			mid[i] = price
			signs[i] = domain.Sign(rng.Intn(3) - 1)
		}
		acc, err := Day(Series{Mid: mid}, signs, params(tauMax))
		require.NoError(t, err)
		out[d] = DayResult{Date: string(rune('a' + d)), Found: true, Acc: acc}
	}
	return out
}

func TestYearIsRatioOfTotals(t *testing.T) {
	y := NewYear(2)
	require.NoError(t, y.Add(DayResult{Found: true, Acc: &Accumulator{Sums: []float64{1, 0}, Counts: []float64{1, 0}}}))
	require.NoError(t, y.Add(DayResult{Found: true, Acc: &Accumulator{Sums: []float64{3, 0}, Counts: []float64{3, 0}}}))

	ratio := y.Ratio()
	assert.InDelta(t, 1.0, ratio[0], 1e-12)
	assert.True(t, math.IsNaN(ratio[1]))

	z := NewYear(1)
	require.NoError(t, z.Add(DayResult{Found: true, Acc: &Accumulator{Sums: []float64{2}, Counts: []float64{1}}}))
	require.NoError(t, z.Add(DayResult{Found: true, Acc: &Accumulator{Sums: []float64{0}, Counts: []float64{3}}}))
	assert.InDelta(t, 0.5, z.Ratio()[0], 1e-12)
}

func TestYearCommutative(t *testing.T) {
	days := randomDays(t, 12, 200, 20)

	forward := NewYear(20)
	for _, d := range days {
		require.NoError(t, forward.Add(d))
	}

	shuffled := NewYear(20)
	perm := rand.New(rand.NewSource(5)).Perm(len(days))
	var wg sync.WaitGroup
	for _, i := range perm {
		wg.Add(1)
		go func(d DayResult) {
			defer wg.Done()
			assert.NoError(t, shuffled.Add(d))
		}(days[i])
	}
	wg.Wait()

	assert.InDeltaSlice(t, forward.Ratio(), shuffled.Ratio(), 1e-12)
	assert.Equal(t, forward.Totals().Counts, shuffled.Totals().Counts)
	assert.Equal(t, 12, shuffled.Days())
}

func TestYearMissingDayEqualsOmission(t *testing.T) {
	days := randomDays(t, 5, 100, 10)

	withGap := NewYear(10)
	omitted := NewYear(10)
	for i, d := range days {
		if i == 2 {
			require.NoError(t, withGap.Add(Missing("2008-01-04")))
			continue
		}
		require.NoError(t, withGap.Add(d))
		require.NoError(t, omitted.Add(d))
	}

	assert.Equal(t, omitted.Totals(), withGap.Totals())
	assert.Equal(t, []string{"2008-01-04"}, withGap.MissingDays())
	assert.Equal(t, 4, withGap.Days())

	full := NewYear(10)
	for _, d := range days {
		require.NoError(t, full.Add(d))
	}
	assert.Less(t, withGap.Totals().Counts[0], full.Totals().Counts[0])
}

func TestYearRejectsMismatchedLags(t *testing.T) {
	y := NewYear(3)
	err := y.Add(DayResult{Found: true, Acc: NewAccumulator(2)})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
