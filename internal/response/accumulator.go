package response

import (
	"fmt"
	"math"

	"lobstat/pkg/contracts/domain"
)

// Accumulator holds per-lag numerators and sample counts.
type Accumulator struct {
	Sums   []float64 `json:"sums"`
	Counts []float64 `json:"counts"`
}

// NewAccumulator allocates an accumulator for tauMax lags.
func NewAccumulator(tauMax int) *Accumulator {
	return &Accumulator{
		Sums:   make([]float64, tauMax),
		Counts: make([]float64, tauMax),
	}
}

// Len returns the number of lags.
func (a *Accumulator) Len() int {
	return len(a.Sums)
}

// Add sums other into a.
func (a *Accumulator) Add(other *Accumulator) error {
	if other.Len() != a.Len() {
		return fmt.Errorf("add accumulator: %w: %d lags into %d", ErrLengthMismatch, other.Len(), a.Len())
	}
	for i := range a.Sums {
		a.Sums[i] += other.Sums[i]
		a.Counts[i] += other.Counts[i]
	}
	return nil
}

// Ratio divides numerators by counts. Lags without samples are NaN.
func (a *Accumulator) Ratio() []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		if a.Counts[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = a.Sums[i] / a.Counts[i]
	}
	return out
}

// MonotoneCounts reports whether counts never increase with the lag.
func MonotoneCounts(counts []float64) bool {
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			return false
		}
	}
	return true
}

// Series is the observed side of a statistic. Mid is used by the response,
// Signs by the correlator; both are indexed by the same clock.
type Series struct {
	Mid   []float64
	Signs []domain.Sign
}

// Sample is one driving trade sign placed at an index of the observed
// series.
type Sample struct {
	Index int
	Sign  domain.Sign
}

type observer func(t, tau int) float64

func (s Series) observer(p Params) (observer, int, error) {
	switch p.Statistic {
	case domain.StatisticResponse:
		if len(s.Mid) == 0 {
			return nil, 0, fmt.Errorf("%w: midpoint", ErrMissingObservable)
		}
		ret := returnFunc(p.Return)
		mid := s.Mid
		return func(t, tau int) float64 { return ret(mid[t], mid[t+tau+1]) }, len(mid), nil
	case domain.StatisticSignCorrelator:
		if len(s.Signs) == 0 {
			return nil, 0, fmt.Errorf("%w: trade signs", ErrMissingObservable)
		}
		signs := s.Signs
		return func(t, tau int) float64 { return float64(signs[t+tau+1]) }, len(signs), nil
	default:
		return nil, 0, fmt.Errorf("unknown statistic %q", p.Statistic)
	}
}

// shifted cuts the observed series so that index t pairs with driving
// index t+shift. It returns the cut series and the offset to subtract from
// driving indices.
func (s Series) shifted(shift int) (Series, int) {
	cut := func(n int) (lo, hi int) {
		if shift > 0 {
			return 0, max(n-shift, 0)
		}
		return min(-shift, n), n
	}

	out := Series{}
	if len(s.Mid) > 0 {
		lo, hi := cut(len(s.Mid))
		out.Mid = s.Mid[lo:hi]
	}
	if len(s.Signs) > 0 {
		lo, hi := cut(len(s.Signs))
		out.Signs = s.Signs[lo:hi]
	}
	if shift > 0 {
		return out, shift
	}
	return out, 0
}

func accumulate(obs Series, samples []Sample, p Params) (*Accumulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cut, offset := obs.shifted(p.Shift)
	acc := NewAccumulator(p.TauMax)
	if len(cut.Mid) == 0 && len(cut.Signs) == 0 {
		return acc, nil
	}
	observe, n, err := cut.observer(p)
	if err != nil {
		return nil, err
	}

	for tau := 0; tau < p.TauMax; tau++ {
		limit := n - tau - 1
		var sum, count float64
		for _, s := range samples {
			t := s.Index - offset
			if s.Sign == domain.SignUndefined || t < 0 || t >= limit {
				continue
			}
			sum += observe(t, tau) * float64(s.Sign)
			count++
		}
		acc.Sums[tau] = sum
		acc.Counts[tau] = count
	}
	return acc, nil
}

// Day computes one day's sums on a common clock: driver[t] is the sign of
// the driving ticker in the bucket paired with obs at index t.
func Day(obs Series, driver []domain.Sign, p Params) (*Accumulator, error) {
	n := len(obs.Mid)
	if p.Statistic == domain.StatisticSignCorrelator {
		n = len(obs.Signs)
	}
	if n != len(driver) {
		return nil, fmt.Errorf("day response: %w: observed %d, driving %d", ErrLengthMismatch, n, len(driver))
	}

	samples := make([]Sample, 0, len(driver))
	for t, s := range driver {
		if s != domain.SignUndefined {
			samples = append(samples, Sample{Index: t, Sign: s})
		}
	}

	return accumulate(obs, samples, p)
}

// DayEvents computes one day's sums on the event clock: every trade of the
// driving ticker is a sample placed at the physical bucket it falls in.
// Samples with a negative index are ignored.
func DayEvents(obs Series, samples []Sample, p Params) (*Accumulator, error) {
	return accumulate(obs, samples, p)
}
