package response

import (
	"fmt"
	"sync"
)

// DayResult is the outcome of one day. Found is false when the day's input
// was absent; such days add nothing to the totals.
type DayResult struct {
	Date  string
	Found bool
	Acc   *Accumulator
}

// Missing returns the result of a day without data.
func Missing(date string) DayResult {
	return DayResult{Date: date}
}

// Year sums day results. Add may be called from several goroutines and in
// any order.
type Year struct {
	mu      sync.Mutex
	total   *Accumulator
	days    int
	missing []string
}

// NewYear creates an empty aggregate over tauMax lags.
func NewYear(tauMax int) *Year {
	return &Year{total: NewAccumulator(tauMax)}
}

// Add folds one day into the aggregate.
func (y *Year) Add(d DayResult) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	if !d.Found || d.Acc == nil {
		y.missing = append(y.missing, d.Date)
		return nil
	}
	if err := y.total.Add(d.Acc); err != nil {
		return fmt.Errorf("add day %s: %w", d.Date, err)
	}
	y.days++
	return nil
}

// Days returns how many days contributed data.
func (y *Year) Days() int {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.days
}

// MissingDays returns the dates that had no data, in the order they were
// added.
func (y *Year) MissingDays() []string {
	y.mu.Lock()
	defer y.mu.Unlock()
	return append([]string(nil), y.missing...)
}

// Totals returns a copy of the summed numerators and counts.
func (y *Year) Totals() *Accumulator {
	y.mu.Lock()
	defer y.mu.Unlock()
	out := NewAccumulator(y.total.Len())
	copy(out.Sums, y.total.Sums)
	copy(out.Counts, y.total.Counts)
	return out
}

// Ratio divides the grand totals. It is not an average of daily ratios.
func (y *Year) Ratio() []float64 {
	return y.Totals().Ratio()
}
