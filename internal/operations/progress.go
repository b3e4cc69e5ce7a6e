package operations

import (
	"sync"
	"time"
)

// Progress is the state of a run after a unit finished.
type Progress struct {
	Done   int
	Failed int
	Total  int
	// ETA extrapolates the mean unit rate so far; zero until a unit is done.
	ETA time.Duration
}

// Percent of units finished.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// Milestone reports whether this state is worth logging: about every tenth
// of the run, and at the end.
func (p Progress) Milestone() bool {
	step := max(p.Total/10, 1)
	return p.Done%step == 0 || p.Done == p.Total
}

// ProgressTracker counts finished units of a run. Safe for concurrent use.
type ProgressTracker struct {
	mu     sync.Mutex
	total  int
	done   int
	failed int
	start  time.Time
	now    func() time.Time
}

func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{total: total, start: time.Now(), now: time.Now}
}

// Done records one finished unit.
func (p *ProgressTracker) Done(failed bool) Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if failed {
		p.failed++
	}
	return p.snapshot()
}

// Current returns the state without recording anything.
func (p *ProgressTracker) Current() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *ProgressTracker) snapshot() Progress {
	s := Progress{Done: p.done, Failed: p.failed, Total: p.total}
	if p.done > 0 && p.done < p.total {
		perUnit := p.now().Sub(p.start) / time.Duration(p.done)
		s.ETA = perUnit * time.Duration(p.total-p.done)
	}
	return s
}
