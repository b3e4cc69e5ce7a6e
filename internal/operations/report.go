package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lobstat/internal/infrastructure"
)

// Unit statuses.
const (
	StatusSucceeded = infrastructure.StatusSucceeded
	StatusFailed    = infrastructure.StatusFailed
	StatusCancelled = "cancelled"
)

// UnitResult is the outcome of one unit in a run
type UnitResult struct {
	Unit     string        `json:"unit"`
	Kind     string        `json:"kind"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Outcome  Outcome       `json:"-"`
	Err      *UnitError    `json:"error,omitempty"`
}

// Report summarises a run. Results are in the order units were given.
type Report struct {
	RunID      string       `json:"run_id"`
	Label      string       `json:"label"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Results    []UnitResult `json:"results"`
}

// Count returns the number of units with status
func (r *Report) Count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the failed and cancelled units
func (r *Report) Failures() []UnitResult {
	var out []UnitResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// FailuresByKind counts failures per ErrorKind
func (r *Report) FailuresByKind() map[ErrorKind]int {
	out := make(map[ErrorKind]int)
	for _, res := range r.Failures() {
		out[res.Err.Kind]++
	}
	return out
}

// Err returns nil when every unit succeeded, and otherwise an error joining
// the unit errors.
func (r *Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f.Err
	}
	return fmt.Errorf("%d of %d units failed: %w", len(failures), len(r.Results), errors.Join(errs...))
}

// Log writes the run summary
func (r *Report) Log(ctx context.Context, logger *slog.Logger) {
	attrs := []any{
		slog.String("label", r.Label),
		slog.Int("units", len(r.Results)),
		slog.Int("succeeded", r.Count(StatusSucceeded)),
		slog.Int("failed", r.Count(StatusFailed)),
		slog.Int("cancelled", r.Count(StatusCancelled)),
		slog.Duration("elapsed", r.FinishedAt.Sub(r.StartedAt)),
	}
	for kind, n := range r.FailuresByKind() {
		attrs = append(attrs, slog.Int("failed_"+string(kind), n))
	}
	if len(r.Failures()) > 0 {
		logger.WarnContext(ctx, "run finished with failures", attrs...)
		return
	}
	logger.InfoContext(ctx, "run finished", attrs...)
}

type panicError struct{ value any }

func (p panicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}
