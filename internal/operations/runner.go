package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"lobstat/internal/infrastructure"
)

// Runner executes units with bounded concurrency
type Runner struct {
	env     *Env
	workers int
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewRunner creates a runner over env. tracer may be nil.
func NewRunner(env *Env, workers int, tracer trace.Tracer) *Runner {
	if workers < 1 {
		workers = 1
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Runner{
		env:     env,
		workers: workers,
		tracer:  tracer,
		logger:  env.logger().With(slog.String("component", "runner")),
	}
}

// Run executes every unit and returns the report. Unit failures are
// recorded, never propagated; cancelling ctx marks unfinished units as
// cancelled.
func (r *Runner) Run(ctx context.Context, label string, units []Unit) *Report {
	ctx = infrastructure.WithRunID(ctx, r.env.RunID)
	ctx, span := r.tracer.Start(ctx, "run."+label,
		trace.WithAttributes(
			attribute.String("run.id", r.env.RunID),
			attribute.Int("run.units", len(units)),
		))
	defer span.End()

	report := &Report{
		RunID:     r.env.RunID,
		Label:     label,
		StartedAt: time.Now().UTC(),
		Results:   make([]UnitResult, len(units)),
	}
	progress := NewProgressTracker(len(units))

	r.logger.InfoContext(ctx, "run started",
		slog.String("label", label),
		slog.Int("units", len(units)),
		slog.Int("workers", r.workers))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, u := range units {
		g.Go(func() error {
			res := r.execute(ctx, u)
			report.Results[i] = res

			if p := progress.Done(res.Status == StatusFailed); p.Milestone() {
				r.logger.InfoContext(ctx, "run progress",
					slog.Int("done", p.Done),
					slog.Int("failed", p.Failed),
					slog.Int("total", p.Total),
					slog.Float64("percent", p.Percent()),
					slog.Duration("eta", p.ETA))
			}
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now().UTC()
	span.SetAttributes(
		attribute.Int("run.failed", len(report.Failures())),
		attribute.Int("run.succeeded", report.Count(StatusSucceeded)))
	report.Log(ctx, r.logger)
	return report
}

func (r *Runner) execute(ctx context.Context, u Unit) UnitResult {
	res := UnitResult{Unit: u.ID(), Kind: u.Kind()}
	if err := ctx.Err(); err != nil {
		res.Status = StatusCancelled
		res.Err = WrapError(err, u.ID(), "not started")
		r.env.Metrics.RecordUnit(ctx, u.Kind(), res.Status, 0)
		return res
	}

	ctx, span := r.tracer.Start(ctx, "unit."+u.Kind(),
		trace.WithAttributes(attribute.String("unit.id", u.ID())))
	defer span.End()
	ctx = infrastructure.WithUnit(ctx, u.ID())

	start := time.Now()
	out, err := r.runSafe(ctx, u)
	res.Duration = time.Since(start)
	res.Outcome = out

	for reason, n := range out.Rejected {
		r.env.Metrics.RecordRejected(ctx, string(reason), n)
	}
	r.env.Metrics.RecordMissingDays(ctx, u.Kind(), len(out.MissingDays))

	if err != nil {
		res.Err = WrapError(err, u.ID(), "unit failed")
		res.Status = StatusFailed
		if res.Err.Kind == ErrorKindCancelled {
			res.Status = StatusCancelled
		}
		infrastructure.RecordError(ctx, res.Err)
		r.logger.ErrorContext(ctx, "unit failed",
			slog.String("kind", string(res.Err.Kind)),
			slog.String("error", res.Err.Error()))
	} else {
		res.Status = StatusSucceeded
		infrastructure.AddSpanEvent(ctx, "unit.succeeded",
			attribute.Int("artifacts", len(out.Artifacts)))
	}
	r.env.Metrics.RecordUnit(ctx, u.Kind(), res.Status, res.Duration)
	return res
}

// runSafe turns a panicking unit into a failed one.
func (r *Runner) runSafe(ctx context.Context, u Unit) (out Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &UnitError{Kind: ErrorKindExecution, Unit: u.ID(), Message: "panic", Cause: panicError{p}}
		}
	}()
	return u.Run(ctx, r.env)
}
