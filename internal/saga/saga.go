// Package saga runs ordered multi-step writes against stores that share no
// transaction primitive. Each step pairs a forward action with an optional
// compensating action; on the first forward failure the executor undoes the
// already-completed steps in reverse order and returns the original failure.
//
// This is a best-effort approximation of atomicity. Nothing resumes a saga
// if the process dies mid-run, and compensations can themselves fail.
package saga

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	dErrors "innkeeper/pkg/domain-errors"
)

// Step is one unit of a saga.
type Step struct {
	// Name shows up in logs, spans, and metrics.
	Name string

	// Forward performs the step's write or read. A returned error aborts
	// the saga and triggers compensation of prior steps.
	Forward func(ctx context.Context) error

	// Compensate undoes Forward's effect. Nil means there is nothing to
	// undo (typical for the final step).
	Compensate func(ctx context.Context) error

	// CriticalCompensation marks a compensation whose failure leaves the
	// resource graph in an undefined split state. If such a compensation
	// fails, the executor stops compensating and surfaces INCONSISTENT
	// instead of the original failure's code.
	CriticalCompensation bool
}

// Executor drives sagas. Steps always run strictly in order, never in
// parallel; compensation correctness depends on that ordering.
type Executor struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	observe func(operation string, d time.Duration, compensated bool)
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithObserver registers a callback invoked after every run, for metrics.
func WithObserver(fn func(operation string, d time.Duration, compensated bool)) Option {
	return func(e *Executor) { e.observe = fn }
}

func New(opts ...Option) *Executor {
	e := &Executor{
		logger: slog.Default(),
		tracer: otel.Tracer("innkeeper/saga"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes steps in order. On success it returns nil. On the first
// forward failure it runs the compensations of every already-succeeded step
// in reverse order, then returns the forward failure. Compensation failures
// are logged and swallowed unless the step is marked CriticalCompensation,
// in which case Run aborts further compensation and returns INCONSISTENT
// wrapping the original failure.
func (e *Executor) Run(ctx context.Context, operation string, steps []Step) error {
	ctx, span := e.tracer.Start(ctx, "saga."+operation)
	defer span.End()

	start := time.Now()

	for i, step := range steps {
		if err := e.runForward(ctx, operation, step); err != nil {
			compErr := e.compensate(ctx, operation, steps[:i])
			e.finish(operation, start, true)
			if compErr != nil {
				return compErr
			}
			return err
		}
	}

	e.finish(operation, start, false)
	return nil
}

func (e *Executor) runForward(ctx context.Context, operation string, step Step) error {
	ctx, span := e.tracer.Start(ctx, "saga."+operation+"."+step.Name,
		trace.WithAttributes(attribute.String("saga.step", step.Name)))
	defer span.End()

	if err := step.Forward(ctx); err != nil {
		span.RecordError(err)
		e.logger.Warn("saga step failed",
			"operation", operation,
			"step", step.Name,
			"error", err)
		return err
	}
	return nil
}

// compensate undoes completed steps in reverse order. It returns a non-nil
// INCONSISTENT error only when a critical compensation fails; ordinary
// compensation failures are logged and skipped, since there is nothing
// further to roll back to.
func (e *Executor) compensate(ctx context.Context, operation string, completed []Step) error {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			if step.CriticalCompensation {
				e.logger.Error("saga critical compensation failed, state is inconsistent",
					"operation", operation,
					"step", step.Name,
					"error", err)
				return dErrors.Wrap(err, dErrors.CodeInconsistent,
					"compensation failed for step "+step.Name+"; manual intervention required")
			}
			e.logger.Warn("saga compensation failed",
				"operation", operation,
				"step", step.Name,
				"error", err)
			continue
		}
		e.logger.Info("saga step compensated",
			"operation", operation,
			"step", step.Name)
	}
	return nil
}

func (e *Executor) finish(operation string, start time.Time, compensated bool) {
	if e.observe != nil {
		e.observe(operation, time.Since(start), compensated)
	}
}
