package placement

import (
	"context"
	"log/slog"
)

// step is a single unit of work in the placement pipeline. Each step that
// leaves persistent state behind must provide a compensating action to undo
// its effects.
type step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// runPipeline executes the steps sequentially. If a step fails, all
// previously successful steps are compensated in LIFO order and the step's
// error is returned.
func runPipeline(ctx context.Context, steps []step) error {
	var done []step

	for _, s := range steps {
		if err := s.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "placement step failed, rolling back",
				"step", s.Name(), "error", err)
			rollback(ctx, done)
			return err
		}
		done = append(done, s)
	}
	return nil
}

func rollback(ctx context.Context, steps []step) {
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if err := s.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate placement step",
				"step", s.Name(), "error", err)
		}
	}
}

// noCompensation is embedded by steps without persistent effects.
type noCompensation struct{}

func (noCompensation) Compensate(context.Context) error { return nil }
