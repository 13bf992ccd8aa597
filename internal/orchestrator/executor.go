// Package orchestrator runs the AutoMate installation as a fixed, linear
// sequence of named steps.
package orchestrator

import (
	"context"
	"math"

	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/AvengeMedia/automate/internal/log"
)

const CompleteMessage = "Installation complete!"

type Step struct {
	Name   string
	Action func(ctx context.Context) error
}

// ProgressEvent is emitted before each step and once after the last.
// Completed lists the steps that have finished so far.
type ProgressEvent struct {
	Percent   int
	StepIndex int
	Message   string
	Completed []string
}

// Execute runs steps in order and stops at the first failure, which is
// returned as a *errdefs.StepError. Events are sent synchronously on the
// caller's channel, which Execute never closes; a nil channel disables them.
func Execute(ctx context.Context, steps []Step, events chan<- ProgressEvent) error {
	total := len(steps)
	completed := make([]string, 0, total)

	for i, step := range steps {
		index := i + 1
		emit(ctx, events, ProgressEvent{
			Percent:   percent(index, total),
			StepIndex: index,
			Message:   step.Name,
			Completed: snapshot(completed),
		})

		log.Info("step started", "step", step.Name, "index", index, "total", total)

		err := ctx.Err()
		if err == nil {
			err = step.Action(ctx)
		}
		if err != nil {
			log.Error("step failed", "step", step.Name, "err", err)
			return &errdefs.StepError{Step: step.Name, Completed: snapshot(completed), Err: err}
		}

		completed = append(completed, step.Name)
	}

	emit(ctx, events, ProgressEvent{
		Percent:   100,
		StepIndex: total,
		Message:   CompleteMessage,
		Completed: snapshot(completed),
	})
	return nil
}

func percent(index, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(index) / float64(total) * 100))
}

func snapshot(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func emit(ctx context.Context, events chan<- ProgressEvent, ev ProgressEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
