package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingSteps(ran *[]string, failAt string, failErr error, names ...string) []Step {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		name := name
		steps = append(steps, Step{Name: name, Action: func(context.Context) error {
			*ran = append(*ran, name)
			if name == failAt {
				return failErr
			}
			return nil
		}})
	}
	return steps
}

func drain(events chan ProgressEvent) []ProgressEvent {
	close(events)
	var out []ProgressEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestExecuteSuccess(t *testing.T) {
	var ran []string
	events := make(chan ProgressEvent, 10)

	err := Execute(context.Background(), recordingSteps(&ran, "", nil, "A", "B", "C"), events)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ran)

	got := drain(events)
	require.Len(t, got, 4)
	assert.Equal(t, ProgressEvent{Percent: 33, StepIndex: 1, Message: "A", Completed: []string{}}, got[0])
	assert.Equal(t, ProgressEvent{Percent: 67, StepIndex: 2, Message: "B", Completed: []string{"A"}}, got[1])
	assert.Equal(t, ProgressEvent{Percent: 100, StepIndex: 3, Message: "C", Completed: []string{"A", "B"}}, got[2])
	assert.Equal(t, ProgressEvent{Percent: 100, StepIndex: 3, Message: CompleteMessage, Completed: []string{"A", "B", "C"}}, got[3])
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	var ran []string
	events := make(chan ProgressEvent, 10)
	cause := errors.New("exit status 1")

	err := Execute(context.Background(), recordingSteps(&ran, "B", cause, "A", "B", "C"), events)

	var stepErr *errdefs.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "B", stepErr.Step)
	assert.Equal(t, []string{"A"}, stepErr.Completed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "B failed: exit status 1", err.Error())
	assert.Equal(t, []string{"A", "B"}, ran)

	got := drain(events)
	require.Len(t, got, 2)
	for _, ev := range got {
		assert.NotEqual(t, CompleteMessage, ev.Message)
	}
}

func TestExecutePercentIsMonotonic(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	var ran []string
	events := make(chan ProgressEvent, 20)

	require.NoError(t, Execute(context.Background(), recordingSteps(&ran, "", nil, names...), events))

	got := drain(events)
	require.Len(t, got, len(names)+1)
	prev := 0
	for i, ev := range got {
		assert.GreaterOrEqual(t, ev.Percent, prev)
		assert.LessOrEqual(t, ev.Percent, 100)
		if i < len(names) {
			assert.Equal(t, i+1, ev.StepIndex)
			assert.Len(t, ev.Completed, i)
		}
		prev = ev.Percent
	}
	assert.Equal(t, 8, got[0].Percent)
	assert.Equal(t, 100, got[len(got)-1].Percent)
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string
	steps := recordingSteps(&ran, "", nil, "A", "B")
	steps[0].Action = func(context.Context) error {
		ran = append(ran, "A")
		cancel()
		return nil
	}

	err := Execute(ctx, steps, nil)

	var stepErr *errdefs.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "B", stepErr.Step)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A"}, ran)
}
