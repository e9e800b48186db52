package vm

import (
	"context"
	"testing"

	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/stretchr/testify/require"
)

// recorder is a test observer that records events.
type recorder struct {
	NoOpObserver
	config  ObserverConfig
	steps   []StepEvent
	calls   []CallEvent
	returns []ReturnEvent
}

func (r *recorder) Config() ObserverConfig {
	return r.config
}

func (r *recorder) OnStep(event StepEvent) bool {
	r.steps = append(r.steps, event)
	return true
}

func (r *recorder) OnCall(event CallEvent) bool {
	r.calls = append(r.calls, event)
	return true
}

func (r *recorder) OnReturn(event ReturnEvent) bool {
	r.returns = append(r.returns, event)
	return true
}

func TestObserverSteps(t *testing.T) {
	obs := &recorder{config: NewObserverConfig(StepAll)}
	_, err := run(t, "exit 1 + 2;", nil, WithObserver(obs))
	require.Nil(t, err)
	require.NotEmpty(t, obs.steps)
	for _, step := range obs.steps {
		require.NotEmpty(t, step.OpcodeName)
		require.NotEqual(t, "invalid", step.OpcodeName)
	}
	require.Equal(t, "exit", obs.steps[len(obs.steps)-1].OpcodeName)
}

func TestObserverCallsAndReturns(t *testing.T) {
	obs := &recorder{config: NewObserverConfig(StepNone)}
	h := &host{}
	h.function("one", object.DOUBLE, nil, func(pop func() object.Value) (object.Value, error) {
		return object.NewNumber(1), nil
	})
	source := "double f() { return one(); }\nexit f();"
	_, err := run(t, source, h, WithObserver(obs))
	require.Nil(t, err)
	require.Empty(t, obs.steps)
	require.Len(t, obs.calls, 2)
	require.Equal(t, "f", obs.calls[0].FunctionName)
	require.False(t, obs.calls[0].External)
	require.Equal(t, "one", obs.calls[1].FunctionName)
	require.True(t, obs.calls[1].External)
	require.Equal(t, 1, obs.calls[1].FrameDepth)
	require.Len(t, obs.returns, 2)
	require.Equal(t, "one", obs.returns[0].FunctionName)
	require.Equal(t, "f", obs.returns[1].FunctionName)
	require.Equal(t, 0, obs.returns[1].FrameDepth)
}

func TestObserverStepOnLine(t *testing.T) {
	obs := &recorder{config: NewObserverConfig(StepOnLine)}
	_, err := run(t, "double a = 1;\na = a + 1;\na = a * 2;", nil, WithObserver(obs))
	require.Nil(t, err)
	var lines []int
	for _, step := range obs.steps {
		lines = append(lines, step.Line)
	}
	require.Equal(t, []int{0, 1, 2, 3}, lines)
}

func TestObserverSampled(t *testing.T) {
	cfg := NewObserverConfig(StepSampled)
	cfg.SampleInterval = 0
	obs := &recorder{config: cfg}
	machine, err := New(build(t, "exit 1;", nil), WithObserver(obs))
	require.Nil(t, err)
	_, err = machine.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, int(machine.Executed()), len(obs.steps))
}

type halter struct {
	NoOpObserver
	after int
	seen  int
}

func (h *halter) OnStep(StepEvent) bool {
	h.seen++
	return h.seen < h.after
}

func TestObserverHalts(t *testing.T) {
	_, err := run(t, "while (true) { }", nil, WithObserver(&halter{after: 5}))
	require.Equal(t, "E3009", string(runtimeError(t, err).Code))
}
