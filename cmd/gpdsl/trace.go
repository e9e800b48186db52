package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/danielteel/gpdsl-sub000/vm"
)

// tracer prints each newly reached source line and every call and return.
type tracer struct {
	w io.Writer
}

func newTracer(w io.Writer) *tracer {
	return &tracer{w: w}
}

func (t *tracer) Config() vm.ObserverConfig {
	return vm.NewObserverConfig(vm.StepOnLine)
}

func (t *tracer) OnStep(event vm.StepEvent) bool {
	fmt.Fprintf(t.w, "%s[line %d] %s\n", t.indent(event.FrameDepth), event.Line, event.Instruction)
	return true
}

func (t *tracer) OnCall(event vm.CallEvent) bool {
	kind := "call"
	if event.External {
		kind = "excall"
	}
	fmt.Fprintf(t.w, "%s-> %s %s\n", t.indent(event.FrameDepth), kind, event.FunctionName)
	return true
}

func (t *tracer) OnReturn(event vm.ReturnEvent) bool {
	fmt.Fprintf(t.w, "%s<- %s\n", t.indent(event.FrameDepth), event.FunctionName)
	return true
}

func (t *tracer) indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}
