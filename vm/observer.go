package vm

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/snakebyte/op"
)

// StepEvent describes the instruction about to execute.
type StepEvent struct {
	Offset     int
	Opcode     op.Code
	Name       string
	Operand    uint16
	HasOperand bool
	StackDepth int
}

// Observer receives callbacks as the VM executes. Callbacks run
// synchronously on the VM's goroutine.
type Observer interface {
	// OnStep is called before each instruction. Returning false halts
	// execution with an error.
	OnStep(event StepEvent) bool
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event StepEvent) bool

func (f ObserverFunc) OnStep(event StepEvent) bool {
	return f(event)
}

// TraceObserver writes one line per executed instruction.
type TraceObserver struct {
	w     io.Writer
	steps int
}

// NewTraceObserver returns an observer that traces to w.
func NewTraceObserver(w io.Writer) *TraceObserver {
	return &TraceObserver{w: w}
}

func (t *TraceObserver) OnStep(event StepEvent) bool {
	t.steps++
	if event.HasOperand {
		fmt.Fprintf(t.w, "%6d  %-20s %-6d stack=%d\n", event.Offset, event.Name, event.Operand, event.StackDepth)
	} else {
		fmt.Fprintf(t.w, "%6d  %-20s %-6s stack=%d\n", event.Offset, event.Name, "", event.StackDepth)
	}
	return true
}

// Steps returns the number of instructions observed.
func (t *TraceObserver) Steps() int {
	return t.steps
}
