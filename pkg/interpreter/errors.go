package interpreter

import (
	"fmt"
	"strings"

	"github.com/pingf/toy-lang/pkg/runtime"
)

// RuntimeError is a host-level failure (an unresolved reference, a type
// mismatch, a failing builtin) annotated with the statement frames it
// crossed, innermost first.
type RuntimeError struct {
	Err    error
	Frames []runtime.Frame
	last   *runtime.Environment
}

func (e *RuntimeError) Error() string {
	if len(e.Frames) == 0 {
		return fmt.Sprintf("runtime: %v", e.Err)
	}
	top := e.Frames[0]
	return fmt.Sprintf("runtime: %s:%d: %v", top.File, top.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Trace renders the frames one per line.
func (e *RuntimeError) Trace() string {
	var b strings.Builder
	for _, frame := range e.Frames {
		fmt.Fprintf(&b, "\tat %s\n", frame)
	}
	return b.String()
}

// annotateError attaches frame to err once per context level.
func annotateError(err error, env *runtime.Environment, frame runtime.Frame) error {
	rtErr, ok := err.(*RuntimeError)
	if !ok {
		return &RuntimeError{Err: err, Frames: []runtime.Frame{frame}, last: env}
	}
	if rtErr.last != env {
		rtErr.Frames = append(rtErr.Frames, frame)
		rtErr.last = env
	}
	return rtErr
}

// UncaughtError is a language exception that escaped the program.
type UncaughtError struct {
	Thrown  *runtime.Thrown
	Message string
}

func (e *UncaughtError) Error() string {
	return fmt.Sprintf("Uncaught exception: %s", e.Message)
}
