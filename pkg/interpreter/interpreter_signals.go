package interpreter

import (
	"fmt"

	"github.com/pingf/toy-lang/pkg/runtime"
)

// Signal tags how an evaluation step completed.
type Signal int

const (
	Normal Signal = iota
	Returned
	Thrown
	Broken
)

func (s Signal) String() string {
	switch s {
	case Normal:
		return "normal"
	case Returned:
		return "returned"
	case Thrown:
		return "thrown"
	case Broken:
		return "broken"
	default:
		return fmt.Sprintf("signal_%d", int(s))
	}
}

// Result is the outcome of evaluating a statement or expression. Exactly one
// signal holds; Value is set for Normal and Returned, Thrown for Thrown.
type Result struct {
	Signal Signal
	Value  runtime.Value
	Thrown *runtime.Thrown
}

func normal(v runtime.Value) Result {
	if v == nil {
		v = runtime.Void
	}
	return Result{Signal: Normal, Value: v}
}

func returned(v runtime.Value) Result {
	if v == nil {
		v = runtime.Void
	}
	return Result{Signal: Returned, Value: v}
}

func thrown(t *runtime.Thrown) Result {
	return Result{Signal: Thrown, Thrown: t}
}

var broken = Result{Signal: Broken}

// Completed reports whether evaluation may continue with the next step.
func (r Result) Completed() bool {
	return r.Signal == Normal
}

// fromNative converts a native function result into a Result.
func fromNative(v runtime.Value) Result {
	if t, ok := runtime.AsThrown(v); ok {
		return thrown(t)
	}
	return normal(v)
}
