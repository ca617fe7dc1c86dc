package builtins

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pingf/toy-lang/pkg/runtime"
)

func (l *Library) globalFunctions() map[string]runtime.NativeFunc {
	return map[string]runtime.NativeFunc{
		"print": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			text, thrown, err := stringify(call, arg(args, 0))
			if thrown != nil || err != nil {
				return thrownOrNil(thrown), err
			}
			call.Output(text)
			return runtime.Void, nil
		},
		"println": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			if v := arg(args, 0); !runtime.IsNull(v) {
				text, thrown, err := stringify(call, v)
				if thrown != nil || err != nil {
					return thrownOrNil(thrown), err
				}
				call.Output(text)
			}
			call.Output("\n")
			return runtime.Void, nil
		},
		"input": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			prompt := ""
			if v := arg(args, 0); !runtime.IsNull(v) {
				text, thrown, err := stringify(call, v)
				if thrown != nil || err != nil {
					return thrownOrNil(thrown), err
				}
				prompt = text
			}
			line, err := call.Input(prompt)
			if err != nil {
				return nil, fmt.Errorf("input: %w", err)
			}
			return runtime.Text(line), nil
		},
		"hasValue": func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			return runtime.Bool(!runtime.IsNull(arg(args, 0))), nil
		},
		"noValue": func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			return runtime.Bool(runtime.IsNull(arg(args, 0))), nil
		},
		"typeof": func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			name, err := TypeName(arg(args, 0))
			if err != nil {
				return nil, err
			}
			return runtime.Text(name), nil
		},
		"loadedModules": func(call *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			paths := call.LoadedModules()
			elems := make([]runtime.Value, len(paths))
			for i, p := range paths {
				elems[i] = runtime.Text(p)
			}
			return l.NewList(elems), nil
		},
		"currentTimeMillis": func(*runtime.NativeCall, []runtime.Value) (runtime.Value, error) {
			return runtime.Number(float64(time.Now().UnixMilli())), nil
		},
		"nativeFunction": func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			name, err := textArg("nativeFunction", args, 0)
			if err != nil {
				return nil, err
			}
			impl, ok := mathFunctions[name]
			if !ok {
				return nil, &runtime.ReferenceError{What: "native function", Name: name}
			}
			return l.native(name, impl), nil
		},
	}
}

func thrownOrNil(thrown *runtime.Thrown) runtime.Value {
	if thrown == nil {
		return nil
	}
	return thrown
}

func unaryMath(name string, fn func(float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		n, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Number(fn(n)), nil
	}
}

func binaryMath(name string, fn func(float64, float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		a, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		b, err := numberArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.Number(fn(a, b)), nil
	}
}

// mathFunctions are the host functions reachable through nativeFunction.
var mathFunctions = map[string]runtime.NativeFunc{
	"abs":   unaryMath("abs", math.Abs),
	"ceil":  unaryMath("ceil", math.Ceil),
	"floor": unaryMath("floor", math.Floor),
	"round": unaryMath("round", math.Round),
	"sqrt":  unaryMath("sqrt", math.Sqrt),
	"sin":   unaryMath("sin", math.Sin),
	"cos":   unaryMath("cos", math.Cos),
	"tan":   unaryMath("tan", math.Tan),
	"log":   unaryMath("log", math.Log),
	"exp":   unaryMath("exp", math.Exp),
	"pow":   binaryMath("pow", math.Pow),
	"min":   binaryMath("min", math.Min),
	"max":   binaryMath("max", math.Max),
	"random": func(*runtime.NativeCall, []runtime.Value) (runtime.Value, error) {
		return runtime.Number(rand.Float64()), nil
	},
}
