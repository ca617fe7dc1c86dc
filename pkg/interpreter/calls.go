package interpreter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pingf/toy-lang/pkg/builtins"
	"github.com/pingf/toy-lang/pkg/runtime"
)

// callValue invokes a function or instantiates a class. env is the caller's
// context.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, env *runtime.Environment) (Result, error) {
	target, ok := builtins.Callable(callee)
	if !ok {
		return Result{}, fmt.Errorf("%s is not callable", describe(callee))
	}
	switch fn := target.(type) {
	case *runtime.Func:
		return i.callFunction(fn, args, env)
	case *runtime.Class:
		return i.instantiate(fn, args, env)
	}
	return Result{}, fmt.Errorf("%s is not callable", describe(callee))
}

// callFunction runs fn in a fresh child context. User functions without a
// captured closure extend the caller's context.
func (i *Interpreter) callFunction(fn *runtime.Func, args []runtime.Value, env *runtime.Environment) (Result, error) {
	if i.logger.Enabled(context.Background(), slog.LevelDebug) {
		i.logger.Debug("function call", slog.String("function", fn.Name), slog.Int("argument-count", len(args)))
	}
	if fn.Native != nil {
		v, err := fn.Native(&runtime.NativeCall{Services: i, Env: env, This: fn.This}, args)
		if err != nil {
			return Result{}, err
		}
		return fromNative(v), nil
	}

	parent := fn.Closure
	if parent == nil {
		parent = env
	}
	scope := parent.Extend()
	for idx, param := range fn.Params {
		if idx < len(args) {
			scope.Define(param, args[idx])
		} else {
			scope.Define(param, runtime.Null)
		}
	}
	scope.Define("arguments", i.lib.NewList(append([]runtime.Value(nil), args...)))
	if fn.This != nil {
		scope.Define("this", fn.This)
	}

	res, err := i.evaluateStatement(fn.Body, scope)
	if err != nil {
		return Result{}, err
	}
	switch res.Signal {
	case Returned:
		return normal(res.Value), nil
	case Thrown:
		return res, nil
	case Broken:
		return Result{}, fmt.Errorf("'break' outside of a loop in %s", functionName(fn))
	}
	return normal(runtime.Void), nil
}

// instantiate creates an instance of class and runs the resolved init method
// on it, if any.
func (i *Interpreter) instantiate(class *runtime.Class, args []runtime.Value, env *runtime.Environment) (Result, error) {
	inst := runtime.NewInstance(class)
	if init, _, ok := class.Resolve("init"); ok {
		res, err := i.callFunction(init.Bind(inst), args, env)
		if err != nil || !res.Completed() {
			return res, err
		}
	}
	return normal(inst), nil
}

func functionName(fn *runtime.Func) string {
	if fn.Name == "" {
		return "anonymous function"
	}
	return fmt.Sprintf("function '%s'", fn.Name)
}
