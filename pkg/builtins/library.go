// Package builtins installs the classes and functions every toy program
// starts with. The evaluator reaches them only through the generic
// class, method and property protocol.
package builtins

import (
	"fmt"

	"github.com/pingf/toy-lang/pkg/runtime"
)

// Library holds the builtin classes the evaluator constructs values from.
type Library struct {
	Object    *runtime.Class
	Function  *runtime.Class
	Class     *runtime.Class
	String    *runtime.Class
	Number    *runtime.Class
	List      *runtime.Class
	Module    *runtime.Class
	Traceable *runtime.Class

	functions map[string]*runtime.Instance
}

// Install defines the builtin classes and functions in env and returns the
// library handle.
func Install(env *runtime.Environment) *Library {
	lib := &Library{functions: make(map[string]*runtime.Instance)}

	lib.Object = runtime.NewClass(runtime.ObjectClassName, nil, env)
	lib.Function = runtime.NewClass("Function", []*runtime.Class{lib.Object}, env)
	lib.Class = runtime.NewClass("Class", []*runtime.Class{lib.Object}, env)
	for _, class := range []*runtime.Class{lib.Object, lib.Function, lib.Class} {
		lib.ClassValue(class)
	}

	lib.String = lib.defineClass("String", stringMethods)
	lib.Number = lib.defineClass("Number", numberMethods)
	lib.List = lib.defineClass("List", listMethods)
	lib.Module = lib.defineClass("Module", nil)
	lib.Traceable = lib.defineClass("Traceable", traceableMethods)
	lib.installStringStatics()
	lib.installNumberStatics()
	lib.installListStatics()

	for _, class := range []*runtime.Class{lib.Object, lib.Function, lib.Class, lib.String, lib.Number, lib.List, lib.Module, lib.Traceable} {
		env.Define(class.Name, class.Object)
	}
	for name, fn := range lib.globalFunctions() {
		value := lib.native(name, fn)
		lib.functions[name] = value
		env.Define(name, value)
	}
	return lib
}

func (l *Library) defineClass(name string, methods func(*Library) map[string]runtime.NativeFunc) *runtime.Class {
	class := runtime.NewClass(name, []*runtime.Class{l.Object}, nil)
	if methods != nil {
		for method, impl := range methods(l) {
			class.Define(method, runtime.NewNativeFunction(method, impl))
		}
	}
	l.ClassValue(class)
	return class
}

// FunctionValue wraps fn in an instance of Function.
func (l *Library) FunctionValue(fn *runtime.Func) *runtime.Instance {
	inst := runtime.NewInstance(l.Function)
	inst.Internal = fn
	return inst
}

// ClassValue returns the class object representing class, creating it on
// first use.
func (l *Library) ClassValue(class *runtime.Class) *runtime.Instance {
	if class.Object != nil {
		return class.Object
	}
	inst := runtime.NewInstance(l.Class)
	inst.Internal = class
	class.Object = inst
	return inst
}

func (l *Library) native(name string, impl runtime.NativeFunc) *runtime.Instance {
	return l.FunctionValue(runtime.NewNativeFunction(name, impl))
}

// NewObject creates an empty Object instance.
func (l *Library) NewObject() *runtime.Instance {
	return runtime.NewInstance(l.Object)
}

// NewModule creates an empty module namespace.
func (l *Library) NewModule() *runtime.Instance {
	return runtime.NewInstance(l.Module)
}

// NewText boxes s as a String instance.
func (l *Library) NewText(s string) *runtime.Instance {
	inst := runtime.NewInstance(l.String)
	inst.Internal = runtime.Text(s)
	return inst
}

// Box wraps a primitive in its String or Number class so methods can be
// looked up on it.
func (l *Library) Box(v runtime.Value) (*runtime.Instance, bool) {
	switch val := v.(type) {
	case *runtime.Instance:
		return val, true
	case runtime.TextValue:
		return l.NewText(val.Val), true
	case runtime.NumberValue:
		inst := runtime.NewInstance(l.Number)
		inst.Internal = val
		return inst, true
	}
	return nil, false
}

// Callable returns the function or class behind a value, if any.
func Callable(v runtime.Value) (runtime.Value, bool) {
	switch val := v.(type) {
	case *runtime.Func, *runtime.Class:
		return val, true
	case *runtime.Instance:
		switch inner := val.Internal.(type) {
		case *runtime.Func, *runtime.Class:
			return inner, true
		}
	}
	return nil, false
}

// TypeName names the type of v the way typeof reports it.
func TypeName(v runtime.Value) (string, error) {
	switch val := v.(type) {
	case runtime.NumberValue:
		return "number", nil
	case runtime.TextValue:
		return "string", nil
	case runtime.BoolValue:
		return "boolean", nil
	case *runtime.Instance:
		return val.ClassName(), nil
	case *runtime.Func:
		return "Function", nil
	case *runtime.Class:
		return "Class", nil
	}
	return "", fmt.Errorf("typeof: no value")
}

//-----------------------------------------------------------------------------
// Argument helpers
//-----------------------------------------------------------------------------

func arg(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) && args[idx] != nil {
		return args[idx]
	}
	return runtime.Null
}

func numberArg(name string, args []runtime.Value, idx int) (float64, error) {
	if n, ok := runtime.Unbox(arg(args, idx)).(runtime.NumberValue); ok {
		return n.Val, nil
	}
	return 0, fmt.Errorf("%s: argument %d must be a number", name, idx+1)
}

func intArg(name string, args []runtime.Value, idx int) (int, error) {
	n, err := numberArg(name, args, idx)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func textArg(name string, args []runtime.Value, idx int) (string, error) {
	if s, ok := runtime.Unbox(arg(args, idx)).(runtime.TextValue); ok {
		return s.Val, nil
	}
	return "", fmt.Errorf("%s: argument %d must be a string", name, idx+1)
}

// stringify renders v through the evaluator. A non-nil *Thrown means a
// toString method raised.
func stringify(call *runtime.NativeCall, v runtime.Value) (string, *runtime.Thrown, error) {
	out, err := call.Stringify(v, call.Env)
	if err != nil {
		return "", nil, err
	}
	if thrown, ok := runtime.AsThrown(out); ok {
		return "", thrown, nil
	}
	text, ok := out.(runtime.TextValue)
	if !ok {
		return "", nil, fmt.Errorf("toString must return a string")
	}
	return text.Val, nil, nil
}
