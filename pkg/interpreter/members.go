package interpreter

import (
	"fmt"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/runtime"
)

// member reads name from an object value. Primitives are boxed into their
// String or Number class first; methods come back as bound Function values.
func (i *Interpreter) member(target runtime.Value, name string) (runtime.Value, error) {
	inst, ok := i.lib.Box(target)
	if !ok {
		return nil, fmt.Errorf("cannot read property '%s' of %s", name, describe(target))
	}
	v, err := inst.Member(name)
	if err != nil {
		return nil, err
	}
	if fn, ok := v.(*runtime.Func); ok {
		return i.lib.FunctionValue(fn), nil
	}
	return v, nil
}

func (i *Interpreter) evaluatePropertyAccess(node *ast.PropertyAccess, env *runtime.Environment) (Result, error) {
	target, err := i.evaluateExpression(node.Target, env)
	if err != nil || !target.Completed() {
		return target, err
	}
	v, err := i.member(target.Value, node.Name)
	if err != nil {
		return Result{}, err
	}
	return normal(v), nil
}

func (i *Interpreter) evaluatePropertyAssignment(node *ast.PropertyAssignment, env *runtime.Environment) (Result, error) {
	target, err := i.evaluateExpression(node.Target, env)
	if err != nil || !target.Completed() {
		return target, err
	}
	inst, ok := target.Value.(*runtime.Instance)
	if !ok {
		return Result{}, fmt.Errorf("cannot set property '%s' on %s", node.Name, describe(target.Value))
	}
	res, err := i.evaluateExpression(node.Value, env)
	if err != nil || !res.Completed() {
		return res, err
	}
	value := res.Value
	if op := node.CompoundOperator(); op != "" {
		current, err := i.member(inst, node.Name)
		if err != nil {
			return Result{}, err
		}
		combined, err := i.applyBinary(op, current, value, env)
		if err != nil || !combined.Completed() {
			return combined, err
		}
		value = combined.Value
	}
	inst.Set(node.Name, value)
	return normal(runtime.Void), nil
}

// stringify renders v as text. Instances whose class resolves toString are
// rendered by calling it; a non-nil *Thrown means that call raised.
func (i *Interpreter) stringify(v runtime.Value, env *runtime.Environment) (string, *runtime.Thrown, error) {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return "null", nil, nil
	case runtime.NumberValue:
		return runtime.FormatNumber(val.Val), nil, nil
	case runtime.TextValue:
		return val.Val, nil, nil
	case runtime.BoolValue:
		if val.Val {
			return "true", nil, nil
		}
		return "false", nil, nil
	case *runtime.Thrown:
		return i.stringify(val.Value, env)
	case *runtime.Func:
		return fmt.Sprintf("<function %s>", val.Name), nil, nil
	case *runtime.Class:
		return fmt.Sprintf("<class %s>", val.Name), nil, nil
	case *runtime.Instance:
		if val.Class != nil {
			if fn, _, ok := val.Class.Resolve("toString"); ok {
				res, err := i.callFunction(fn.Bind(val), nil, env)
				if err != nil {
					return "", nil, err
				}
				if res.Signal == Thrown {
					return "", res.Thrown, nil
				}
				text, ok := runtime.Unbox(res.Value).(runtime.TextValue)
				if !ok {
					return "", nil, fmt.Errorf("%s.toString must return a string, got %s", val.ClassName(), describe(res.Value))
				}
				return text.Val, nil, nil
			}
		}
		switch inner := val.Internal.(type) {
		case *runtime.Func, *runtime.Class:
			return i.stringify(inner, env)
		case runtime.NumberValue, runtime.TextValue, runtime.BoolValue:
			return i.stringify(inner, env)
		}
		return fmt.Sprintf("<%s instance>", val.ClassName()), nil, nil
	}
	return fmt.Sprintf("<%s>", v.Kind()), nil, nil
}
