package interpreter

import (
	"fmt"
	"math"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/builtins"
	"github.com/pingf/toy-lang/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (Result, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		v, err := env.Get(n.Name)
		if err != nil {
			return Result{}, err
		}
		return normal(v), nil
	case *ast.NumberLiteral:
		return normal(runtime.Number(n.Value)), nil
	case *ast.TextLiteral:
		return normal(runtime.Text(n.Value)), nil
	case *ast.BooleanLiteral:
		return normal(runtime.Bool(n.Value)), nil
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	case *ast.PropertyAccess:
		return i.evaluatePropertyAccess(n, env)
	case *ast.FunctionLiteral:
		fn := runtime.NewFunction(n.Name, n.Parameters, n.Body, env)
		return normal(i.lib.FunctionValue(fn)), nil
	case *ast.ClassLiteral:
		return i.evaluateClassLiteral(n, env)
	default:
		return Result{}, fmt.Errorf("unsupported expression %s", node.NodeType())
	}
}

// evaluateBinaryExpression evaluates left to right. `and` and `or` skip the
// right operand when the left one decides the result and yield the deciding
// operand.
func (i *Interpreter) evaluateBinaryExpression(node *ast.BinaryExpression, env *runtime.Environment) (Result, error) {
	left, err := i.evaluateExpression(node.Left, env)
	if err != nil || !left.Completed() {
		return left, err
	}
	switch node.Operator {
	case "and":
		if !runtime.Truthy(left.Value) {
			return left, nil
		}
		return i.evaluateExpression(node.Right, env)
	case "or":
		if runtime.Truthy(left.Value) {
			return left, nil
		}
		return i.evaluateExpression(node.Right, env)
	}
	right, err := i.evaluateExpression(node.Right, env)
	if err != nil || !right.Completed() {
		return right, err
	}
	return i.applyBinary(node.Operator, left.Value, right.Value, env)
}

func (i *Interpreter) evaluateUnaryExpression(node *ast.UnaryExpression, env *runtime.Environment) (Result, error) {
	res, err := i.evaluateExpression(node.Operand, env)
	if err != nil || !res.Completed() {
		return res, err
	}
	switch node.Operator {
	case "not":
		return normal(runtime.Bool(!runtime.Truthy(res.Value))), nil
	case "-":
		n, ok := runtime.Unbox(res.Value).(runtime.NumberValue)
		if !ok {
			return Result{}, fmt.Errorf("unary '-' expects a number, got %s", describe(res.Value))
		}
		return normal(runtime.Number(-n.Val)), nil
	}
	return Result{}, fmt.Errorf("unsupported unary operator %q", node.Operator)
}

// applyBinary applies a non-short-circuit binary operator. `+` concatenates
// when either operand is text.
func (i *Interpreter) applyBinary(op string, left, right runtime.Value, env *runtime.Environment) (Result, error) {
	switch op {
	case "and":
		if !runtime.Truthy(left) {
			return normal(left), nil
		}
		return normal(right), nil
	case "or":
		if runtime.Truthy(left) {
			return normal(left), nil
		}
		return normal(right), nil
	case "==":
		return normal(runtime.Bool(runtime.Equal(left, right))), nil
	case "!=":
		return normal(runtime.Bool(!runtime.Equal(left, right))), nil
	}

	l, r := runtime.Unbox(left), runtime.Unbox(right)
	if op == "+" {
		_, lText := l.(runtime.TextValue)
		_, rText := r.(runtime.TextValue)
		if lText || rText {
			ls, t, err := i.stringify(left, env)
			if err != nil || t != nil {
				return thrownResult(t), err
			}
			rs, t, err := i.stringify(right, env)
			if err != nil || t != nil {
				return thrownResult(t), err
			}
			return normal(runtime.Text(ls + rs)), nil
		}
	}

	if ls, ok := l.(runtime.TextValue); ok {
		if rs, ok := r.(runtime.TextValue); ok {
			if cmp, ok := compare(op, ls.Val < rs.Val, ls.Val == rs.Val); ok {
				return normal(runtime.Bool(cmp)), nil
			}
		}
	}

	ln, lok := l.(runtime.NumberValue)
	rn, rok := r.(runtime.NumberValue)
	if !lok || !rok {
		return Result{}, fmt.Errorf("unsupported operand types for '%s': %s and %s", op, describe(left), describe(right))
	}
	a, b := ln.Val, rn.Val
	if cmp, ok := compare(op, a < b, a == b); ok {
		return normal(runtime.Bool(cmp)), nil
	}
	switch op {
	case "+":
		return normal(runtime.Number(a + b)), nil
	case "-":
		return normal(runtime.Number(a - b)), nil
	case "*":
		return normal(runtime.Number(a * b)), nil
	case "/":
		return normal(runtime.Number(a / b)), nil
	case "%":
		return normal(runtime.Number(math.Mod(a, b))), nil
	case "&":
		return normal(runtime.Number(float64(toInt(a) & toInt(b)))), nil
	case "|":
		return normal(runtime.Number(float64(toInt(a) | toInt(b)))), nil
	case "^":
		return normal(runtime.Number(float64(toInt(a) ^ toInt(b)))), nil
	case "<<":
		return normal(runtime.Number(float64(toInt(a) << (uint32(toInt(b)) & 31)))), nil
	case ">>":
		return normal(runtime.Number(float64(toInt(a) >> (uint32(toInt(b)) & 31)))), nil
	}
	return Result{}, fmt.Errorf("unsupported operator %q", op)
}

func compare(op string, less, equal bool) (bool, bool) {
	switch op {
	case "<":
		return less, true
	case "<=":
		return less || equal, true
	case ">":
		return !less && !equal, true
	case ">=":
		return !less, true
	}
	return false, false
}

// toInt truncates to a 32-bit integer the way bitwise operators see numbers.
func toInt(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(int64(n))
}

func thrownResult(t *runtime.Thrown) Result {
	if t == nil {
		return Result{}
	}
	return thrown(t)
}

// evaluateArguments evaluates call arguments left to right and stops at the
// first exception.
func (i *Interpreter) evaluateArguments(nodes []ast.Expression, env *runtime.Environment) ([]runtime.Value, Result, error) {
	args := make([]runtime.Value, 0, len(nodes))
	for _, node := range nodes {
		res, err := i.evaluateExpression(node, env)
		if err != nil || !res.Completed() {
			return nil, res, err
		}
		args = append(args, res.Value)
	}
	return args, normal(runtime.Void), nil
}

func (i *Interpreter) evaluateFunctionCall(node *ast.FunctionCall, env *runtime.Environment) (Result, error) {
	callee, err := i.evaluateExpression(node.Callee, env)
	if err != nil || !callee.Completed() {
		return callee, err
	}
	args, res, err := i.evaluateArguments(node.Arguments, env)
	if err != nil || !res.Completed() {
		return res, err
	}
	return i.callValue(callee.Value, args, env)
}

// evaluateClassLiteral resolves the parents, builds the method table and runs
// the static body in a child of the defining context. Bindings made by the
// static body become properties of the class object.
func (i *Interpreter) evaluateClassLiteral(node *ast.ClassLiteral, env *runtime.Environment) (Result, error) {
	bases := make([]*runtime.Class, 0, len(node.Parents))
	for _, name := range node.Parents {
		v, err := env.Get(name)
		if err != nil {
			return Result{}, &runtime.ReferenceError{What: "class", Name: name}
		}
		callable, _ := builtins.Callable(v)
		base, ok := callable.(*runtime.Class)
		if !ok {
			return Result{}, fmt.Errorf("class %s: parent '%s' is not a class", node.Name, name)
		}
		bases = append(bases, base)
	}
	class := runtime.NewClass(node.Name, bases, env)
	class.Static = node.StaticBody
	for _, method := range node.Methods {
		class.Define(method.Name, runtime.NewFunction(method.Name, method.Parameters, method.Body, env))
	}
	object := i.lib.ClassValue(class)

	staticEnv := env.Extend()
	res, err := i.evaluateStatement(node.StaticBody, staticEnv)
	if err != nil {
		return Result{}, err
	}
	switch res.Signal {
	case Thrown:
		return res, nil
	case Returned, Broken:
		return Result{}, fmt.Errorf("class %s: unexpected %s in class body", node.Name, res.Signal)
	}
	for _, key := range staticEnv.Keys() {
		v, _ := staticEnv.Lookup(key)
		object.Set(key, v)
	}
	return normal(object), nil
}

// describe names a value's type for error messages.
func describe(v runtime.Value) string {
	if name, err := builtins.TypeName(v); err == nil {
		return name
	}
	return "null"
}
