package interpreter

import (
	"fmt"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (Result, error) {
	switch n := node.(type) {
	case nil, *ast.EmptyStatement:
		return normal(runtime.Void), nil
	case *ast.Sequence:
		return i.evaluateSequence(n, env)
	case *ast.Assignment:
		return i.evaluateAssignment(n, env)
	case *ast.PropertyAssignment:
		return i.evaluatePropertyAssignment(n, env)
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.WhileLoop:
		return i.evaluateWhileLoop(n, env)
	case *ast.SwitchStatement:
		return i.evaluateSwitchStatement(n, env)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	case *ast.ThrowStatement:
		return i.evaluateThrowStatement(n, env)
	case *ast.BreakStatement:
		return broken, nil
	case *ast.TryStatement:
		return i.evaluateTryStatement(n, env)
	case *ast.ImportStatement:
		return i.evaluateImportStatement(n, env)
	default:
		return Result{}, fmt.Errorf("unsupported statement %s", node.NodeType())
	}
}

func sequenceFrame(seq *ast.Sequence) runtime.Frame {
	return runtime.Frame{File: seq.Pos.File, Line: seq.Pos.Line, Source: seq.Source}
}

// evaluateSequence walks the right spine of a statement chain in a loop.
// The second link runs only when the first completed normally; a thrown
// exception gains one frame per context level on its way out.
func (i *Interpreter) evaluateSequence(seq *ast.Sequence, env *runtime.Environment) (Result, error) {
	last := normal(runtime.Void)
	var stmt ast.Statement = seq
	for {
		link, ok := stmt.(*ast.Sequence)
		if !ok {
			if ast.IsEmpty(stmt) {
				return last, nil
			}
			return i.evaluateStatement(stmt, env)
		}
		res, err := i.evaluateStatement(link.First, env)
		if err != nil {
			return Result{}, annotateError(err, env, sequenceFrame(link))
		}
		switch res.Signal {
		case Thrown:
			res.Thrown.Annotate(env, sequenceFrame(link))
			return res, nil
		case Returned, Broken:
			return res, nil
		}
		last = res
		stmt = link.Second
	}
}

func (i *Interpreter) evaluateAssignment(node *ast.Assignment, env *runtime.Environment) (Result, error) {
	res, err := i.evaluateExpression(node.Value, env)
	if err != nil || !res.Completed() {
		return res, err
	}
	value := res.Value
	name := node.Target.Name
	if op := node.CompoundOperator(); op != "" {
		var current runtime.Value
		if node.Nonlocal {
			current, err = env.GetNonlocal(name)
		} else {
			current, err = env.Get(name)
		}
		if err != nil {
			return Result{}, err
		}
		combined, err := i.applyBinary(op, current, value, env)
		if err != nil || !combined.Completed() {
			return combined, err
		}
		value = combined.Value
	}
	if node.Nonlocal {
		if err := env.AssignNonlocal(name, value); err != nil {
			return Result{}, err
		}
	} else {
		env.Define(name, value)
	}
	return normal(runtime.Void), nil
}

func (i *Interpreter) evaluateIfStatement(node *ast.IfStatement, env *runtime.Environment) (Result, error) {
	cond, err := i.evaluateExpression(node.Condition, env)
	if err != nil || !cond.Completed() {
		return cond, err
	}
	if runtime.Truthy(cond.Value) {
		return i.evaluateStatement(node.Then, env)
	}
	return i.evaluateStatement(node.Else, env)
}

// evaluateWhileLoop iterates in place. The loop consumes break; return and
// throw leave it immediately.
func (i *Interpreter) evaluateWhileLoop(node *ast.WhileLoop, env *runtime.Environment) (Result, error) {
	for {
		cond, err := i.evaluateExpression(node.Condition, env)
		if err != nil || !cond.Completed() {
			return cond, err
		}
		if !runtime.Truthy(cond.Value) {
			return normal(runtime.Void), nil
		}
		res, err := i.evaluateStatement(node.Body, env)
		if err != nil {
			return Result{}, err
		}
		switch res.Signal {
		case Broken:
			return normal(runtime.Void), nil
		case Returned, Thrown:
			return res, nil
		}
	}
}

func (i *Interpreter) evaluateSwitchStatement(node *ast.SwitchStatement, env *runtime.Environment) (Result, error) {
	subject, err := i.evaluateExpression(node.Value, env)
	if err != nil || !subject.Completed() {
		return subject, err
	}
	for _, c := range node.Cases {
		for _, candidate := range c.Values {
			res, err := i.evaluateExpression(candidate, env)
			if err != nil || !res.Completed() {
				return res, err
			}
			if runtime.Equal(subject.Value, res.Value) {
				return i.evaluateStatement(c.Body, env)
			}
		}
	}
	return i.evaluateStatement(node.Default, env)
}

func (i *Interpreter) evaluateReturnStatement(node *ast.ReturnStatement, env *runtime.Environment) (Result, error) {
	if node.Argument == nil {
		return returned(runtime.Void), nil
	}
	res, err := i.evaluateExpression(node.Argument, env)
	if err != nil || !res.Completed() {
		return res, err
	}
	return returned(res.Value), nil
}

func (i *Interpreter) evaluateThrowStatement(node *ast.ThrowStatement, env *runtime.Environment) (Result, error) {
	res, err := i.evaluateExpression(node.Expression, env)
	if err != nil || !res.Completed() {
		return res, err
	}
	return thrown(runtime.Throw(res.Value)), nil
}

// evaluateTryStatement binds the caught value for the duration of the catch
// block. The name is removed from the context afterwards, including any
// binding it shadowed.
func (i *Interpreter) evaluateTryStatement(node *ast.TryStatement, env *runtime.Environment) (Result, error) {
	res, err := i.evaluateStatement(node.Body, env)
	if err != nil || res.Signal != Thrown {
		return res, err
	}
	caught := res.Thrown
	i.lib.RecordTrace(caught.Value, caught.Frames)

	name := node.ExceptionVar.Name
	env.Define(name, caught.Value)
	res, err = i.evaluateStatement(node.Catch, env)
	env.Delete(name)
	return res, err
}
