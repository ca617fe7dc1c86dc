// Package runtime holds the dynamic value domain of the toy interpreter:
// primitives, functions, classes, instances, thrown exceptions and the
// scope chain they close over.
package runtime

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pingf/toy-lang/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindBool
	KindNative
	KindFunction
	KindClass
	KindInstance
	KindThrown
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindText:
		return "string"
	case KindBool:
		return "boolean"
	case KindNative:
		return "native"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindThrown:
		return "thrown"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// Null is the "no value" sentinel. Void is the same value under the name
// used for calls that return nothing.
var (
	Null Value = NullValue{}
	Void       = Null
)

// IsNull reports whether v is the no-value sentinel (or a nil interface).
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }

type TextValue struct {
	Val string
}

func (TextValue) Kind() Kind { return KindText }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

func Number(n float64) Value { return NumberValue{Val: n} }
func Text(s string) Value    { return TextValue{Val: s} }
func Bool(b bool) Value      { return BoolValue{Val: b} }

// Native wraps host data such as the backing storage of a list.
type Native struct {
	Val any
}

func (*Native) Kind() Kind { return KindNative }

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// Services exposes evaluator facilities to native functions.
type Services interface {
	// Invoke calls a callable value. A *Thrown result means the callee
	// raised a language exception.
	Invoke(fn Value, args []Value, env *Environment) (Value, error)
	// Stringify renders v as text, calling toString methods. The result is a
	// TextValue or a *Thrown.
	Stringify(v Value, env *Environment) (Value, error)
	Output(text string)
	Input(prompt string) (string, error)
	LoadedModules() []string
}

// NativeCall carries the call site of a native function. This is nil for
// plain function calls.
type NativeCall struct {
	Services
	Env  *Environment
	This *Instance
}

// NativeFunc implements a builtin. Returning a *Thrown raises it as a
// language exception; returning an error aborts evaluation.
type NativeFunc func(call *NativeCall, args []Value) (Value, error)

// Func is a callable. User functions carry a body and an optional captured
// closure; builtins carry Native instead.
type Func struct {
	Name    string
	Params  []string
	Body    ast.Statement
	Closure *Environment
	Native  NativeFunc
	// This is the receiver of a bound method.
	This *Instance
}

func (*Func) Kind() Kind { return KindFunction }

// NewFunction creates a user function. A nil closure makes calls run in a
// child of the caller's context.
func NewFunction(name string, params []string, body ast.Statement, closure *Environment) *Func {
	return &Func{Name: name, Params: params, Body: body, Closure: closure}
}

func NewNativeFunction(name string, impl NativeFunc) *Func {
	return &Func{Name: name, Native: impl}
}

// Bind returns a copy of f with the receiver set.
func (f *Func) Bind(this *Instance) *Func {
	bound := *f
	bound.This = this
	return &bound
}

//-----------------------------------------------------------------------------
// Helpers
//-----------------------------------------------------------------------------

// Truthy applies the language's truthiness rules: false, zero, empty text
// and no value are falsy; everything else is truthy.
func Truthy(v Value) bool {
	switch val := Unbox(v).(type) {
	case BoolValue:
		return val.Val
	case NumberValue:
		return val.Val != 0 && !math.IsNaN(val.Val)
	case TextValue:
		return val.Val != ""
	case NullValue, nil:
		return false
	}
	return true
}

// Unbox returns the primitive payload of a boxed String/Number instance and
// v itself otherwise.
func Unbox(v Value) Value {
	inst, ok := v.(*Instance)
	if !ok {
		return v
	}
	switch inner := inst.Internal.(type) {
	case NumberValue, TextValue, BoolValue:
		return inner
	}
	return v
}

// Equal compares primitives by value and everything else by identity.
func Equal(a, b Value) bool {
	a, b = Unbox(a), Unbox(b)
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case TextValue:
		bv, ok := b.(TextValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	}
	return a == b
}

// FormatNumber renders a number the way the language prints it: integral
// values without a fractional part.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
