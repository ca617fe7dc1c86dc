package runtime

import (
	"errors"
	"math"
	"testing"
)

func TestEnvironmentScopes(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", Number(1))
	child := global.Extend()
	child.Define("y", Number(2))

	if v, err := child.Get("x"); err != nil || !Equal(v, Number(1)) {
		t.Fatalf("child.Get(x) = %v, %v", v, err)
	}
	if _, err := global.Get("y"); err == nil {
		t.Fatalf("expected y to be invisible from the parent")
	}
	if err := child.Assign("x", Number(5)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if v, _ := global.Get("x"); !Equal(v, Number(5)) {
		t.Fatalf("global x = %v, want 5", v)
	}

	child.Define("x", Number(9))
	if err := child.AssignNonlocal("x", Number(7)); err != nil {
		t.Fatalf("AssignNonlocal: %v", err)
	}
	if v, _ := global.Get("x"); !Equal(v, Number(7)) {
		t.Fatalf("nonlocal should rebind the parent binding, got %v", v)
	}
	if v, _ := child.Get("x"); !Equal(v, Number(9)) {
		t.Fatalf("nonlocal should not touch the own binding, got %v", v)
	}

	child.Delete("y")
	if _, ok := child.Lookup("y"); ok {
		t.Fatalf("expected y to be removed")
	}
}

func TestEnvironmentReferenceErrors(t *testing.T) {
	env := NewEnvironment(nil).Extend()
	_, err := env.Get("missing")
	var refErr *ReferenceError
	if !errors.As(err, &refErr) || refErr.Name != "missing" {
		t.Fatalf("Get(missing) error = %v, want ReferenceError", err)
	}
	if err.Error() != "Undefined variable 'missing'" {
		t.Fatalf("error = %q", err.Error())
	}
	if err := env.AssignNonlocal("missing", Null); err == nil {
		t.Fatalf("expected nonlocal assignment to an unknown name to fail")
	}
	if err := NewEnvironment(nil).AssignNonlocal("x", Null); err == nil {
		t.Fatalf("expected nonlocal assignment at the root to fail")
	}
}

func method(result float64) *Func {
	return NewNativeFunction("m", func(*NativeCall, []Value) (Value, error) {
		return Number(result), nil
	})
}

func TestClassResolutionFirstParentWins(t *testing.T) {
	object := NewClass(ObjectClassName, nil, nil)
	a := NewClass("A", []*Class{object}, nil)
	a.Define("m", method(1))
	b := NewClass("B", []*Class{object}, nil)
	b.Define("m", method(2))
	c := NewClass("C", []*Class{a, b}, nil)

	fn, owner, err := c.GetMethod("m")
	if err != nil {
		t.Fatalf("GetMethod: %v", err)
	}
	if owner != a {
		t.Fatalf("owner = %s, want A", owner.Name)
	}
	v, _ := fn.Native(nil, nil)
	if !Equal(v, Number(1)) {
		t.Fatalf("m() = %v, want 1", v)
	}
}

func TestClassResolutionBreadthFirst(t *testing.T) {
	object := NewClass(ObjectClassName, nil, nil)
	object.Define("m", method(0))
	deep := NewClass("Deep", []*Class{object}, nil)
	deep.Define("m", method(3))
	left := NewClass("Left", []*Class{deep}, nil)
	right := NewClass("Right", []*Class{object}, nil)
	right.Define("m", method(2))
	child := NewClass("Child", []*Class{left, right}, nil)

	_, owner, ok := child.Resolve("m")
	if !ok || owner != right {
		t.Fatalf("expected the second direct parent to win over a grandparent")
	}
	if _, _, ok := object.Resolve("m"); ok {
		t.Fatalf("Object must not contribute methods")
	}
	if _, _, err := child.GetMethod("missing"); err == nil {
		t.Fatalf("expected a reference failure")
	}
	if !child.IsSubclassOf(deep) || deep.IsSubclassOf(child) {
		t.Fatalf("unexpected subclass relation")
	}
}

func TestClassResolutionDiamond(t *testing.T) {
	object := NewClass(ObjectClassName, nil, nil)
	base := NewClass("Base", []*Class{object}, nil)
	base.Define("m", method(1))
	left := NewClass("Left", []*Class{base}, nil)
	right := NewClass("Right", []*Class{base}, nil)
	bottom := NewClass("Bottom", []*Class{left, right}, nil)
	if _, owner, ok := bottom.Resolve("m"); !ok || owner != base {
		t.Fatalf("expected Base through the diamond")
	}
}

func TestInstanceMembers(t *testing.T) {
	class := NewClass("Point", nil, nil)
	class.Define("norm", method(5))
	inst := NewInstance(class)
	if inst.Internal != inst {
		t.Fatalf("internal payload should default to the instance")
	}
	inst.Set("y", Number(2))
	inst.Set("x", Number(1))
	inst.Set("y", Number(3))
	if keys := inst.Keys(); len(keys) != 2 || keys[0] != "y" || keys[1] != "x" {
		t.Fatalf("Keys() = %v, want [y x]", keys)
	}
	member, err := inst.Member("norm")
	if err != nil {
		t.Fatalf("expected method lookup to fall back to the class: %v", err)
	}
	if fn := member.(*Func); fn.This != inst {
		t.Fatalf("method should be bound to the instance")
	}
	_, err = inst.Member("nope")
	var ref *ReferenceError
	if !errors.As(err, &ref) || ref.What != "method" || ref.Name != "Point.nope" {
		t.Fatalf("Member(nope) err = %v, want undefined method Point.nope", err)
	}
}

func TestThrownAnnotation(t *testing.T) {
	outer := NewEnvironment(nil)
	inner := outer.Extend()
	thrown := Throw(Number(42))

	if !thrown.Annotate(inner, Frame{File: "a.toy", Line: 3, Source: "throw 42"}) {
		t.Fatalf("first boundary should annotate")
	}
	if thrown.Annotate(inner, Frame{File: "a.toy", Line: 2, Source: "if x:"}) {
		t.Fatalf("same context must not annotate twice")
	}
	if !thrown.Annotate(outer, Frame{File: "a.toy", Line: 9, Source: "f()"}) {
		t.Fatalf("a new context level should annotate")
	}
	if len(thrown.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(thrown.Frames))
	}
	if got := thrown.Frames[1].String(); got != "a.toy:9: f()" {
		t.Fatalf("frame = %q", got)
	}
}

func TestTruthyEqualFormat(t *testing.T) {
	falsy := []Value{Null, Bool(false), Number(0), Text(""), Number(math.NaN())}
	for _, v := range falsy {
		if Truthy(v) {
			t.Fatalf("Truthy(%#v) = true", v)
		}
	}
	truthy := []Value{Bool(true), Number(-1), Text("0"), NewInstance(NewClass("X", nil, nil))}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Fatalf("Truthy(%#v) = false", v)
		}
	}
	if !Equal(Text("a"), Text("a")) || Equal(Text("1"), Number(1)) || !Equal(Null, Void) {
		t.Fatalf("unexpected equality")
	}
	boxed := NewInstance(NewClass("String", nil, nil))
	boxed.Internal = Text("a")
	if !Equal(boxed, Text("a")) {
		t.Fatalf("boxed text should equal its payload")
	}
	formats := map[float64]string{14: "14", 2.5: "2.5", -0.125: "-0.125", math.Inf(1): "Infinity"}
	for n, want := range formats {
		if got := FormatNumber(n); got != want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", n, got, want)
		}
	}
}
