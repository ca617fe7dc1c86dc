package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/parser"
	"github.com/pingf/toy-lang/pkg/runtime"
)

func newTestInterpreter(out *bytes.Buffer, opts ...Option) *Interpreter {
	return New(append([]Option{WithHost(NewStreamHost(out, nil))}, opts...)...)
}

func runProgram(t *testing.T, lines ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	interp := newTestInterpreter(&out)
	err := interp.RunSource("main.toy", strings.Join(lines, "\n"))
	return out.String(), err
}

func mustRun(t *testing.T, lines ...string) string {
	t.Helper()
	out, err := runProgram(t, lines...)
	if err != nil {
		t.Fatalf("run failed: %v\noutput: %s", err, out)
	}
	return out
}

func TestIfElseChoosesOneBranch(t *testing.T) {
	for _, tc := range []struct {
		x    string
		want string
	}{
		{x: "1", want: "then\nafter\n"},
		{x: "0", want: "else\nafter\n"},
		{x: "''", want: "else\nafter\n"},
	} {
		out := mustRun(t,
			"x = "+tc.x,
			"if x:",
			"  println('then')",
			"else:",
			"  println('else')",
			"end",
			"println('after')",
		)
		if out != tc.want {
			t.Fatalf("x = %s: output = %q, want %q", tc.x, out, tc.want)
		}
	}
}

func TestWhileLoopAndBreak(t *testing.T) {
	out := mustRun(t,
		"i = 0",
		"while i < 10:",
		"  i += 1",
		"  if i == 4:",
		"    break",
		"  end",
		"  print(i)",
		"end",
		"println(' done ' + i)",
	)
	if out != "123 done 4\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestWhileLoopReturnsFromFunction(t *testing.T) {
	out := mustRun(t,
		"def find(limit):",
		"  n = 0",
		"  while true:",
		"    n += 1",
		"    if n * n > limit:",
		"      return n",
		"    end",
		"  end",
		"end",
		"println(find(50))",
	)
	if out != "8\n" {
		t.Fatalf("output = %q, want %q", out, "8\n")
	}
}

func TestLongLoopDoesNotGrowStack(t *testing.T) {
	out := mustRun(t,
		"total = 0",
		"i = 0",
		"while i < 200000:",
		"  total += i",
		"  i += 1",
		"end",
		"println(total)",
	)
	if out != "19999900000\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	interp := New()
	cases := map[string]string{
		"2 + 3 * 4":            "14",
		"(2 + 3) * 4":          "20",
		"10 - 4 - 3":           "3",
		"7 % 4 + 1":            "4",
		"1 << 2 + 1":           "8",
		"6 & 3 | 8":            "10",
		"-2 * 3":               "-6",
		"'a' + 1 + 2":          "a12",
		"1 + 2 + 'a'":          "3a",
		"'abc' < 'abd'":        "true",
		"not (1 == 2)":         "true",
		"0 or 'x'":             "x",
		"0 and missing":        "0",
		"1 < 2 and 3 > 2":      "true",
		"10 / 4":               "2.5",
		"Number.MAX_VALUE > 1": "true",
	}
	for expr, want := range cases {
		v, err := interp.Evaluate(expr)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", expr, err)
		}
		got, _, err := interp.stringify(v, interp.GlobalEnvironment())
		if err != nil {
			t.Fatalf("stringify(%q): %v", expr, err)
		}
		if got != want {
			t.Fatalf("Evaluate(%q) = %s, want %s", expr, got, want)
		}
	}
}

func TestCounterClosures(t *testing.T) {
	out := mustRun(t,
		"def counter():",
		"  count = 0",
		"  def next():",
		"    nonlocal count += 1",
		"    return count",
		"  end",
		"  return next",
		"end",
		"a = counter()",
		"b = counter()",
		"a()",
		"a()",
		"println(a())",
		"println(b())",
	)
	if out != "3\n1\n" {
		t.Fatalf("output = %q, want %q", out, "3\n1\n")
	}
}

func TestNonlocalRequiresAncestorBinding(t *testing.T) {
	_, err := runProgram(t,
		"def f():",
		"  nonlocal missing = 1",
		"end",
		"f()",
	)
	var ref *runtime.ReferenceError
	if !errors.As(err, &ref) || ref.Name != "missing" {
		t.Fatalf("err = %v, want reference error for missing", err)
	}
}

func TestArgumentsAndMissingParameters(t *testing.T) {
	out := mustRun(t,
		"def f(a, b):",
		"  println(arguments.length())",
		"  println(noValue(b))",
		"end",
		"f(1)",
		"f(1, 2, 3)",
	)
	if out != "1\ntrue\n3\nfalse\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestFirstParentWins(t *testing.T) {
	out := mustRun(t,
		"class A:",
		"  def m():",
		"    return 1",
		"  end",
		"end",
		"class B:",
		"  def m():",
		"    return 2",
		"  end",
		"end",
		"class C(A, B):",
		"end",
		"c = C()",
		"println(c.m())",
	)
	if out != "1\n" {
		t.Fatalf("output = %q, want %q", out, "1\n")
	}
}

func TestClassInitStaticAndThis(t *testing.T) {
	out := mustRun(t,
		"class Point:",
		"  origin = 0",
		"  def init(x, y):",
		"    this.x = x",
		"    this.y = y",
		"  end",
		"  def sum():",
		"    return this.x + this.y + Point.origin",
		"  end",
		"  def toString():",
		"    return '(' + this.x + ', ' + this.y + ')'",
		"  end",
		"end",
		"p = Point(2, 3)",
		"p.x += 10",
		"println(p.sum())",
		"println(p)",
		"println(typeof(p))",
		"println(Point.origin)",
	)
	if out != "15\n(12, 3)\nPoint\n0\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestUnknownParentIsReferenceError(t *testing.T) {
	_, err := runProgram(t, "class C(Missing):", "end")
	var ref *runtime.ReferenceError
	if !errors.As(err, &ref) || ref.What != "class" {
		t.Fatalf("err = %v, want class reference error", err)
	}
}

func TestMissingMethodIsReferenceError(t *testing.T) {
	_, err := runProgram(t,
		"class A:",
		"end",
		"a = A()",
		"a.nope()",
	)
	var ref *runtime.ReferenceError
	if !errors.As(err, &ref) || ref.What != "method" || ref.Name != "A.nope" {
		t.Fatalf("err = %v, want undefined method A.nope", err)
	}
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || len(rtErr.Frames) != 1 || rtErr.Frames[0].Line != 4 {
		t.Fatalf("err = %#v, want one frame at line 4", err)
	}
}

func TestTryCatchRoundTrip(t *testing.T) {
	var out bytes.Buffer
	interp := newTestInterpreter(&out)
	err := interp.RunSource("main.toy", "try:\n  throw 42\ncatch(e):\n  println(e)\nend")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("output = %q, want %q", out.String(), "42\n")
	}
	if _, ok := interp.GlobalEnvironment().Lookup("e"); ok {
		t.Fatalf("catch variable should not stay bound")
	}
}

func TestCatchRemovesShadowedBinding(t *testing.T) {
	out, err := runProgram(t,
		"x = 5",
		"try:",
		"  throw 1",
		"catch(x):",
		"  println(x)",
		"end",
		"println(x)",
	)
	if out != "1\n" {
		t.Fatalf("output = %q, want only the caught value", out)
	}
	var refErr *runtime.ReferenceError
	if !errors.As(err, &refErr) || refErr.Name != "x" {
		t.Fatalf("err = %v, want reference error for x", err)
	}
}

func TestThrowInArgumentAbortsCall(t *testing.T) {
	out := mustRun(t,
		"def boom():",
		"  throw 'boom'",
		"end",
		"def show(a, b):",
		"  println('called')",
		"end",
		"try:",
		"  show(println('first'), boom())",
		"catch(err):",
		"  println(err)",
		"end",
	)
	if out != "first\nboom\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestTraceableFrames(t *testing.T) {
	out := mustRun(t,
		"class Oops(Traceable):",
		"end",
		"def fail():",
		"  x = 1",
		"  throw Oops()",
		"end",
		"try:",
		"  fail()",
		"catch(e):",
		"  println(e.stackTraceElements.length())",
		"  e.printStackTrace()",
		"end",
	)
	want := "2\nat main.toy:5 throw Oops()\nat main.toy:8 fail()\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRethrownTraceableKeepsFrames(t *testing.T) {
	out := mustRun(t,
		"class Oops(Traceable):",
		"end",
		"def fail():",
		"  throw Oops()",
		"end",
		"def relay():",
		"  try:",
		"    fail()",
		"  catch(e):",
		"    throw e",
		"  end",
		"end",
		"try:",
		"  relay()",
		"catch(e):",
		"  println(e.stackTraceElements.length())",
		"  e.printStackTrace()",
		"end",
	)
	want := "4\n" +
		"at main.toy:4 throw Oops()\n" +
		"at main.toy:8 fail()\n" +
		"at main.toy:10 throw e\n" +
		"at main.toy:14 relay()\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestPrimitiveThrowIsNotAnnotated(t *testing.T) {
	out := mustRun(t,
		"try:",
		"  throw 'plain'",
		"catch(e):",
		"  println(typeof(e))",
		"end",
	)
	if out != "string\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestUncaughtException(t *testing.T) {
	out, err := runProgram(t,
		"def fail():",
		"  throw 'bad'",
		"end",
		"fail()",
	)
	var uncaught *UncaughtError
	if !errors.As(err, &uncaught) {
		t.Fatalf("err = %v, want *UncaughtError", err)
	}
	if uncaught.Message != "bad" || len(uncaught.Thrown.Frames) != 2 {
		t.Fatalf("uncaught = %+v", uncaught)
	}
	want := "Uncaught exception: bad\n\tat main.toy:2: throw 'bad'\n\tat main.toy:4: fail()\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestFramesAddedOncePerContext(t *testing.T) {
	_, err := runProgram(t,
		"if true:",
		"  while true:",
		"    throw 1",
		"  end",
		"end",
	)
	var uncaught *UncaughtError
	if !errors.As(err, &uncaught) {
		t.Fatalf("err = %v, want *UncaughtError", err)
	}
	if len(uncaught.Thrown.Frames) != 1 || uncaught.Thrown.Frames[0].Line != 3 {
		t.Fatalf("frames = %+v, want one frame at line 3", uncaught.Thrown.Frames)
	}
}

func TestSwitchStatement(t *testing.T) {
	out := mustRun(t,
		"def name(n):",
		"  switch n:",
		"  case 1, 2:",
		"    return 'low'",
		"  case 3:",
		"    return 'three'",
		"  default:",
		"    return 'other'",
		"  end",
		"end",
		"println(name(2) + name(3) + name(9))",
	)
	if out != "lowthreeother\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestBuiltinLibrary(t *testing.T) {
	out := mustRun(t,
		"s = 'Hello'",
		"println(s.toUpperCase() + s.length())",
		"def twice(x):",
		"  return x * 2",
		"end",
		"l = List(3, 1, 2)",
		"l.add(4)",
		"println(l.map(twice).join('-'))",
		"println(String.format('{} and {}', 'a', 1))",
	)
	if out != "HELLO5\n6-2-4-8\na and 1\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestBreakOutsideLoopFails(t *testing.T) {
	_, err := runProgram(t, "break")
	if err == nil || !strings.Contains(err.Error(), "break") {
		t.Fatalf("err = %v, want break failure", err)
	}
}

type mapLoader struct {
	sources map[string]string
	loaded  []string
	loads   int
}

func (l *mapLoader) Load(path, importer string) (*ast.Program, error) {
	src, ok := l.sources[path]
	if !ok {
		return nil, fmt.Errorf("loader: module %q not found", path)
	}
	l.loads++
	program, err := parser.Parse(path, src)
	if err != nil {
		return nil, err
	}
	l.loaded = append(l.loaded, path)
	return program, nil
}

func (l *mapLoader) Loaded() []string {
	return l.loaded
}

func TestImports(t *testing.T) {
	loader := &mapLoader{sources: map[string]string{
		"lib/math.toy": "pi = 3\ndef double(x):\n  return x * 2\nend\nprintln('loading math')",
	}}
	var out bytes.Buffer
	interp := newTestInterpreter(&out, WithLoader(loader))
	err := interp.RunSource("main.toy", strings.Join([]string{
		"import 'lib/math.toy'",
		"import 'lib/math.toy' as m",
		"from 'lib/math.toy' import double",
		"println(math.double(m.pi))",
		"println(double(5))",
		"println(typeof(m))",
	}, "\n"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "loading math\n6\n10\nModule\n" {
		t.Fatalf("output = %q", out.String())
	}
	if got := interp.LoadedModules(); len(got) == 0 || got[0] != "lib/math.toy" {
		t.Fatalf("loaded modules = %v", got)
	}
}

func TestImportCycle(t *testing.T) {
	loader := &mapLoader{sources: map[string]string{
		"a": "import 'b'",
		"b": "import 'a'",
	}}
	var out bytes.Buffer
	interp := newTestInterpreter(&out, WithLoader(loader))
	err := interp.RunSource("main.toy", "import 'a'")
	if err == nil || !strings.Contains(err.Error(), "import cycle") {
		t.Fatalf("err = %v, want import cycle", err)
	}
}

func TestImportWithoutLoader(t *testing.T) {
	_, err := runProgram(t, "import 'x'")
	if err == nil || !strings.Contains(err.Error(), "no module loader") {
		t.Fatalf("err = %v", err)
	}
}

func TestEvaluateReportsReferenceError(t *testing.T) {
	_, err := New().Evaluate("nothing + 1")
	var ref *runtime.ReferenceError
	if !errors.As(err, &ref) || ref.Name != "nothing" {
		t.Fatalf("err = %v, want reference error", err)
	}
	if err.Error() != "Undefined variable 'nothing'" {
		t.Fatalf("err = %q", err.Error())
	}
}

func TestNilClosureUsesCallerContext(t *testing.T) {
	body, err := parser.Parse("dyn.toy", "return y")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var out bytes.Buffer
	interp := newTestInterpreter(&out)
	dyn := runtime.NewFunction("dyn", nil, body.Body, nil)
	interp.GlobalEnvironment().Define("dyn", interp.Library().FunctionValue(dyn))

	err = interp.RunSource("main.toy", strings.Join([]string{
		"def caller():",
		"  y = 7",
		"  return dyn()",
		"end",
		"println(caller())",
	}, "\n"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "7\n" {
		t.Fatalf("output = %q, want 7", out.String())
	}
}

func TestNonlocalCompoundIgnoresLocalShadow(t *testing.T) {
	out := mustRun(t,
		"def outer():",
		"  n = 10",
		"  def inner():",
		"    n = 1",
		"    nonlocal n += 5",
		"    return n",
		"  end",
		"  println(inner())",
		"  println(n)",
		"end",
		"outer()",
	)
	if out != "1\n15\n" {
		t.Fatalf("output = %q, want local 1 and outer 15", out)
	}
}
