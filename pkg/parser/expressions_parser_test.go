package parser

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/lexer"
)

func postfixString(t *testing.T, expr string) string {
	t.Helper()
	tokens, err := lexer.Expression(expr)
	if err != nil {
		t.Fatalf("lexer.Expression(%q): %v", expr, err)
	}
	postfix, err := ToPostfix(tokens)
	if err != nil {
		t.Fatalf("ToPostfix(%q): %v", expr, err)
	}
	parts := make([]string, len(postfix))
	for i, tok := range postfix {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}

func TestToPostfixOrdering(t *testing.T) {
	cases := map[string]string{
		"2 + 3 * 4":         "2 3 4 * +",
		"(2 + 3) * 4":       "2 3 + 4 *",
		"a - b - c":         "a b - c -",
		"8 / 4 / 2":         "8 4 / 2 /",
		"not a and b":       "a not b and",
		"a or b and c":      "a b c and or",
		"-x * 2":            "x - 2 *",
		"1 << 2 + 3":        "1 2 3 + <<",
		"a == 1 or b != 2":  "a 1 == b 2 != or",
		"x & 1 | y ^ 2":     "x 1 & y 2 ^ |",
		"f(1, 2) + obj.n":   "f(1, 2) obj.n +",
		"'a' + 'b'.trim()":  "'a' 'b'.trim() +",
		"((1))":             "1",
		"not not flag":      "flag not not",
		"2 * -(3 + 4)":      "2 3 4 + - *",
		"a < b and b <= c":  "a b < b c <= and",
		"10 % 3 - 1":        "10 3 % 1 -",
		"count >= 0 or ok":  "count 0 >= ok or",
		"x >> 1 & 3":        "x 1 >> 3 &",
		"a + b * c - d / e": "a b c * + d e / -",
	}
	for expr, want := range cases {
		if got := postfixString(t, expr); got != want {
			t.Fatalf("ToPostfix(%q) = %q, want %q", expr, got, want)
		}
	}
}

func TestToPostfixUnbalanced(t *testing.T) {
	for _, expr := range []string{"(1 + 2", "1 + 2)", "((1)"} {
		tokens, err := lexer.Expression(expr)
		if err != nil {
			t.Fatalf("lexer.Expression(%q): %v", expr, err)
		}
		if _, err := ToPostfix(tokens); err == nil {
			t.Fatalf("ToPostfix(%q) expected error", expr)
		}
	}
}

func evalPostfix(t *testing.T, postfix []lexer.Token) float64 {
	t.Helper()
	var stack []float64
	for _, tok := range postfix {
		switch {
		case tok.Kind == lexer.TokenNumber:
			n, err := strconv.ParseFloat(tok.Text, 64)
			if err != nil {
				t.Fatalf("bad number %q", tok.Text)
			}
			stack = append(stack, n)
		case tok.Kind == lexer.TokenNeg:
			stack[len(stack)-1] = -stack[len(stack)-1]
		case tok.Kind == lexer.TokenOperator:
			right, left := stack[len(stack)-1], stack[len(stack)-2]
			stack = append(stack[:len(stack)-2], arith(t, tok.Text, left, right))
		default:
			t.Fatalf("unexpected token %q", tok.Text)
		}
	}
	if len(stack) != 1 {
		t.Fatalf("postfix stack has %d values", len(stack))
	}
	return stack[0]
}

func evalTree(t *testing.T, expr ast.Expression) float64 {
	t.Helper()
	switch node := expr.(type) {
	case *ast.NumberLiteral:
		return node.Value
	case *ast.UnaryExpression:
		return -evalTree(t, node.Operand)
	case *ast.BinaryExpression:
		return arith(t, node.Operator, evalTree(t, node.Left), evalTree(t, node.Right))
	}
	t.Fatalf("unexpected node %s", expr.NodeType())
	return 0
}

func arith(t *testing.T, op string, left, right float64) float64 {
	t.Helper()
	switch op {
	case "+":
		return left + right
	case "-":
		return left - right
	case "*":
		return left * right
	case "/":
		return left / right
	case "%":
		return math.Mod(left, right)
	}
	t.Fatalf("unexpected operator %q", op)
	return 0
}

func TestPostfixMachineMatchesTree(t *testing.T) {
	exprs := []string{
		"2 + 3 * 4",
		"(2 + 3) * 4",
		"100 / 10 / 5",
		"7 - 2 - 1",
		"-3 * (2 - 8) % 5",
		"1.5 * 4 + 10 / 4 - 0.25",
		"((((1 + 2) * 3) - 4) / 5)",
		"2 * -(3 + 4) - -1",
		"9 % 4 * 3 + 12 / 3 / 2",
	}
	for _, expr := range exprs {
		tokens, err := lexer.Expression(expr)
		if err != nil {
			t.Fatalf("lexer.Expression(%q): %v", expr, err)
		}
		postfix, err := ToPostfix(tokens)
		if err != nil {
			t.Fatalf("ToPostfix(%q): %v", expr, err)
		}
		tree, err := New("test").ParseExpression(expr)
		if err != nil {
			t.Fatalf("ParseExpression(%q): %v", expr, err)
		}
		if got, want := evalTree(t, tree), evalPostfix(t, postfix); got != want {
			t.Fatalf("%q: tree = %v, postfix = %v", expr, got, want)
		}
	}
}

func TestParseExpressionValues(t *testing.T) {
	p := New("test")
	expr, err := p.ParseExpression(`'a\tb\n' + "it\'s"`)
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected binary expression, got %T", expr)
	}
	if left := bin.Left.(*ast.TextLiteral).Value; left != "a\tb\n" {
		t.Fatalf("left = %q, want %q", left, "a\tb\n")
	}
	if right := bin.Right.(*ast.TextLiteral).Value; right != "it's" {
		t.Fatalf("right = %q, want %q", right, "it's")
	}

	expr, err = p.ParseExpression("true and flag")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	bin = expr.(*ast.BinaryExpression)
	if lit, ok := bin.Left.(*ast.BooleanLiteral); !ok || !lit.Value {
		t.Fatalf("left = %#v, want true literal", bin.Left)
	}
	if id, ok := bin.Right.(*ast.Identifier); !ok || id.Name != "flag" {
		t.Fatalf("right = %#v, want identifier flag", bin.Right)
	}
}

func TestParseExpressionChains(t *testing.T) {
	expr, err := New("test").ParseExpression("list.get(i + 1).name")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	prop, ok := expr.(*ast.PropertyAccess)
	if !ok || prop.Name != "name" {
		t.Fatalf("expected .name access, got %#v", expr)
	}
	call, ok := prop.Target.(*ast.FunctionCall)
	if !ok || len(call.Arguments) != 1 {
		t.Fatalf("expected call with one argument, got %#v", prop.Target)
	}
	if _, ok := call.Arguments[0].(*ast.BinaryExpression); !ok {
		t.Fatalf("argument = %T, want binary expression", call.Arguments[0])
	}
	get, ok := call.Callee.(*ast.PropertyAccess)
	if !ok || get.Name != "get" {
		t.Fatalf("callee = %#v, want .get", call.Callee)
	}
	if id, ok := get.Target.(*ast.Identifier); !ok || id.Name != "list" {
		t.Fatalf("head = %#v, want list", get.Target)
	}
}

func TestParseExpressionErrors(t *testing.T) {
	for _, expr := range []string{"", "1 +", "a b", "* 2", "'open", "f(1", "x = 1", "while"} {
		if _, err := New("test").ParseExpression(expr); err == nil {
			t.Fatalf("ParseExpression(%q) expected error", expr)
		}
	}
}

func TestIdentifiersAreInterned(t *testing.T) {
	p := New("test")
	a, err := p.ParseExpression("x + x")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	bin := a.(*ast.BinaryExpression)
	if bin.Left != bin.Right {
		t.Fatalf("expected shared identifier node")
	}
	b, err := p.ParseExpression("x")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if b != bin.Left {
		t.Fatalf("expected identifier shared across expressions")
	}
}

func TestChainHeadsUseValueProductions(t *testing.T) {
	cases := []struct {
		expr string
		head func(ast.Expression) bool
	}{
		{"'ab'.length()", func(e ast.Expression) bool {
			lit, ok := e.(*ast.TextLiteral)
			return ok && lit.Value == "ab"
		}},
		{"true.toString()", func(e ast.Expression) bool {
			lit, ok := e.(*ast.BooleanLiteral)
			return ok && lit.Value
		}},
		{"f(g(1))(2)", func(e ast.Expression) bool {
			id, ok := e.(*ast.Identifier)
			return ok && id.Name == "f"
		}},
	}
	for _, tc := range cases {
		expr, err := New("test").ParseExpression(tc.expr)
		if err != nil {
			t.Fatalf("ParseExpression(%q): %v", tc.expr, err)
		}
	walk:
		for {
			switch node := expr.(type) {
			case *ast.FunctionCall:
				expr = node.Callee
			case *ast.PropertyAccess:
				expr = node.Target
			default:
				break walk
			}
		}
		if !tc.head(expr) {
			t.Fatalf("%q: head = %#v", tc.expr, expr)
		}
	}

	expr, err := New("test").ParseExpression("f(g(1))(2)")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	outer := expr.(*ast.FunctionCall)
	inner, ok := outer.Callee.(*ast.FunctionCall)
	if !ok || len(inner.Arguments) != 1 {
		t.Fatalf("callee = %#v, want f(g(1))", outer.Callee)
	}
	if _, ok := inner.Arguments[0].(*ast.FunctionCall); !ok {
		t.Fatalf("argument = %#v, want g(1)", inner.Arguments[0])
	}
}
