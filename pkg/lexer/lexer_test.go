package lexer

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenizeClassifiesLines(t *testing.T) {
	src := strings.Join([]string{
		"# comment",
		"",
		"x = 1",
		"nonlocal y += 2",
		"obj.field <<= 3",
		"if x == 1:",
		"  println(x)",
		"end",
		"count == 2",
	}, "\r\n")

	lines := Tokenize(src)
	want := []struct {
		kind    LineKind
		keyword string
		number  int
		tokens  []string
	}{
		{LineAssign, "", 3, []string{"x", "=", "1"}},
		{LineAssign, "nonlocal", 4, []string{"y", "+=", "2"}},
		{LineAssign, "", 5, []string{"obj.field", "<<=", "3"}},
		{LineKeyword, "if", 6, []string{"if", "x == 1:"}},
		{LineCall, "println", 7, []string{"println", "(x)"}},
		{LineEmpty, "", 8, nil},
		{LineCall, "count", 9, []string{"count", "== 2"}},
	}
	if len(lines) != len(want) {
		t.Fatalf("Tokenize returned %d lines, want %d: %+v", len(lines), len(want), lines)
	}
	for i, w := range want {
		got := lines[i]
		if got.Kind != w.kind || got.Keyword != w.keyword || got.Number != w.number {
			t.Fatalf("line %d = %s %q #%d, want %s %q #%d", i, got.Kind, got.Keyword, got.Number, w.kind, w.keyword, w.number)
		}
		if !reflect.DeepEqual(got.Tokens, w.tokens) {
			t.Fatalf("line %d tokens = %q, want %q", i, got.Tokens, w.tokens)
		}
	}
	if !lines[3].IsBlockOpener() || lines[3].IsTerminator() {
		t.Fatalf("if line should open a block")
	}
	if !lines[5].IsTerminator() || lines[4].IsTerminator() {
		t.Fatalf("only end should terminate")
	}
}

func TestTokenizeKeywordsAreNotAssignments(t *testing.T) {
	for _, text := range []string{"return x = 1", "throw e", "else:", "catch(e):", "nonlocal"} {
		line := Tokenize(text)[0]
		if line.Kind == LineAssign {
			t.Fatalf("%q classified as assignment", text)
		}
	}
	if line := Tokenize("else:")[0]; !line.IsTerminator() {
		t.Fatalf("else should terminate the preceding chain")
	}
	if line := Tokenize("nonlocal.x = 1")[0]; line.Kind != LineAssign || line.Keyword != "" || line.Tokens[0] != "nonlocal.x" {
		t.Fatalf("nonlocal.x = 1 classified as %+v", line)
	}
}

func tokenKinds(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Kind.String()
	}
	return strings.Join(parts, " ")
}

func TestExpressionTokens(t *testing.T) {
	cases := map[string]string{
		"-2 * (x + f(1, 'a)')) - y.len": "neg number operator ( identifier operator chain ) operator chain",
		"not android and b":             "not identifier operator identifier",
		"3.25 >= 1 << 2":                "number operator number operator number",
		`"it\"s" + 'x'.length`:          "text operator chain",
		"a--b":                          "identifier operator neg identifier",
	}
	for expr, want := range cases {
		tokens, err := Expression(expr)
		if err != nil {
			t.Fatalf("Expression(%q): %v", expr, err)
		}
		if got := tokenKinds(tokens); got != want {
			t.Fatalf("Expression(%q) kinds = %q, want %q", expr, got, want)
		}
	}

	tokens, err := Expression("f(1, 'a)')")
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Text != "f(1, 'a)')" {
		t.Fatalf("tokens = %+v", tokens)
	}
}

func TestExpressionErrors(t *testing.T) {
	for _, expr := range []string{"'abc", "a $ b", `"x\"`} {
		if _, err := Expression(expr); err == nil {
			t.Fatalf("Expression(%q) expected error", expr)
		}
	}
}

func TestChainSegments(t *testing.T) {
	segments, err := Chain("list.get(i + 1, 'x,y').name")
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	want := []Segment{
		{Name: "list"},
		{Name: "get"},
		{Args: []string{"i + 1", "'x,y'"}, IsCall: true},
		{Name: "name"},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Fatalf("Chain = %+v, want %+v", segments, want)
	}

	segments, err = Chain("'hi'.length")
	if err != nil || len(segments) != 2 || segments[0].Name != "'hi'" || segments[1].Name != "length" {
		t.Fatalf("Chain('hi'.length) = %+v, %v", segments, err)
	}

	segments, err = Chain("f()")
	if err != nil || len(segments) != 2 || !segments[1].IsCall || segments[1].Args != nil {
		t.Fatalf("Chain(f()) = %+v, %v", segments, err)
	}

	for _, text := range []string{"", "a.", "f(1", "a[0]"} {
		if _, err := Chain(text); err == nil {
			t.Fatalf("Chain(%q) expected error", text)
		}
	}
}

func TestSplitArguments(t *testing.T) {
	got := SplitArguments("a, f(b, c), 'd,e', \"(\"")
	want := []string{"a", "f(b, c)", "'d,e'", `"("`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitArguments = %q, want %q", got, want)
	}
	if got := SplitArguments("  "); got != nil {
		t.Fatalf("SplitArguments(blank) = %q, want nil", got)
	}
}
