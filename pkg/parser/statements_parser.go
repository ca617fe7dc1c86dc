package parser

import (
	"path"
	"strings"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/lexer"
)

type link struct {
	stmt ast.Statement
	line lexer.Line
	span int
}

// parseSequence parses lines up to the first terminator of the current level
// into a right-leaning Sequence chain. Continuations are collected in a loop
// and linked back to front, so parse depth follows block nesting only.
func (p *Parser) parseSequence(lines []lexer.Line) (ast.Statement, error) {
	var links []link
	for len(lines) > 0 && !lines[0].IsTerminator() {
		stmt, rest, err := p.parseStatement(lines)
		if err != nil {
			return nil, err
		}
		links = append(links, link{stmt: stmt, line: lines[0], span: len(lines) - len(rest)})
		lines = rest
	}
	return p.chain(links), nil
}

func (p *Parser) chain(links []link) ast.Statement {
	chain := ast.Empty
	for i := len(links) - 1; i >= 0; i-- {
		l := links[i]
		pos := ast.Position{File: p.file, Line: l.line.Number}
		chain = ast.NewSequence(l.stmt, chain, pos, l.line.Text, l.span)
	}
	return chain
}

// parseStatement applies the statement productions in priority order to the
// first line and returns the statement with the lines that follow it.
func (p *Parser) parseStatement(lines []lexer.Line) (ast.Statement, []lexer.Line, error) {
	line, rest := lines[0], lines[1:]
	switch {
	case line.Kind == lexer.LineAssign:
		stmt, err := p.parseAssignment(line)
		return stmt, rest, err
	case line.Kind == lexer.LineCall:
		stmt, err := p.parseCallStatement(line)
		return stmt, rest, err
	case line.Is("def"):
		return p.parseDef(line, rest)
	case line.Is("return"):
		stmt, err := p.parseReturn(line)
		return stmt, rest, err
	case line.Is("if"):
		return p.parseIf(line, rest)
	case line.Is("while"):
		return p.parseWhile(line, rest)
	case line.Is("class"):
		return p.parseClass(line, rest)
	case line.Is("switch"):
		return p.parseSwitch(line, rest)
	case line.Is("try"):
		return p.parseTry(line, rest)
	case line.Is("throw"):
		stmt, err := p.parseThrow(line)
		return stmt, rest, err
	case line.Is("break"):
		if line.Tokens[1] != "" {
			return nil, nil, p.syntaxError(line, "unexpected text after 'break'")
		}
		return ast.NewBreakStatement(), rest, nil
	case line.Is("import"), line.Is("from"):
		stmt, err := p.parseImport(line)
		return stmt, rest, err
	}
	return nil, nil, p.syntaxError(line, "unrecognised statement")
}

// blockEnd returns the index in rest of the `end` closing the block opened by
// the line just before rest. Nested openers raise the depth and `end` lowers
// it; else/catch/case/default leave it unchanged.
func blockEnd(rest []lexer.Line) (int, bool) {
	depth := 1
	for i, line := range rest {
		switch {
		case line.IsBlockOpener():
			depth++
		case line.Kind == lexer.LineEmpty:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// block splits rest into the lines inside the block opened by opener and the
// lines after its `end`.
func (p *Parser) block(opener lexer.Line, rest []lexer.Line) ([]lexer.Line, []lexer.Line, error) {
	end, ok := blockEnd(rest)
	if !ok {
		return nil, nil, p.incompleteError(opener, "missing 'end' for '%s'", opener.Keyword)
	}
	return rest[:end], rest[end+1:], nil
}

// parseBody parses lines as one statement chain that must consume all of
// them.
func (p *Parser) parseBody(lines []lexer.Line) (ast.Statement, error) {
	body, err := p.parseSequence(lines)
	if err != nil {
		return nil, err
	}
	if n := ast.ChainLines(body); n < len(lines) {
		return nil, p.syntaxError(lines[n], "unexpected '%s'", lineWord(lines[n]))
	}
	return body, nil
}

func (p *Parser) parseAssignment(line lexer.Line) (ast.Statement, error) {
	target, op, valueText := line.Tokens[0], line.Tokens[1], line.Tokens[2]
	value, err := p.ParseExpression(valueText)
	if err != nil {
		return nil, p.wrapLineError(line, err)
	}
	dot := strings.LastIndexByte(target, '.')
	if dot < 0 {
		return ast.NewAssignment(p.identifier(target), op, value, line.Keyword == "nonlocal"), nil
	}
	object, err := p.ParseExpression(target[:dot])
	if err != nil {
		return nil, p.wrapLineError(line, err)
	}
	return ast.NewPropertyAssignment(object, target[dot+1:], op, value), nil
}

func (p *Parser) parseCallStatement(line lexer.Line) (ast.Statement, error) {
	expr, err := p.ParseExpression(line.Text)
	if err != nil {
		return nil, p.wrapLineError(line, err)
	}
	if _, ok := expr.(*ast.FunctionCall); !ok {
		return nil, p.syntaxError(line, "expected a statement")
	}
	return ast.NewExpressionStatement(expr), nil
}

func (p *Parser) parseReturn(line lexer.Line) (ast.Statement, error) {
	if line.Tokens[1] == "" {
		return ast.NewReturnStatement(nil), nil
	}
	arg, err := p.ParseExpression(line.Tokens[1])
	if err != nil {
		return nil, p.wrapLineError(line, err)
	}
	return ast.NewReturnStatement(arg), nil
}

func (p *Parser) parseThrow(line lexer.Line) (ast.Statement, error) {
	if line.Tokens[1] == "" {
		return nil, p.syntaxError(line, "'throw' requires a value")
	}
	expr, err := p.ParseExpression(line.Tokens[1])
	if err != nil {
		return nil, p.wrapLineError(line, err)
	}
	return ast.NewThrowStatement(expr), nil
}

func (p *Parser) condition(line lexer.Line) (ast.Expression, error) {
	text := header(line)
	if text == "" {
		return nil, p.syntaxError(line, "'%s' requires a condition", line.Keyword)
	}
	cond, err := p.ParseExpression(text)
	if err != nil {
		return nil, p.wrapLineError(line, err)
	}
	return cond, nil
}

func (p *Parser) parseIf(line lexer.Line, rest []lexer.Line) (ast.Statement, []lexer.Line, error) {
	cond, err := p.condition(line)
	if err != nil {
		return nil, nil, err
	}
	inner, after, err := p.block(line, rest)
	if err != nil {
		return nil, nil, err
	}
	then, err := p.parseSequence(inner)
	if err != nil {
		return nil, nil, err
	}
	otherwise := ast.Empty
	// The true branch stops at its first terminator; the index of that
	// terminator in the block lines tells whether an else branch follows.
	if idx := ast.ChainLines(then); idx < len(inner) {
		term := inner[idx]
		if !term.Is("else") {
			return nil, nil, p.syntaxError(term, "unexpected '%s' in 'if'", lineWord(term))
		}
		if header(term) != "" {
			return nil, nil, p.syntaxError(term, "unexpected text after 'else'")
		}
		if otherwise, err = p.parseBody(inner[idx+1:]); err != nil {
			return nil, nil, err
		}
	}
	return ast.NewIfStatement(cond, then, otherwise), after, nil
}

func (p *Parser) parseWhile(line lexer.Line, rest []lexer.Line) (ast.Statement, []lexer.Line, error) {
	cond, err := p.condition(line)
	if err != nil {
		return nil, nil, err
	}
	inner, after, err := p.block(line, rest)
	if err != nil {
		return nil, nil, err
	}
	body, err := p.parseBody(inner)
	if err != nil {
		return nil, nil, err
	}
	return ast.NewWhileLoop(cond, body), after, nil
}

func (p *Parser) parseDef(line lexer.Line, rest []lexer.Line) (ast.Statement, []lexer.Line, error) {
	name, params, hasParens, err := p.signature(line)
	if err != nil {
		return nil, nil, err
	}
	if !hasParens {
		return nil, nil, p.syntaxError(line, "'def' requires a parameter list")
	}
	inner, after, err := p.block(line, rest)
	if err != nil {
		return nil, nil, err
	}
	body, err := p.parseBody(inner)
	if err != nil {
		return nil, nil, err
	}
	fn := ast.NewFunctionLiteral(name, params, body)
	return ast.NewAssignment(p.identifier(name), "=", fn, false), after, nil
}

func (p *Parser) parseClass(line lexer.Line, rest []lexer.Line) (ast.Statement, []lexer.Line, error) {
	name, parents, _, err := p.signature(line)
	if err != nil {
		return nil, nil, err
	}
	if len(parents) == 0 {
		parents = []string{"Object"}
	}
	inner, after, err := p.block(line, rest)
	if err != nil {
		return nil, nil, err
	}
	body, err := p.parseBody(inner)
	if err != nil {
		return nil, nil, err
	}
	var (
		methods []*ast.FunctionLiteral
		static  []link
	)
	ast.Walk(body, func(seq *ast.Sequence) bool {
		if fn := methodDefinition(seq.First); fn != nil {
			methods = append(methods, fn)
			return true
		}
		static = append(static, link{
			stmt: seq.First,
			line: lexer.Line{Number: seq.Pos.Line, Text: seq.Source},
			span: seq.Lines,
		})
		return true
	})
	class := ast.NewClassLiteral(name, parents, p.chain(static), methods)
	return ast.NewAssignment(p.identifier(name), "=", class, false), after, nil
}

// methodDefinition returns the function literal of a lowered `def` statement.
func methodDefinition(stmt ast.Statement) *ast.FunctionLiteral {
	assign, ok := stmt.(*ast.Assignment)
	if !ok || assign.Operator != "=" || assign.Nonlocal {
		return nil
	}
	fn, ok := assign.Value.(*ast.FunctionLiteral)
	if !ok || fn.Name != assign.Target.Name {
		return nil
	}
	return fn
}

func (p *Parser) parseTry(line lexer.Line, rest []lexer.Line) (ast.Statement, []lexer.Line, error) {
	if header(line) != "" {
		return nil, nil, p.syntaxError(line, "unexpected text after 'try'")
	}
	inner, after, err := p.block(line, rest)
	if err != nil {
		return nil, nil, err
	}
	body, err := p.parseSequence(inner)
	if err != nil {
		return nil, nil, err
	}
	idx := ast.ChainLines(body)
	if idx == len(inner) || !inner[idx].Is("catch") {
		at := line
		if idx < len(inner) {
			at = inner[idx]
		}
		return nil, nil, p.syntaxError(at, "'try' requires a 'catch'")
	}
	catchLine := inner[idx]
	varName := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(header(catchLine), "("), ")"))
	if !isIdentifier(varName) {
		return nil, nil, p.syntaxError(catchLine, "'catch' requires a variable name")
	}
	handler, err := p.parseBody(inner[idx+1:])
	if err != nil {
		return nil, nil, err
	}
	return ast.NewTryStatement(body, p.identifier(varName), handler), after, nil
}

func (p *Parser) parseSwitch(line lexer.Line, rest []lexer.Line) (ast.Statement, []lexer.Line, error) {
	value, err := p.condition(line)
	if err != nil {
		return nil, nil, err
	}
	inner, after, err := p.block(line, rest)
	if err != nil {
		return nil, nil, err
	}
	var (
		cases      []ast.SwitchCase
		def        = ast.Empty
		hasDefault bool
	)
	for i := 0; i < len(inner); {
		term := inner[i]
		if hasDefault || !(term.Is("case") || term.Is("default")) {
			return nil, nil, p.syntaxError(term, "unexpected '%s' in 'switch'", lineWord(term))
		}
		body, err := p.parseSequence(inner[i+1:])
		if err != nil {
			return nil, nil, err
		}
		if term.Is("default") {
			if header(term) != "" {
				return nil, nil, p.syntaxError(term, "unexpected text after 'default'")
			}
			def, hasDefault = body, true
		} else {
			values, err := p.caseValues(term)
			if err != nil {
				return nil, nil, err
			}
			cases = append(cases, ast.SwitchCase{Values: values, Body: body})
		}
		i += 1 + ast.ChainLines(body)
	}
	return ast.NewSwitchStatement(value, cases, def), after, nil
}

func (p *Parser) caseValues(line lexer.Line) ([]ast.Expression, error) {
	raw := lexer.SplitArguments(header(line))
	if len(raw) == 0 {
		return nil, p.syntaxError(line, "'case' requires a value")
	}
	values := make([]ast.Expression, 0, len(raw))
	for _, text := range raw {
		value, err := p.ParseExpression(text)
		if err != nil {
			return nil, p.wrapLineError(line, err)
		}
		values = append(values, value)
	}
	return values, nil
}

// parseImport handles `import 'path' [as name]` and
// `from 'path' import a, b`.
func (p *Parser) parseImport(line lexer.Line) (ast.Statement, error) {
	modulePath, rest, err := p.quotedPath(line, line.Tokens[1])
	if err != nil {
		return nil, err
	}
	if line.Is("from") {
		names, ok := strings.CutPrefix(rest, "import ")
		if !ok {
			return nil, p.syntaxError(line, "expected 'import' after module path")
		}
		var list []string
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if !isIdentifier(name) {
				return nil, p.syntaxError(line, "invalid import name %q", name)
			}
			list = append(list, name)
		}
		return ast.NewImportStatement(modulePath, "", list), nil
	}
	alias := strings.TrimSuffix(path.Base(modulePath), path.Ext(modulePath))
	if rest != "" {
		name, ok := strings.CutPrefix(rest, "as ")
		if !ok {
			return nil, p.syntaxError(line, "expected 'as' after module path")
		}
		alias = strings.TrimSpace(name)
	}
	if !isIdentifier(alias) {
		return nil, p.syntaxError(line, "invalid module name %q", alias)
	}
	return ast.NewImportStatement(modulePath, alias, nil), nil
}

func (p *Parser) quotedPath(line lexer.Line, text string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" || (text[0] != '\'' && text[0] != '"') {
		return "", "", p.syntaxError(line, "expected a quoted module path")
	}
	end := -1
	for i := 1; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if text[i] == text[0] {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", p.syntaxError(line, "unterminated module path")
	}
	modulePath := unescape(text[1:end])
	if modulePath == "" {
		return "", "", p.syntaxError(line, "empty module path")
	}
	return modulePath, strings.TrimSpace(text[end+1:]), nil
}

// signature parses `name`, `name:` or `name(a, b):` from a def or class
// line.
func (p *Parser) signature(line lexer.Line) (string, []string, bool, error) {
	text := header(line)
	open := strings.IndexByte(text, '(')
	name := text
	if open >= 0 {
		name = strings.TrimSpace(text[:open])
	}
	if !isIdentifier(name) {
		return "", nil, false, p.syntaxError(line, "invalid name %q", name)
	}
	if open < 0 {
		return name, nil, false, nil
	}
	if !strings.HasSuffix(text, ")") {
		return "", nil, false, p.syntaxError(line, "unbalanced parentheses")
	}
	var list []string
	for _, item := range lexer.SplitArguments(text[open+1 : len(text)-1]) {
		if !isIdentifier(item) {
			return "", nil, false, p.syntaxError(line, "invalid name %q", item)
		}
		list = append(list, item)
	}
	return name, list, true, nil
}

// header returns the rest of a keyword line without its trailing colon.
func header(line lexer.Line) string {
	if len(line.Tokens) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(line.Tokens[1], ":"))
}

func lineWord(line lexer.Line) string {
	if line.Kind == lexer.LineEmpty || len(line.Tokens) == 0 {
		return "end"
	}
	return line.Tokens[0]
}

func isIdentifier(s string) bool {
	if s == "" || lexer.IsKeyword(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}
