package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/lexer"
)

// Priority returns the binding strength of an operator token; larger binds
// tighter. Parentheses and operands report -1.
func Priority(tok lexer.Token) int {
	switch tok.Kind {
	case lexer.TokenNot, lexer.TokenNeg:
		return 10
	case lexer.TokenOperator:
	default:
		return -1
	}
	switch tok.Text {
	case "*", "/", "%":
		return 9
	case "+", "-":
		return 8
	case "<<", ">>":
		return 7
	case "&":
		return 6
	case "^":
		return 5
	case "|":
		return 4
	case "==", "!=", "<", "<=", ">", ">=":
		return 3
	case "and":
		return 2
	case "or":
		return 1
	}
	return 0
}

// ToPostfix reorders an infix token sequence into postfix order with the
// shunting-yard algorithm. Binary operators are left-associative; prefix
// operators never pop on push.
func ToPostfix(tokens []lexer.Token) ([]lexer.Token, error) {
	var (
		stack  []lexer.Token
		output = make([]lexer.Token, 0, len(tokens))
	)
	for _, tok := range tokens {
		switch {
		case tok.IsOperand():
			output = append(output, tok)
		case tok.Kind == lexer.TokenLParen, tok.IsUnary():
			stack = append(stack, tok)
		case tok.Kind == lexer.TokenRParen:
			for {
				if len(stack) == 0 {
					return nil, fmt.Errorf("unbalanced ')'")
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Kind == lexer.TokenLParen {
					break
				}
				output = append(output, top)
			}
		case tok.Kind == lexer.TokenOperator:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Kind == lexer.TokenLParen || Priority(top) < Priority(tok) {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		default:
			return nil, fmt.Errorf("unexpected token %q", tok.Text)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Kind == lexer.TokenLParen {
			return nil, fmt.Errorf("unbalanced '('")
		}
		output = append(output, top)
	}
	return output, nil
}

// ParseExpression parses one infix expression.
func (p *Parser) ParseExpression(expr string) (ast.Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("missing expression")
	}
	tokens, err := lexer.Expression(expr)
	if err != nil {
		return nil, err
	}
	postfix, err := ToPostfix(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w in %q", err, expr)
	}
	return p.buildExpression(postfix, expr)
}

// buildExpression folds a postfix token stream into a tree with an explicit
// operand stack.
func (p *Parser) buildExpression(postfix []lexer.Token, expr string) (ast.Expression, error) {
	var stack []ast.Expression
	for _, tok := range postfix {
		switch {
		case tok.Kind == lexer.TokenOperator:
			if len(stack) < 2 {
				return nil, fmt.Errorf("missing operand for %q in %q", tok.Text, expr)
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = append(stack[:len(stack)-2], ast.NewBinaryExpression(tok.Text, left, right))
		case tok.IsUnary():
			if len(stack) < 1 {
				return nil, fmt.Errorf("missing operand for %q in %q", tok.Text, expr)
			}
			operand := stack[len(stack)-1]
			stack[len(stack)-1] = ast.NewUnaryExpression(tok.Text, operand)
		default:
			value, err := p.parseValue(tok)
			if err != nil {
				return nil, err
			}
			stack = append(stack, value)
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("malformed expression %q", expr)
	}
	return stack[0], nil
}

type valueParser func(p *Parser, tok lexer.Token) (ast.Expression, error)

// valueParsers are tried in order; each returns a nil expression on a miss.
// parseChain recurses into parseValue, so the table is filled in init.
var valueParsers []valueParser

func init() {
	valueParsers = []valueParser{
		parseNumber,
		parseVariable,
		parseBoolean,
		parseText,
		parseChain,
	}
}

func (p *Parser) parseValue(tok lexer.Token) (ast.Expression, error) {
	for _, parse := range valueParsers {
		expr, err := parse(p, tok)
		if err != nil {
			return nil, err
		}
		if expr != nil {
			return expr, nil
		}
	}
	return nil, fmt.Errorf("unrecognised value %q", tok.Text)
}

func parseNumber(_ *Parser, tok lexer.Token) (ast.Expression, error) {
	if tok.Kind != lexer.TokenNumber {
		return nil, nil
	}
	n, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", tok.Text)
	}
	return ast.NewNumberLiteral(n), nil
}

func parseVariable(p *Parser, tok lexer.Token) (ast.Expression, error) {
	if tok.Kind != lexer.TokenIdentifier || tok.Text == "true" || tok.Text == "false" {
		return nil, nil
	}
	if lexer.IsKeyword(tok.Text) {
		return nil, fmt.Errorf("unexpected keyword %q", tok.Text)
	}
	return p.identifier(tok.Text), nil
}

func parseBoolean(_ *Parser, tok lexer.Token) (ast.Expression, error) {
	if tok.Kind != lexer.TokenIdentifier {
		return nil, nil
	}
	switch tok.Text {
	case "true":
		return ast.NewBooleanLiteral(true), nil
	case "false":
		return ast.NewBooleanLiteral(false), nil
	}
	return nil, nil
}

func parseText(_ *Parser, tok lexer.Token) (ast.Expression, error) {
	if tok.Kind != lexer.TokenText {
		return nil, nil
	}
	return ast.NewTextLiteral(unescape(tok.Text[1 : len(tok.Text)-1])), nil
}

func parseChain(p *Parser, tok lexer.Token) (ast.Expression, error) {
	if tok.Kind != lexer.TokenChain {
		return nil, nil
	}
	segments, err := lexer.Chain(tok.Text)
	if err != nil {
		return nil, err
	}
	headTokens, err := lexer.Expression(segments[0].Name)
	if err != nil || len(headTokens) != 1 {
		return nil, fmt.Errorf("invalid operand %q", segments[0].Name)
	}
	current, err := p.parseValue(headTokens[0])
	if err != nil {
		return nil, err
	}
	for _, seg := range segments[1:] {
		if !seg.IsCall {
			current = ast.NewPropertyAccess(current, seg.Name)
			continue
		}
		args := make([]ast.Expression, 0, len(seg.Args))
		for _, raw := range seg.Args {
			arg, err := p.ParseExpression(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		current = ast.NewFunctionCall(current, args)
	}
	return current, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
