package lexer

import (
	"fmt"
	"strings"
)

// TokenKind tags an expression token.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenText
	TokenIdentifier
	// TokenChain is an operand with a call/property suffix chain, such as
	// `f(1, 2)` or `list.get(0).name`.
	TokenChain
	TokenOperator
	TokenNot
	TokenNeg
	TokenLParen
	TokenRParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenText:
		return "text"
	case TokenIdentifier:
		return "identifier"
	case TokenChain:
		return "chain"
	case TokenOperator:
		return "operator"
	case TokenNot:
		return "not"
	case TokenNeg:
		return "neg"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return fmt.Sprintf("token_%d", int(k))
	}
}

// Token is one atomic piece of an infix expression.
type Token struct {
	Kind TokenKind
	Text string
}

// IsOperand reports whether the token stands for a value.
func (t Token) IsOperand() bool {
	switch t.Kind {
	case TokenNumber, TokenText, TokenIdentifier, TokenChain:
		return true
	}
	return false
}

// IsUnary reports whether the token is a prefix operator.
func (t Token) IsUnary() bool {
	return t.Kind == TokenNot || t.Kind == TokenNeg
}

var symbolOperators = []string{"<<", ">>", "==", "!=", "<=", ">=", "<", ">", "+", "-", "*", "/", "%", "&", "|", "^"}

// Expression splits one expression into its flat infix token sequence.
func Expression(expr string) ([]Token, error) {
	var tokens []Token
	rest := strings.TrimSpace(expr)
	for rest != "" {
		tok, n, err := nextToken(rest, tokens)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, expr)
		}
		tokens = append(tokens, tok)
		rest = strings.TrimSpace(rest[n:])
	}
	return tokens, nil
}

func nextToken(s string, prev []Token) (Token, int, error) {
	c := s[0]
	switch c {
	case '(':
		return Token{Kind: TokenLParen, Text: "("}, 1, nil
	case ')':
		return Token{Kind: TokenRParen, Text: ")"}, 1, nil
	case '\'', '"':
		n, err := scanQuoted(s)
		if err != nil {
			return Token{}, 0, err
		}
		if m := scanSuffixes(s, n); m > n {
			return Token{Kind: TokenChain, Text: s[:m]}, m, nil
		}
		return Token{Kind: TokenText, Text: s[:n]}, n, nil
	}
	for _, op := range symbolOperators {
		if strings.HasPrefix(s, op) {
			if op == "-" && operandExpected(prev) {
				return Token{Kind: TokenNeg, Text: "-"}, 1, nil
			}
			return Token{Kind: TokenOperator, Text: op}, len(op), nil
		}
	}
	if isDigit(c) {
		n := 0
		for n < len(s) && isDigit(s[n]) {
			n++
		}
		if n+1 < len(s) && s[n] == '.' && isDigit(s[n+1]) {
			n++
			for n < len(s) && isDigit(s[n]) {
				n++
			}
		}
		return Token{Kind: TokenNumber, Text: s[:n]}, n, nil
	}
	if isIdentStart(c) {
		n := 0
		for n < len(s) && isIdentPart(s[n]) {
			n++
		}
		switch word := s[:n]; word {
		case "and", "or":
			return Token{Kind: TokenOperator, Text: word}, n, nil
		case "not":
			return Token{Kind: TokenNot, Text: word}, n, nil
		}
		if m := scanSuffixes(s, n); m > n {
			return Token{Kind: TokenChain, Text: s[:m]}, m, nil
		}
		return Token{Kind: TokenIdentifier, Text: s[:n]}, n, nil
	}
	return Token{}, 0, fmt.Errorf("unexpected character %q", c)
}

func operandExpected(prev []Token) bool {
	if len(prev) == 0 {
		return true
	}
	last := prev[len(prev)-1]
	return last.Kind == TokenOperator || last.Kind == TokenLParen || last.IsUnary()
}

// scanQuoted returns the length of the quoted literal at the start of s.
func scanQuoted(s string) (int, error) {
	quote := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated text literal")
}

// scanSuffixes extends an operand ending at from over `.name` and balanced
// `( ... )` suffixes and returns the new end offset.
func scanSuffixes(s string, from int) int {
	i := from
	for i < len(s) {
		switch {
		case s[i] == '.' && i+1 < len(s) && isIdentStart(s[i+1]):
			i++
			for i < len(s) && isIdentPart(s[i]) {
				i++
			}
		case s[i] == '(':
			end, ok := matchParen(s, i)
			if !ok {
				return i
			}
			i = end + 1
		default:
			return i
		}
	}
	return i
}

// matchParen returns the index of the parenthesis closing the one at open.
func matchParen(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'', '"':
			n, err := scanQuoted(s[i:])
			if err != nil {
				return 0, false
			}
			i += n - 1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// Segment is one piece of an operand chain: the head operand, a `.name`
// property, or a `( ... )` argument list.
type Segment struct {
	Name   string
	Args   []string
	IsCall bool
}

// Chain splits a chain token into its head operand followed by its suffixes.
func Chain(text string) ([]Segment, error) {
	var head int
	switch {
	case text == "":
		return nil, fmt.Errorf("empty operand")
	case text[0] == '\'' || text[0] == '"':
		n, err := scanQuoted(text)
		if err != nil {
			return nil, err
		}
		head = n
	case isIdentStart(text[0]):
		for head < len(text) && isIdentPart(text[head]) {
			head++
		}
	default:
		return nil, fmt.Errorf("unexpected operand %q", text)
	}
	segments := []Segment{{Name: text[:head]}}
	i := head
	for i < len(text) {
		switch text[i] {
		case '.':
			start := i + 1
			i = start
			for i < len(text) && isIdentPart(text[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("missing property name in %q", text)
			}
			segments = append(segments, Segment{Name: text[start:i]})
		case '(':
			end, ok := matchParen(text, i)
			if !ok {
				return nil, fmt.Errorf("unbalanced parentheses in %q", text)
			}
			segments = append(segments, Segment{Args: SplitArguments(text[i+1 : end]), IsCall: true})
			i = end + 1
		default:
			return nil, fmt.Errorf("unexpected %q in %q", text[i], text)
		}
	}
	return segments, nil
}

// SplitArguments splits an argument list on top-level commas.
func SplitArguments(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '\'', '"':
			if n, err := scanQuoted(list[i:]); err == nil {
				i += n - 1
			}
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(list[start:]))
}
