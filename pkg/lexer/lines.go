// Package lexer splits toy source text into classified statement lines and
// splits single expressions into flat infix token sequences.
package lexer

import (
	"strings"
)

// LineKind tags a classified source line.
type LineKind int

const (
	// LineEmpty is the `end` terminator of a block.
	LineEmpty LineKind = iota
	// LineAssign is `name = expr`, `a.b op= expr` or `nonlocal name = expr`.
	LineAssign
	// LineKeyword starts with a statement keyword (if, while, def, ...).
	LineKeyword
	// LineCall is any other line; the statement parser decides whether it
	// is a well-formed call statement.
	LineCall
)

func (k LineKind) String() string {
	switch k {
	case LineEmpty:
		return "empty"
	case LineAssign:
		return "assign"
	case LineKeyword:
		return "command"
	case LineCall:
		return "funcall"
	default:
		return "unknown"
	}
}

// Line is one classified, non-blank source line.
//
// For LineAssign the tokens are [target, operator, value]; Keyword holds
// "nonlocal" when the assignment carried that prefix. For LineKeyword and
// LineCall the tokens are [word, rest-of-line].
type Line struct {
	Kind    LineKind
	Keyword string
	Number  int
	Text    string
	Tokens  []string
}

// Is reports whether the line is a keyword line for the given word.
func (l Line) Is(keyword string) bool {
	return l.Kind == LineKeyword && l.Keyword == keyword
}

// IsTerminator reports whether the line ends the statement chain of the block
// it belongs to.
func (l Line) IsTerminator() bool {
	if l.Kind == LineEmpty {
		return true
	}
	if l.Kind != LineKeyword {
		return false
	}
	switch l.Keyword {
	case "else", "catch", "case", "default":
		return true
	}
	return false
}

// IsBlockOpener reports whether the line opens a block closed by `end`.
func (l Line) IsBlockOpener() bool {
	if l.Kind != LineKeyword {
		return false
	}
	switch l.Keyword {
	case "if", "while", "def", "class", "switch", "try":
		return true
	}
	return false
}

var keywords = map[string]struct{}{
	"if":      {},
	"else":    {},
	"while":   {},
	"def":     {},
	"class":   {},
	"return":  {},
	"throw":   {},
	"break":   {},
	"try":     {},
	"catch":   {},
	"switch":  {},
	"case":    {},
	"default": {},
	"import":  {},
	"from":    {},
}

// IsKeyword reports whether word is reserved as a statement keyword.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Tokenize splits source into classified lines. Blank lines and `#` comment
// lines are dropped; line numbers refer to the physical source line.
func Tokenize(src string) []Line {
	raw := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for idx, text := range raw {
		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, classify(text, idx+1))
	}
	return lines
}

func classify(text string, number int) Line {
	if line, ok := assignLine(text, number); ok {
		return line
	}
	if text == "end" {
		return Line{Kind: LineEmpty, Number: number, Text: text}
	}
	word, rest := leadingWord(text)
	if IsKeyword(word) {
		return Line{Kind: LineKeyword, Keyword: word, Number: number, Text: text, Tokens: []string{word, rest}}
	}
	return Line{Kind: LineCall, Keyword: word, Number: number, Text: text, Tokens: []string{word, rest}}
}

func leadingWord(text string) (string, string) {
	end := 0
	for end < len(text) && isIdentPart(text[end]) {
		end++
	}
	return text[:end], strings.TrimSpace(text[end:])
}

var assignOperators = []string{"<<=", ">>=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "="}

// assignLine matches `[nonlocal] target op= value`, where target is a name
// optionally followed by `.name` segments.
func assignLine(text string, number int) (Line, bool) {
	if word, rest := leadingWord(text); word == "nonlocal" && len(text) > len(word) && text[len(word)] == ' ' {
		if line, ok := matchAssign(text, rest, word, number); ok {
			return line, true
		}
	}
	return matchAssign(text, text, "", number)
}

func matchAssign(text, body, keyword string, number int) (Line, bool) {
	i := 0
	for {
		start := i
		if i >= len(body) || !isIdentStart(body[i]) {
			return Line{}, false
		}
		for i < len(body) && isIdentPart(body[i]) {
			i++
		}
		if start == 0 && IsKeyword(body[:i]) {
			return Line{}, false
		}
		if i < len(body) && body[i] == '.' {
			i++
			continue
		}
		break
	}
	target := body[:i]
	rest := strings.TrimLeft(body[i:], " \t")
	for _, op := range assignOperators {
		if !strings.HasPrefix(rest, op) {
			continue
		}
		value := rest[len(op):]
		if op == "=" && strings.HasPrefix(value, "=") {
			return Line{}, false
		}
		if keyword == "nonlocal" && strings.Contains(target, ".") {
			return Line{}, false
		}
		return Line{
			Kind:    LineAssign,
			Keyword: keyword,
			Number:  number,
			Text:    text,
			Tokens:  []string{target, op, strings.TrimSpace(value)},
		}, true
	}
	return Line{}, false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
