package parser

import (
	"errors"
	"fmt"

	"github.com/pingf/toy-lang/pkg/lexer"
)

// ParseError is a syntax failure. It names the offending line.
type ParseError struct {
	Message string
	File    string
	Line    int
	Source  string
	// Incomplete marks input that ended inside an open block; interactive
	// readers use it to ask for more lines.
	Incomplete bool
}

func (e *ParseError) Error() string {
	location := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		location = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Source == "" {
		return fmt.Sprintf("parser: %s: %s", location, e.Message)
	}
	return fmt.Sprintf("parser: %s: %s: %s", location, e.Message, e.Source)
}

// IsIncomplete reports whether err is a syntax failure caused by input that
// ended before every block was closed.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr) && parseErr.Incomplete
}

func (p *Parser) syntaxError(line lexer.Line, format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		File:    p.file,
		Line:    line.Number,
		Source:  line.Text,
	}
}

func (p *Parser) incompleteError(line lexer.Line, format string, args ...any) *ParseError {
	err := p.syntaxError(line, format, args...)
	err.Incomplete = true
	return err
}

// wrapLineError attaches line information to an expression-level failure.
func (p *Parser) wrapLineError(line lexer.Line, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if parseErr.Line == 0 {
			parseErr.Line = line.Number
			parseErr.File = p.file
			parseErr.Source = line.Text
		}
		return parseErr
	}
	return p.syntaxError(line, "%s", err.Error())
}
