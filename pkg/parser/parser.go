// Package parser turns classified toy source lines into an AST.
package parser

import (
	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/lexer"
)

// Parser converts one source file. Identifier nodes are interned per parser.
type Parser struct {
	file        string
	identifiers map[string]*ast.Identifier
}

// New creates a parser for the named file. The name only labels positions.
func New(file string) *Parser {
	return &Parser{file: file, identifiers: make(map[string]*ast.Identifier)}
}

// Parse is shorthand for New(file).Parse(src).
func Parse(file, src string) (*ast.Program, error) {
	return New(file).Parse(src)
}

// Parse builds the statement chain for a whole source file.
func (p *Parser) Parse(src string) (*ast.Program, error) {
	lines := lexer.Tokenize(src)
	body, err := p.parseSequence(lines)
	if err != nil {
		return nil, err
	}
	if consumed := ast.ChainLines(body); consumed < len(lines) {
		stray := lines[consumed]
		return nil, p.syntaxError(stray, "unexpected '%s'", lineWord(stray))
	}
	return ast.NewProgram(p.file, body), nil
}

func (p *Parser) identifier(name string) *ast.Identifier {
	if id, ok := p.identifiers[name]; ok {
		return id
	}
	id := ast.NewIdentifier(name)
	p.identifiers[name] = id
	return id
}
