package ast

import "fmt"

// Position locates a statement line in a source file.
type Position struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line"`
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// IsZero reports whether the position carries no location.
func (p Position) IsZero() bool {
	return p.File == "" && p.Line == 0
}

// Walk visits the statements of a chain in source order, following Sequence
// links iteratively. It stops early when visit returns false.
func Walk(stmt Statement, visit func(seq *Sequence) bool) {
	for {
		seq, ok := stmt.(*Sequence)
		if !ok {
			return
		}
		if !visit(seq) {
			return
		}
		stmt = seq.Second
	}
}

// ChainLines sums the source lines spanned by the links of a chain up to its
// terminator.
func ChainLines(stmt Statement) int {
	total := 0
	Walk(stmt, func(seq *Sequence) bool {
		total += seq.Lines
		return true
	})
	return total
}
