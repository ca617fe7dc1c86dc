package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/driver"
	"github.com/pingf/toy-lang/pkg/interpreter"
	"github.com/pingf/toy-lang/pkg/parser"
	"github.com/pingf/toy-lang/pkg/runtime"
)

const (
	promptMain = "toy> "
	promptCont = "...> "
	replFile   = "<repl>"
)

// lineHost sends output to stdout and reads input() through the line editor.
type lineHost struct {
	ln  *liner.State
	out io.Writer
}

func (h *lineHost) Output(text string) {
	fmt.Fprint(h.out, text)
}

func (h *lineHost) Input(prompt string) (string, error) {
	return h.ln.Prompt(prompt)
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "toy repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	cfg := driver.LoadConfig()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.History); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if err := os.MkdirAll(filepath.Dir(cfg.History), 0o755); err != nil {
			return
		}
		if f, err := os.Create(cfg.History); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	interp, err := newInterpreter(wd, cfg, &lineHost{ln: ln, out: os.Stdout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "%s (type :quit to exit)\n", cliToolVersion)
	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Fprintln(os.Stdout, "unknown command. Type :quit to exit.")
			}
			continue
		}
		evalReplInput(interp, code, os.Stdout, os.Stderr)
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe keeps prompting while the buffered lines leave a block
// open. ok is false once input is exhausted.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = cont
		}
		line, err := ln.Prompt(current)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.Parse(replFile, src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// evalReplInput runs code as statements in the session's global context. A
// lone call, or a line that only parses as an expression, is evaluated and
// its value echoed.
func evalReplInput(interp *interpreter.Interpreter, code string, out, errOut io.Writer) {
	program, err := parser.Parse(replFile, code)
	if err != nil {
		value, evalErr := interp.Evaluate(strings.TrimSpace(code))
		if evalErr != nil {
			var parseErr *parser.ParseError
			if errors.As(evalErr, &parseErr) {
				fmt.Fprintf(errOut, "%v\n", err)
				return
			}
			reportError(errOut, evalErr)
			return
		}
		echoValue(interp, value, out, errOut)
		return
	}
	if soleExpression(program) {
		value, err := interp.Evaluate(strings.TrimSpace(code))
		if err != nil {
			reportError(errOut, err)
			return
		}
		echoValue(interp, value, out, errOut)
		return
	}
	if err := interp.Run(program); err != nil {
		reportError(errOut, err)
	}
}

// soleExpression reports whether program is one expression statement.
func soleExpression(program *ast.Program) bool {
	seq, ok := program.Body.(*ast.Sequence)
	if !ok || seq.Second != ast.Empty {
		return false
	}
	_, ok = seq.First.(*ast.ExpressionStatement)
	return ok
}

func echoValue(interp *interpreter.Interpreter, value runtime.Value, out, errOut io.Writer) {
	if runtime.IsNull(value) {
		return
	}
	text, err := interp.Stringify(value, interp.GlobalEnvironment())
	if err != nil {
		reportError(errOut, err)
		return
	}
	if s, ok := text.(runtime.TextValue); ok {
		fmt.Fprintln(out, s.Val)
	}
}
