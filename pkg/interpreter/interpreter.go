// Package interpreter evaluates toy programs by walking the syntax tree
// against a chain of scope contexts. Control flow (return, break, throw) is
// carried in each step's Result; Go errors are reserved for failures the
// language cannot catch.
package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/builtins"
	"github.com/pingf/toy-lang/pkg/parser"
	"github.com/pingf/toy-lang/pkg/runtime"
)

// Host supplies the program's output sink and input source.
type Host interface {
	Output(text string)
	Input(prompt string) (string, error)
}

// ModuleLoader resolves import paths to parsed programs. The returned
// program's File is the module's canonical path.
type ModuleLoader interface {
	Load(path, importer string) (*ast.Program, error)
	Loaded() []string
}

// StreamHost writes output to w and reads input lines from r.
type StreamHost struct {
	out io.Writer
	in  *bufio.Reader
}

func NewStreamHost(w io.Writer, r io.Reader) *StreamHost {
	host := &StreamHost{out: w}
	if r != nil {
		host.in = bufio.NewReader(r)
	}
	return host
}

func (h *StreamHost) Output(text string) {
	io.WriteString(h.out, text)
}

func (h *StreamHost) Input(prompt string) (string, error) {
	if prompt != "" {
		io.WriteString(h.out, prompt)
	}
	if h.in == nil {
		return "", io.EOF
	}
	line, err := h.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Interpreter drives evaluation of toy programs.
type Interpreter struct {
	builtins *runtime.Environment
	global   *runtime.Environment
	lib      *builtins.Library
	host     Host
	loader   ModuleLoader
	logger   *slog.Logger

	modules map[string]*runtime.Instance
	loading map[string]bool
	files   []string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

func WithHost(host Host) Option {
	return func(i *Interpreter) { i.host = host }
}

func WithLoader(loader ModuleLoader) Option {
	return func(i *Interpreter) { i.loader = loader }
}

// WithLogger sets the logger used for debug tracing. Evaluation logs
// nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// New returns an interpreter whose global context sits under a scope holding
// the builtin library.
func New(opts ...Option) *Interpreter {
	scope := runtime.NewEnvironment(nil)
	i := &Interpreter{
		builtins: scope,
		global:   scope.Extend(),
		lib:      builtins.Install(scope),
		host:     NewStreamHost(io.Discard, nil),
		logger:   slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		modules:  make(map[string]*runtime.Instance),
		loading:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GlobalEnvironment returns the root context of the main program.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Library exposes the builtin classes.
func (i *Interpreter) Library() *builtins.Library {
	return i.lib
}

// Run evaluates program in the global context. An exception that escapes is
// reported through the host and returned as *UncaughtError.
func (i *Interpreter) Run(program *ast.Program) error {
	i.files = append(i.files, program.File)
	res, err := i.evaluateStatement(program.Body, i.global)
	i.files = i.files[:len(i.files)-1]
	if err != nil {
		return err
	}
	switch res.Signal {
	case Thrown:
		return i.uncaught(res.Thrown)
	case Broken:
		return fmt.Errorf("runtime: 'break' outside of a loop")
	}
	return nil
}

// RunSource parses and runs src as the file named file.
func (i *Interpreter) RunSource(file, src string) error {
	program, err := parser.Parse(file, src)
	if err != nil {
		return err
	}
	return i.Run(program)
}

// Evaluate parses a single expression and evaluates it in the global
// context.
func (i *Interpreter) Evaluate(expr string) (runtime.Value, error) {
	node, err := parser.New("<expr>").ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	res, err := i.evaluateExpression(node, i.global)
	if err != nil {
		return nil, err
	}
	if res.Signal == Thrown {
		return nil, i.uncaught(res.Thrown)
	}
	return res.Value, nil
}

//-----------------------------------------------------------------------------
// Services for native functions
//-----------------------------------------------------------------------------

func (i *Interpreter) Invoke(fn runtime.Value, args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	res, err := i.callValue(fn, args, env)
	if err != nil {
		return nil, err
	}
	if res.Signal == Thrown {
		return res.Thrown, nil
	}
	return res.Value, nil
}

func (i *Interpreter) Stringify(v runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	text, t, err := i.stringify(v, env)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}
	return runtime.Text(text), nil
}

func (i *Interpreter) Output(text string) {
	i.host.Output(text)
}

func (i *Interpreter) Input(prompt string) (string, error) {
	return i.host.Input(prompt)
}

func (i *Interpreter) LoadedModules() []string {
	if i.loader == nil {
		return nil
	}
	return i.loader.Loaded()
}
