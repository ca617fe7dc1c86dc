package interpreter

import (
	"fmt"
	"log/slog"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/runtime"
)

// currentFile names the program or module being evaluated, used as the
// importer when resolving relative module paths.
func (i *Interpreter) currentFile() string {
	if len(i.files) == 0 {
		return ""
	}
	return i.files[len(i.files)-1]
}

func (i *Interpreter) evaluateImportStatement(node *ast.ImportStatement, env *runtime.Environment) (Result, error) {
	res, err := i.importModule(node.Path)
	if err != nil || !res.Completed() {
		return res, err
	}
	namespace := res.Value.(*runtime.Instance)
	if len(node.Names) == 0 {
		env.Define(node.Alias, namespace)
		return normal(runtime.Void), nil
	}
	for _, name := range node.Names {
		v, ok := namespace.Own(name)
		if !ok {
			return Result{}, &runtime.ReferenceError{What: "import", Name: fmt.Sprintf("%s.%s", node.Path, name)}
		}
		env.Define(name, v)
	}
	return normal(runtime.Void), nil
}

// importModule evaluates a module once and returns its namespace. The module
// runs in its own root context below the builtins.
func (i *Interpreter) importModule(path string) (Result, error) {
	if i.loader == nil {
		return Result{}, fmt.Errorf("import '%s': no module loader configured", path)
	}
	program, err := i.loader.Load(path, i.currentFile())
	if err != nil {
		return Result{}, err
	}
	if namespace, ok := i.modules[program.File]; ok {
		return normal(namespace), nil
	}
	if i.loading[program.File] {
		return Result{}, fmt.Errorf("import cycle through %s", program.File)
	}
	i.logger.Debug("module load", slog.String("module", path), slog.String("path", program.File))

	scope := i.builtins.Extend()
	i.loading[program.File] = true
	i.files = append(i.files, program.File)
	res, err := i.evaluateStatement(program.Body, scope)
	i.files = i.files[:len(i.files)-1]
	delete(i.loading, program.File)
	if err != nil {
		return Result{}, err
	}
	switch res.Signal {
	case Thrown:
		return res, nil
	case Returned, Broken:
		return Result{}, fmt.Errorf("module %s: unexpected %s at top level", program.File, res.Signal)
	}

	namespace := i.lib.NewModule()
	for _, key := range scope.Keys() {
		v, _ := scope.Lookup(key)
		namespace.Set(key, v)
	}
	i.modules[program.File] = namespace
	return normal(namespace), nil
}
