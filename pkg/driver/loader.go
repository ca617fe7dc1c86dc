package driver

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pingf/toy-lang/pkg/ast"
	"github.com/pingf/toy-lang/pkg/parser"
)

// SourceExt is the extension appended to import paths that have none.
const SourceExt = ".toy"

// Loader resolves import paths against the importing file's directory,
// declared dependencies and the search roots, and parses each module once.
type Loader struct {
	roots  []string
	deps   map[string]string
	cache  map[string]*ast.Program
	loaded []string
	logger *slog.Logger
}

// NewLoader constructs a loader with the given search roots. Duplicate and
// empty roots are dropped.
func NewLoader(roots []string) (*Loader, error) {
	unique := make([]string, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", root, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		unique = append(unique, abs)
	}
	return &Loader{
		roots:  unique,
		deps:   make(map[string]string),
		cache:  make(map[string]*ast.Program),
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
	}, nil
}

// SetLogger sets the logger for module resolution records.
func (l *Loader) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

// AddDependency maps imports whose first segment is name to dir.
func (l *Loader) AddDependency(name, dir string) {
	l.deps[name] = dir
}

// UseLockfile registers every locked package as a dependency.
func (l *Loader) UseLockfile(lock *Lockfile) {
	for _, pkg := range lock.Packages {
		if pkg.Dir != "" {
			l.AddDependency(pkg.Name, pkg.Dir)
		}
	}
}

// Roots returns the search roots in resolution order.
func (l *Loader) Roots() []string {
	out := make([]string, len(l.roots))
	copy(out, l.roots)
	return out
}

// Load resolves path relative to importer and returns the parsed module.
// The program's File is the module's absolute path.
func (l *Loader) Load(path, importer string) (*ast.Program, error) {
	file, err := l.resolve(path, importer)
	if err != nil {
		return nil, err
	}
	if program, ok := l.cache[file]; ok {
		return program, nil
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", file, err)
	}
	program, err := parser.Parse(file, string(src))
	if err != nil {
		return nil, err
	}
	l.logger.Debug("module parsed", slog.String("module", path), slog.String("path", file))
	l.cache[file] = program
	l.loaded = append(l.loaded, file)
	return program, nil
}

// Loaded lists the modules parsed so far, in load order.
func (l *Loader) Loaded() []string {
	out := make([]string, len(l.loaded))
	copy(out, l.loaded)
	return out
}

func (l *Loader) resolve(path, importer string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("loader: empty import path")
	}
	name := filepath.FromSlash(path)
	if filepath.Ext(name) == "" {
		name += SourceExt
	}
	if filepath.IsAbs(name) {
		return existingFile(name, path)
	}

	importerDir := ""
	if importer != "" {
		if abs, err := filepath.Abs(importer); err == nil {
			importerDir = filepath.Dir(abs)
		}
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		if importerDir == "" {
			importerDir = "."
		}
		return existingFile(filepath.Join(importerDir, name), path)
	}

	var candidates []string
	first, rest, nested := strings.Cut(filepath.ToSlash(name), "/")
	if dir, ok := l.deps[first]; ok && nested {
		candidates = append(candidates, filepath.Join(dir, filepath.FromSlash(rest)))
	}
	if importerDir != "" {
		candidates = append(candidates, filepath.Join(importerDir, name))
	}
	for _, root := range l.roots {
		candidates = append(candidates, filepath.Join(root, name))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("loader: module %q not found (searched %s)", path, strings.Join(candidates, ", "))
}

func existingFile(file, path string) (string, error) {
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("loader: module %q not found at %s", path, file)
	}
	return filepath.Abs(file)
}
