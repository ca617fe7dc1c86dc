package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pingf/toy-lang/pkg/driver"
	"github.com/pingf/toy-lang/pkg/interpreter"
	"github.com/pingf/toy-lang/pkg/parser"
)

type executionMode int

const (
	modeRun executionMode = iota
	modeCheck
)

func modeCommandLabel(mode executionMode) string {
	switch mode {
	case modeCheck:
		return "toy check"
	default:
		return "toy run"
	}
}

func runEntry(args []string) int {
	return runEntryWithMode(args, modeRun)
}

func runCheck(args []string) int {
	return runEntryWithMode(args, modeCheck)
}

func runEntryWithMode(args []string, mode executionMode) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}
	entry := ""
	if len(args) == 1 {
		entry = args[0]
	} else {
		var err error
		entry, err = manifestEntry(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s requires a source file: %v\n", modeCommandLabel(mode), err)
			return 1
		}
	}

	src, err := os.ReadFile(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", entry, err)
		return 1
	}

	if mode == modeCheck {
		if _, err := parser.Parse(entry, string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s: ok\n", entry)
		return 0
	}

	cfg := driver.LoadConfig()
	interp, err := newInterpreter(filepath.Dir(entry), cfg, interpreter.NewStreamHost(os.Stdout, os.Stdin))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := interp.RunSource(entry, string(src)); err != nil {
		reportError(os.Stderr, err)
		return 1
	}
	return 0
}

// manifestEntry returns the main file declared by the nearest toy.yml.
func manifestEntry(dir string) (string, error) {
	path, ok := driver.FindManifest(dir)
	if !ok {
		return "", fmt.Errorf("%s not found", driver.ManifestName)
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		return "", err
	}
	if manifest.Main == "" {
		return "", fmt.Errorf("%s declares no main entry", path)
	}
	return filepath.Join(manifest.Dir(), manifest.Main), nil
}

// newInterpreter wires the module loader for code living in dir: the
// directory itself, the roots of the nearest manifest, locked dependencies
// and TOY_PATH.
func newInterpreter(dir string, cfg driver.Config, host interpreter.Host) (*interpreter.Interpreter, error) {
	logger := newLogger(cfg)
	roots := []string{dir}
	var lock *driver.Lockfile
	if path, ok := driver.FindManifest(dir); ok {
		manifest, err := driver.LoadManifest(path)
		if err != nil {
			return nil, err
		}
		roots = append(roots, manifest.SearchRoots()...)
		lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
		if _, err := os.Stat(lockPath); err == nil {
			if lock, err = driver.LoadLockfile(lockPath); err != nil {
				return nil, err
			}
		}
	}
	roots = append(roots, cfg.Paths...)

	loader, err := driver.NewLoader(roots)
	if err != nil {
		return nil, err
	}
	loader.SetLogger(logger)
	if lock != nil {
		loader.UseLockfile(lock)
	}
	return interpreter.New(
		interpreter.WithHost(host),
		interpreter.WithLoader(loader),
		interpreter.WithLogger(logger),
	), nil
}

func newLogger(cfg driver.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// reportError prints a failure that ended a run. Uncaught exceptions were
// already reported through the program's output.
func reportError(w io.Writer, err error) {
	var uncaught *interpreter.UncaughtError
	if errors.As(err, &uncaught) {
		return
	}
	fmt.Fprintf(w, "%v\n", err)
	var rtErr *interpreter.RuntimeError
	if errors.As(err, &rtErr) {
		fmt.Fprint(w, rtErr.Trace())
	}
}
