// Package driver connects the interpreter to the file system: it resolves
// import paths to parsed modules, reads the toy.yml project manifest and
// toy.lock lockfile, fetches git dependencies and reads the environment
// configuration.
package driver

import (
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
)

// Config holds settings read from the environment.
type Config struct {
	// Home is the cache root; fetched dependencies live under Home/pkg/src.
	Home string
	// Paths are extra module search roots from TOY_PATH.
	Paths   []string
	Debug   bool
	History string
}

// LoadConfig reads TOY_HOME, TOY_PATH, TOY_DEBUG and TOY_HISTORY.
func LoadConfig() Config {
	return newConfig(env.Str("TOY_HOME"), env.Str("TOY_PATH"), env.Bool("TOY_DEBUG"), env.Str("TOY_HISTORY"))
}

// newConfig applies defaults: the cache root is ~/.toy and the REPL history
// lives under it.
func newConfig(home, searchPath string, debug bool, history string) Config {
	if strings.TrimSpace(home) == "" {
		home = filepath.Join("~", ".toy")
	}
	home = env.ExpandUser(home)
	if strings.TrimSpace(history) == "" {
		history = filepath.Join(home, "history")
	}
	cfg := Config{
		Home:    home,
		Debug:   debug,
		History: env.ExpandUser(history),
	}
	for _, entry := range filepath.SplitList(searchPath) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		cfg.Paths = append(cfg.Paths, env.ExpandUser(entry))
	}
	return cfg
}

// CacheDir is where git dependencies are checked out.
func (c Config) CacheDir() string {
	if c.Home == "" {
		return ""
	}
	return filepath.Join(c.Home, "pkg", "src")
}
