package driver

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	home := t.TempDir()
	extra := []string{filepath.Join(home, "a"), filepath.Join(home, "b")}
	searchPath := strings.Join(extra, string(filepath.ListSeparator)) + string(filepath.ListSeparator)

	cfg := newConfig(home, searchPath, true, "")
	if cfg.Home != home {
		t.Fatalf("Home = %q, want %q", cfg.Home, home)
	}
	if strings.Join(cfg.Paths, "|") != strings.Join(extra, "|") {
		t.Fatalf("Paths = %v, want %v", cfg.Paths, extra)
	}
	if !cfg.Debug {
		t.Fatalf("Debug = false, want true")
	}
	if cfg.History != filepath.Join(home, "history") {
		t.Fatalf("History = %q", cfg.History)
	}
	if cfg.CacheDir() != filepath.Join(home, "pkg", "src") {
		t.Fatalf("CacheDir = %q", cfg.CacheDir())
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := newConfig("", "", false, "/tmp/toy-history")
	if !strings.HasSuffix(cfg.Home, ".toy") || strings.HasPrefix(cfg.Home, "~") {
		t.Fatalf("Home = %q, want expanded ~/.toy", cfg.Home)
	}
	if cfg.History != "/tmp/toy-history" || len(cfg.Paths) != 0 || cfg.Debug {
		t.Fatalf("cfg = %+v", cfg)
	}
}
