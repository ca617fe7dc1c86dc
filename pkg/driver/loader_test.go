package driver

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoaderResolution(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "main.toy"), "import 'helpers'\n")
	writeFile(t, filepath.Join(root, "app", "helpers.toy"), "x = 1\n")
	writeFile(t, filepath.Join(root, "app", "sub", "near.toy"), "y = 2\n")
	writeFile(t, filepath.Join(root, "lib", "shared.toy"), "z = 3\n")
	writeFile(t, filepath.Join(root, "deps", "strings", "pad.toy"), "w = 4\n")

	loader, err := NewLoader([]string{filepath.Join(root, "lib"), "", filepath.Join(root, "lib")})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if len(loader.Roots()) != 1 {
		t.Fatalf("roots = %v, want one unique root", loader.Roots())
	}
	loader.AddDependency("strings", filepath.Join(root, "deps", "strings"))
	importer := filepath.Join(root, "app", "main.toy")

	cases := map[string]string{
		"helpers":      filepath.Join(root, "app", "helpers.toy"),
		"./sub/near":   filepath.Join(root, "app", "sub", "near.toy"),
		"shared.toy":   filepath.Join(root, "lib", "shared.toy"),
		"strings/pad":  filepath.Join(root, "deps", "strings", "pad.toy"),
		"sub/near.toy": filepath.Join(root, "app", "sub", "near.toy"),
	}
	for path, want := range cases {
		program, err := loader.Load(path, importer)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if program.File != want {
			t.Fatalf("Load(%q).File = %q, want %q", path, program.File, want)
		}
	}
	if got := len(loader.Loaded()); got != 4 {
		t.Fatalf("loaded %d modules, want 4: %v", got, loader.Loaded())
	}
}

func TestLoaderCachesPrograms(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "m.toy"), "x = 1\n")
	loader, err := NewLoader([]string{root})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	first, err := loader.Load("m", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := loader.Load("m.toy", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first != second {
		t.Fatalf("expected cached program")
	}
	if len(loader.Loaded()) != 1 {
		t.Fatalf("loaded = %v", loader.Loaded())
	}
}

func TestLoaderErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.toy"), "if x:\n")
	loader, err := NewLoader([]string{root})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.Load("missing", ""); err == nil || !strings.Contains(err.Error(), "loader: module \"missing\" not found") {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := loader.Load("bad", ""); err == nil || !strings.HasPrefix(err.Error(), "parser: ") {
		t.Fatalf("err = %v, want parse error", err)
	}
	if _, err := loader.Load("", ""); err == nil {
		t.Fatalf("expected empty path error")
	}
}

func TestLoaderUsesLockfile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vendor", "m.toy"), "x = 1\n")
	loader, err := NewLoader(nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	lock := NewLockfile("app", "toy test")
	lock.Packages = append(lock.Packages, &LockedPackage{Name: "vendored", Dir: filepath.Join(root, "vendor")})
	loader.UseLockfile(lock)
	program, err := loader.Load("vendored/m", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if program.File != filepath.Join(root, "vendor", "m.toy") {
		t.Fatalf("File = %q", program.File)
	}
}
