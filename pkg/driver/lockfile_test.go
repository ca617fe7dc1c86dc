package driver

import (
	"path/filepath"
	"testing"
)

func TestWriteAndLoadLockfile(t *testing.T) {
	lock := &Lockfile{
		Root:      "calc",
		Tool:      "toy 0.1.0",
		Generated: "2025-01-01T00:00:00Z",
		Packages: []*LockedPackage{
			{
				Name:     "strings",
				Version:  " 2.0.0 ",
				Source:   " path:/src/strings ",
				Checksum: " abc ",
				Dir:      "/src/strings",
			},
			{
				Name:    "mathlib",
				Version: "v1.2.0@deadbeef",
				Source:  "git+https://example.com/mathlib.git@deadbeef",
			},
		},
	}

	path := filepath.Join(t.TempDir(), LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile error: %v", err)
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile error: %v", err)
	}
	if loaded.Root != "calc" || loaded.Tool != "toy 0.1.0" || loaded.Generated != "2025-01-01T00:00:00Z" {
		t.Fatalf("metadata = %+v", loaded)
	}
	if len(loaded.Packages) != 2 {
		t.Fatalf("packages = %#v", loaded.Packages)
	}
	if loaded.Packages[0].Name != "mathlib" {
		t.Fatalf("packages not sorted: %s first", loaded.Packages[0].Name)
	}
	strings, ok := loaded.Package("strings")
	if !ok {
		t.Fatalf("missing strings package")
	}
	if strings.Version != "2.0.0" || strings.Source != "path:/src/strings" || strings.Checksum != "abc" || strings.Dir != "/src/strings" {
		t.Fatalf("strings package = %+v", strings)
	}
}

func TestWriteLockfileRequiresPath(t *testing.T) {
	if err := WriteLockfile(NewLockfile("calc", "toy"), ""); err == nil {
		t.Fatalf("expected missing path error")
	}
	if err := WriteLockfile(nil, "x"); err == nil {
		t.Fatalf("expected nil lockfile error")
	}
}
