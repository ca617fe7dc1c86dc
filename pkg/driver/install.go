package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// Installer resolves the dependencies of a manifest into lockfile entries.
type Installer struct {
	manifest *Manifest
	git      *GitFetcher
}

// NewInstaller fetches git dependencies into cacheDir.
func NewInstaller(manifest *Manifest, cacheDir string) *Installer {
	return &Installer{manifest: manifest, git: NewGitFetcher(cacheDir)}
}

// Install brings lock in line with the manifest. It reports whether the
// lockfile changed and one log line per resolved dependency.
func (in *Installer) Install(lock *Lockfile) (bool, []string, error) {
	changed := false
	var logs []string
	wanted := make(map[string]bool, len(in.manifest.Dependencies))

	for _, name := range in.manifest.DependencyNames() {
		spec := in.manifest.Dependencies[name]
		wanted[name] = true

		var pkg *LockedPackage
		var err error
		if spec.Path != "" {
			pkg, err = in.resolvePath(name, spec)
		} else {
			pkg, err = in.git.Fetch(name, spec)
		}
		if err != nil {
			return changed, logs, fmt.Errorf("deps: %s: %w", name, err)
		}
		logs = append(logs, fmt.Sprintf("resolved %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))

		if existing, ok := lock.Package(name); ok {
			if *existing == *pkg {
				continue
			}
			*existing = *pkg
		} else {
			lock.Packages = append(lock.Packages, pkg)
		}
		changed = true
	}

	kept := lock.Packages[:0]
	for _, pkg := range lock.Packages {
		if pkg == nil || !wanted[pkg.Name] {
			changed = true
			continue
		}
		kept = append(kept, pkg)
	}
	lock.Packages = kept
	lock.normalize()
	return changed, logs, nil
}

// resolvePath locks a local dependency. Its version comes from its own
// toy.yml when it has one.
func (in *Installer) resolvePath(name string, spec *DependencySpec) (*LockedPackage, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(in.manifest.Dir(), dir)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("path dependency %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path dependency %s is not a directory", dir)
	}

	version := "0.0.0"
	if manifest, err := LoadManifest(filepath.Join(dir, ManifestName)); err == nil && manifest.Version != "" {
		version = manifest.Version
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, err
	}
	return &LockedPackage{
		Name:     name,
		Version:  version,
		Source:   "path:" + dir,
		Checksum: checksum,
		Dir:      dir,
	}, nil
}
