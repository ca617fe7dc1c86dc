package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitFetcher keeps git dependencies under a cache root laid out as
//
//	<root>/<name>/<version>   one checkout per pinned version
//	<root>/<name>/.staging-*  clones that have not been promoted yet
//
// Both path segments pass through pathSlot.
type GitFetcher struct {
	root string
}

// NewGitFetcher returns nil when root is empty.
func NewGitFetcher(root string) *GitFetcher {
	if root == "" {
		return nil
	}
	return &GitFetcher{root: root}
}

// gitPin is the revision a dependency asks for.
type gitPin struct {
	rev   plumbing.Revision
	label string
	// commit reports that label already names a commit.
	commit bool
}

func pinFor(spec *DependencySpec) (gitPin, error) {
	switch {
	case strings.TrimSpace(spec.Rev) != "":
		rev := strings.TrimSpace(spec.Rev)
		return gitPin{rev: plumbing.Revision(rev), label: rev, commit: true}, nil
	case strings.TrimSpace(spec.Tag) != "":
		tag := strings.TrimSpace(spec.Tag)
		return gitPin{rev: plumbing.Revision(plumbing.NewTagReferenceName(tag)), label: tag}, nil
	case strings.TrimSpace(spec.Branch) != "":
		branch := strings.TrimSpace(spec.Branch)
		return gitPin{rev: plumbing.Revision(plumbing.NewBranchReferenceName(branch)), label: branch}, nil
	}
	return gitPin{}, errors.New("git dependencies require rev, tag, or branch")
}

// version is what the lockfile records: the commit itself for rev pins,
// label@commit for tags and branches.
func (p gitPin) version(hash string) string {
	if p.commit || p.label == hash {
		return hash
	}
	return p.label + "@" + hash
}

func (g *GitFetcher) slot(name, version string) string {
	return filepath.Join(g.root, pathSlot(name), pathSlot(version))
}

// Fetch makes sure the pinned checkout exists and locks it.
func (g *GitFetcher) Fetch(name string, spec *DependencySpec) (*LockedPackage, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("dependency %q: git URL required", name)
	}
	pin, err := pinFor(spec)
	if err != nil {
		return nil, err
	}

	if pin.commit {
		if dir := g.slot(name, pin.label); isDir(dir) {
			return lockCheckout(name, url, pin.label, pin.label, dir)
		}
	}

	hash, dir, err := g.checkout(name, url, pin)
	if err != nil {
		return nil, err
	}
	return lockCheckout(name, url, pin.version(hash), hash, dir)
}

// checkout clones url into a staging directory and promotes it to its
// version slot. A slot that already exists wins over the new clone.
func (g *GitFetcher) checkout(name, url string, pin gitPin) (string, string, error) {
	parent := filepath.Join(g.root, pathSlot(name))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", "", err
	}
	staging, err := os.MkdirTemp(parent, ".staging-*")
	if err != nil {
		return "", "", err
	}
	// Removing a promoted staging dir is a no-op.
	defer os.RemoveAll(staging)

	repo, err := git.PlainClone(staging, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(pin.rev)
	if err != nil {
		return "", "", fmt.Errorf("resolve revision %s: %w", pin.rev, err)
	}

	dir := g.slot(name, pin.version(hash.String()))
	if isDir(dir) {
		return hash.String(), dir, nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", "", err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", "", fmt.Errorf("git checkout %s: %w", pin.rev, err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return "", "", err
	}
	return hash.String(), dir, nil
}

func lockCheckout(name, url, version, commit, dir string) (*LockedPackage, error) {
	sum, err := dirChecksum(dir)
	if err != nil {
		return nil, err
	}
	return &LockedPackage{
		Name:     name,
		Version:  version,
		Source:   "git+" + url + "@" + commit,
		Checksum: sum,
		Dir:      dir,
	}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// dirChecksum hashes every file below root by slash-separated relative
// path, length and content. Dot directories (.git, staging) are skipped.
func dirChecksum(root string) (string, error) {
	h := sha256.New()
	var size [8]byte
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(size[:], uint64(len(data)))
		h.Write(size[:])
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// pathSlot maps a dependency name or version onto one safe path segment.
func pathSlot(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "head"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, s)
}
