package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pingf/toy-lang/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "toy deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps command %q\n", args[0])
		printUsage()
		return 1
	}
}

func runDepsInstall() int {
	path, ok := driver.FindManifest(".")
	if !ok {
		fmt.Fprintf(os.Stderr, "%s not found\n", driver.ManifestName)
		return 1
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, exists := driver.NewLockfile(manifest.Name, cliToolVersion), false
	if _, err := os.Stat(lockPath); err == nil {
		if lock, err = driver.LoadLockfile(lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		exists = true
	}

	cfg := driver.LoadConfig()
	changed, logs, err := driver.NewInstaller(manifest, cfg.CacheDir()).Install(lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if !changed && exists {
		fmt.Fprintf(os.Stdout, "%s is up to date\n", driver.LockfileName)
		return 0
	}
	lock.Tool = cliToolVersion
	if err := driver.WriteLockfile(lock, lockPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", lockPath)
	return 0
}
