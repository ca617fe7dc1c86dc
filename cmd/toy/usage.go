package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  toy run [file.toy]")
	fmt.Fprintln(os.Stderr, "  toy <file.toy>")
	fmt.Fprintln(os.Stderr, "  toy check [file.toy]")
	fmt.Fprintln(os.Stderr, "  toy repl")
	fmt.Fprintln(os.Stderr, "  toy deps install")
	fmt.Fprintln(os.Stderr, "  toy --version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Without a file, run and check use the main entry of the nearest toy.yml.")
	fmt.Fprintln(os.Stderr, "Environment: TOY_HOME, TOY_PATH, TOY_DEBUG, TOY_HISTORY.")
}
