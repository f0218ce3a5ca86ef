// Command cylium is the command-line frontend for the Cylium toolchain:
// lexing, parsing, semantic checking, bytecode compilation, and execution.
package main

import (
	"os"

	"github.com/Ztry8/Cylium/cmd/cylium/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
