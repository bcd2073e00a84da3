// Package main is the entry point for the fern reconciliation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Ramsey-B/fern/cmd/fern/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
