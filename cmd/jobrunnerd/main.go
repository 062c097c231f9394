// Command jobrunnerd runs the SRCF control plane's job runner: it serves
// the dispatch loop described by internal/runner, or performs one-off
// database migrations and operator job transitions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
