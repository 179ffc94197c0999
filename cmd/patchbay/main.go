// Package main provides the entry point for the patchbay CLI.
package main

import (
	"os"

	"github.com/patchbaylabs/patchbay/cmd/patchbay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
