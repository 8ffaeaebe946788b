// Package main provides the pixops CLI.
package main

import (
	"os"

	"github.com/born-ml/pixops/cmd/pixops/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
