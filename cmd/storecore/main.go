// Package main is the entry point for the storecore CLI.
package main

import (
	"os"

	"github.com/kupoindex/storecore/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
