// Package main is the entry point of the mrytune command line player.
//
// Build:
//
//	go build -o build/mrytune ./cmd
//
// Run:
//
//	./build/mrytune import --folder ~/Music
//	./build/mrytune save
//	./build/mrytune play --shuffle
package main

import (
	"os"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/cli"
)

func main() {
	info := app.GetVersionInfo()
	version := info.Version
	if info.GitTag != "" {
		version = info.GitTag
	}

	if err := cli.Root(version).Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
