// Package main provides the entry point for the histfeed CLI tool.
package main

import (
	"github.com/histfeed/histfeed/cmd/histfeed/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
