package main

import (
	"os"

	"github.com/tgienger/projman/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version + " (commit: " + commit + ", built: " + date + ")"); err != nil {
		os.Exit(1)
	}
}
