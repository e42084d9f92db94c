package main

import (
	"fmt"
	"os"

	"github.com/ricki-pierce/integrating4Fears/cmd"
	"github.com/ricki-pierce/integrating4Fears/internal/buildinfo"
	"github.com/ricki-pierce/integrating4Fears/internal/conf"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
)

// Set with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   string
	buildDate string
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings, buildinfo.New(version, buildDate))
	execErr := rootCmd.Execute()

	if err := logger.Global().Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing logger: %v\n", err)
	}
	if execErr != nil {
		os.Exit(1)
	}
}
