package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/ironsheep/comic-panels/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := cli.NewRootCmd(Version)

	// fang adds --version, completions, manpages and styled errors
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
