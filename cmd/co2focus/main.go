// Command co2focus is the CO₂ dashboard for Panama and Central America.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rshade/co2focus/internal/cli"
	"github.com/rshade/co2focus/internal/dataset"
	"github.com/rshade/co2focus/internal/projection"
	"github.com/rshade/co2focus/pkg/version"
)

// Process exit codes.
const (
	exitOK               = 0
	exitError            = 1
	exitDataLoad         = 2
	exitModelUnavailable = 3
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(ctx)
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var loadErr *dataset.DataLoadError
	if errors.As(err, &loadErr) {
		return exitDataLoad
	}
	var modelErr *projection.ModelUnavailableError
	if errors.As(err, &modelErr) {
		return exitModelUnavailable
	}
	return exitError
}
