package main

import (
	"fmt"
	"os"

	"github.com/zjy-dev/bazel-lcov/cmd/bazel-lcov/app"
	"github.com/zjy-dev/bazel-lcov/internal/logger"
)

func main() {
	err := app.NewBazelLcovCommand().Execute()
	// PersistentPostRun is skipped when a command fails.
	logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
