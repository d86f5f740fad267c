package app

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/bazel-lcov/internal/config"
	"github.com/zjy-dev/bazel-lcov/internal/exec"
	"github.com/zjy-dev/bazel-lcov/internal/logger"
)

// host carries the side-effecting dependencies shared by all subcommands.
type host struct {
	executor exec.Executor
	fs       afero.Fs
	logLevel string
	logDir   string
}

// NewBazelLcovCommand creates the root command for the bazel-lcov tool.
func NewBazelLcovCommand() *cobra.Command {
	return newRootCommand(&host{executor: exec.NewCommandExecutor(), fs: afero.NewOsFs()})
}

func newRootCommand(h *host) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bazel-lcov",
		Short: "Parse and summarize LCOV coverage reports produced by Bazel.",
		Long: `bazel-lcov reads LCOV tracefiles such as Bazel's _coverage_report.dat,
demangles JVM, Rust and C++ function names, and resolves source paths
under external/<repo> through the workspace symlinks.

Configuration:
  Defaults are loaded from configs/config.yaml, a .env file and
  BAZEL_LCOV_* environment variables. Command line flags override them.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&h.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&h.logDir, "log-dir", "", "Write logs to a timestamped file in this directory")

	cmd.AddCommand(newParseCommand(h))
	cmd.AddCommand(newDemangleCommand(h))
	cmd.AddCommand(newResolveCommand(h))

	return cmd
}

// loadConfig reads the configuration and sets up logging, preferring the
// --log-level and --log-dir flags when they were given.
func (h *host) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = h.logLevel
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = h.logDir
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LogDir == "" {
		logger.SetOutput(cmd.ErrOrStderr())
		return cfg, nil
	}
	if err := logger.InitWithFile(cfg.LogLevel, cfg.LogDir); err != nil {
		return nil, err
	}
	logger.Debug("logging to %s", logger.GetLogFilePath())
	return cfg, nil
}
