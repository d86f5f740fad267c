package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/bazel-lcov/internal/coverage"
	"github.com/zjy-dev/bazel-lcov/internal/demangle"
	"github.com/zjy-dev/bazel-lcov/internal/report"
)

// newParseCommand creates the "parse" subcommand.
func newParseCommand(h *host) *cobra.Command {
	var (
		baseFolder string
		format     string
		outputPath string
		noExternal bool
	)

	cmd := &cobra.Command{
		Use:   "parse <tracefile>",
		Short: "Parse an LCOV tracefile and print a coverage summary.",
		Long: `Parse an LCOV tracefile and print a coverage summary.

Relative SF paths are resolved against --base-folder, which should be the
Bazel execution root or workspace directory.

Examples:
  # Summarize a Bazel coverage report
  bazel-lcov parse bazel-out/_coverage/_coverage_report.dat --base-folder "$(bazel info execution_root)"

  # Write a markdown report without spawning rustfilt or c++filt
  bazel-lcov parse coverage.dat --format markdown --no-external-demanglers -o coverage.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.loadConfig(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("base-folder") {
				baseFolder = cfg.BaseFolder
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Output.Format
			}
			opts := cfg.DemangleOptions()
			if noExternal {
				opts.ExternalTools = false
			}

			reporter, err := report.New(format)
			if err != nil {
				return err
			}
			cache, err := demangle.NewCache(cfg.Demangle.CacheSize)
			if err != nil {
				return fmt.Errorf("failed to create demangle cache: %w", err)
			}

			parser := coverage.NewParser(h.executor, h.fs, opts).WithCache(cache)
			r, err := parser.ParseFile(args[0], baseFolder)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			if outputPath != "" {
				if err := report.Save(h.fs, outputPath, reporter, r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outputPath)
				return nil
			}
			return reporter.Render(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().StringVar(&baseFolder, "base-folder", ".", "Folder relative SF paths are resolved against")
	cmd.Flags().StringVar(&format, "format", report.FormatText, "Output format: text, markdown or json")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&noExternal, "no-external-demanglers", false, "Do not run rustfilt or c++filt")

	return cmd
}
