package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/bazel-lcov/internal/pathresolve"
)

// newResolveCommand creates the "resolve" subcommand.
func newResolveCommand(h *host) *cobra.Command {
	var baseFolder string

	cmd := &cobra.Command{
		Use:   "resolve <sf-path>...",
		Short: "Resolve SF paths the way the parser does.",
		Long: `Resolve SF paths the way the parser does and print one absolute path per line.

Paths under external/<repo>/ are followed through the <base>/external/<repo>
symlink when the target file exists.

Examples:
  bazel-lcov resolve external/rules_foo/lib/a.cc src/main.cc --base-folder /ws`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("base-folder") {
				baseFolder = cfg.BaseFolder
			}

			resolver := pathresolve.New(h.fs)
			for _, sf := range args {
				fmt.Fprintln(cmd.OutOrStdout(), resolver.Resolve(baseFolder, sf))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseFolder, "base-folder", ".", "Folder relative SF paths are resolved against")

	return cmd
}
