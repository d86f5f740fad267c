package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/bazel-lcov/internal/demangle"
)

// newDemangleCommand creates the "demangle" subcommand.
func newDemangleCommand(h *host) *cobra.Command {
	var noExternal bool

	cmd := &cobra.Command{
		Use:   "demangle <name>...",
		Short: "Print the display name for each mangled function name.",
		Long: `Print the display name for each mangled function name, one per line.

Names are tried as JVM method descriptors, then with rustfilt, then with
c++filt. A name no decoder recognizes is printed unchanged.

Examples:
  bazel-lcov demangle 'com/example/Foo::bar (I)V' _ZN5hello5greetEv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := cfg.DemangleOptions()
			if noExternal {
				opts.ExternalTools = false
			}
			d := demangle.Probe(h.executor, opts)

			for _, name := range args {
				fmt.Fprintln(cmd.OutOrStdout(), d.Demangle(name))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noExternal, "no-external-demanglers", false, "Do not run rustfilt or c++filt")

	return cmd
}
