package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/outlet/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootFlags are shared by every command.
type rootFlags struct {
	dir      string
	manifest string
	strategy string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var oe *errors.OutletError
		if stderrors.As(err, &oe) {
			errors.PrintError(oe)
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "outlet",
		Short: "Nested routes, loaders and error boundaries",
		Long: `Outlet matches URLs against a nested route tree, runs the matched
loaders and actions, and resolves which error boundary renders.

Routes are declared in a YAML manifest (routes.yaml by default) and
settings in outlet.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Directory containing outlet.json")
	rootCmd.PersistentFlags().StringVarP(&flags.manifest, "manifest", "m", "", "Route manifest (default from outlet.json)")
	rootCmd.PersistentFlags().StringVar(&flags.strategy, "strategy", "", "Loader strategy: waterfall or parallel (default from outlet.json)")

	rootCmd.AddCommand(
		serveCmd(flags),
		matchCmd(flags),
		navigateCmd(flags),
		validateCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fmt.Sprintf(format, args...))
}
