package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmgilman/gitfarm/internal/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	sharedRoot  string
	workingRoot string
	logLevel    string
	logFormat   string
	jsonErrors  bool
	verbose     bool
}

// RootCmd returns the gitfarm command tree.
func RootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "gitfarm",
		Short:   "Materialize repository checkouts from a shared git cache",
		Version: version.String(),
		Long: `gitfarm prepares working checkouts for build workers.

Each repository is cloned once from a shared cache of bare mirrors
(<shared-root>/<namespace>/<name>.git) into
<working-root>/<namespace>/<name> and afterwards reset, cleaned and
checked out in place. Submodules that are also in the shared cache are
fetched from there.

Settings come from --config (CUE, YAML or JSON), GITFARM_* environment
variables and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Settings file (.cue, .yaml, .yml or .json)")
	flags.StringVar(&opts.sharedRoot, "shared-root", "", "Root of the shared cache")
	flags.StringVar(&opts.workingRoot, "working-root", "", "Root for worker checkouts")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	flags.BoolVar(&opts.jsonErrors, "json", false, "Print errors as JSON")
	flags.BoolVar(&opts.verbose, "verbose", false, "Stream git output to stderr")

	rootCmd.AddCommand(MaterializeCmd(opts))
	rootCmd.AddCommand(StatusCmd(opts))
	rootCmd.AddCommand(PruneCmd(opts))

	return rootCmd
}

// JSONErrors reports whether --json was set on cmd.
func JSONErrors(cmd *cobra.Command) bool {
	v, err := cmd.PersistentFlags().GetBool("json")
	return err == nil && v
}
