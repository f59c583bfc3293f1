package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jmgilman/gitfarm/materialize"
)

// StatusCmd returns the status command.
func StatusCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [repository...]",
		Short: "Show worker checkouts and their state",
		Long: `Show the HEAD and worktree state of checkouts.

Without arguments every checkout recorded in the ledger is listed. With
arguments only those repositories are inspected, whether or not the
ledger knows them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			repos := args
			if len(repos) == 0 {
				entries, err := env.materializer.Checkouts()
				if err != nil {
					return err
				}
				for _, e := range entries {
					repos = append(repos, e.Repository)
				}
			}

			out := cmd.OutOrStdout()
			if len(repos) == 0 {
				fmt.Fprintln(out, "No checkouts recorded.")
				return nil
			}
			return printStatus(env.ctx, out, env.materializer, repos, time.Now())
		},
	}

	return cmd
}

func printStatus(ctx context.Context, w io.Writer, m *materialize.Materializer, repos []string, now time.Time) error {
	for _, repo := range repos {
		st, err := m.Status(ctx, repo)
		if err != nil {
			fmt.Fprintf(w, "%-30s %s %v\n", repo, color.New(color.FgRed).Sprint("ERROR"), err)
			continue
		}

		fmt.Fprintf(w, "%-30s %s %s%s\n", st.Locator, stateLabel(st), shortHash(st.Head), lastUsed(st, now))
		if st.Exists {
			fmt.Fprintf(w, "  path: %s\n", st.Path)
		}
	}
	return nil
}

func stateLabel(st materialize.Status) string {
	switch {
	case !st.Exists:
		return color.New(color.FgRed).Sprint("MISSING")
	case st.Clean:
		return color.New(color.FgGreen).Sprint("CLEAN  ")
	default:
		return color.New(color.FgYellow).Sprint("DIRTY  ")
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func lastUsed(st materialize.Status, now time.Time) string {
	if st.Entry == nil || st.Entry.LastAccess.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (used %s)", humanize.RelTime(st.Entry.LastAccess, now, "ago", "from now"))
}
