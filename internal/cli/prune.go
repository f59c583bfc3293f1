package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/materialize"
)

// PruneCmd returns the prune command.
func PruneCmd(opts *globalOptions) *cobra.Command {
	var (
		olderThan time.Duration
		maxSize   string
		every     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove idle or excess worker checkouts",
		Long: `Remove worker checkouts recorded in the ledger.

--older-than removes checkouts not materialized within the duration.
--max-size removes least recently used checkouts until the rest fit.
With --every the command keeps running and prunes on that interval until
interrupted. The shared cache is never modified.

Examples:
  gitfarm prune --older-than 168h
  gitfarm prune --max-size 50GiB --every 10m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies, err := pruneStrategies(olderThan, maxSize)
			if err != nil {
				return err
			}

			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			if every > 0 {
				stop := env.materializer.StartGC(env.ctx, every, strategies...)
				<-env.ctx.Done()
				stop()
				return nil
			}

			removed, err := env.materializer.Prune(env.ctx, strategies...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range removed {
				fmt.Fprintf(out, "removed %s (%s)\n", c.Locator(), c.Path)
			}
			fmt.Fprintf(out, "%d checkout(s) removed\n", len(removed))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Remove checkouts idle for longer than this")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Keep checkouts within this total size, e.g. 10GiB")
	cmd.Flags().DurationVar(&every, "every", 0, "Prune repeatedly on this interval")

	return cmd
}

func pruneStrategies(olderThan time.Duration, maxSize string) ([]materialize.PruneStrategy, error) {
	var strategies []materialize.PruneStrategy
	if olderThan > 0 {
		strategies = append(strategies, materialize.PruneOlderThan(olderThan))
	}
	if maxSize != "" {
		size, err := humanize.ParseBytes(maxSize)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid --max-size",
				map[string]any{"max_size": maxSize})
		}
		strategies = append(strategies, materialize.PruneToSize(int64(size)))
	}
	if len(strategies) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "prune needs --older-than or --max-size")
	}
	return strategies, nil
}
