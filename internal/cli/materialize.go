package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/materialize"
)

// request is one repository@commit pair.
type request struct {
	repository string
	commit     string
}

// MaterializeCmd returns the materialize command.
func MaterializeCmd(opts *globalOptions) *cobra.Command {
	var (
		batch bool
		jobs  int
	)

	cmd := &cobra.Command{
		Use:   "materialize <repository> <commit> | --batch <repository@commit>...",
		Short: "Bring worker checkouts to a commit",
		Long: `Materialize a checkout of <repository> at <commit> and print its path.

The repository must already be mirrored in the shared cache and contain
the commit. A missing commit exits with status 2 so callers can retry
once the cache has been refreshed; every other failure exits with 1.

With --batch every argument is a repository@commit pair. Pairs are
materialized concurrently, at most --jobs at a time, and each output line
is "<repository>\t<path>" in argument order. A repository may appear only
once per batch.

Examples:
  gitfarm materialize https://git.example.com/org/app.git 4f2c9e1
  gitfarm materialize --batch org/app.git@main org/lib.git@v1.2.0 --jobs 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := parseRequests(args, batch)
			if err != nil {
				return err
			}

			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			paths, err := materializeAll(env.ctx, env.materializer, reqs, jobs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, path := range paths {
				if batch {
					fmt.Fprintf(out, "%s\t%s\n", reqs[i].repository, path)
				} else {
					fmt.Fprintln(out, path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&batch, "batch", false, "Treat every argument as repository@commit")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Concurrent materializations with --batch")

	return cmd
}

// parseRequests turns command arguments into requests.
func parseRequests(args []string, batch bool) ([]request, error) {
	if !batch {
		if len(args) != 2 {
			return nil, errors.New(errors.CodeInvalidInput, "expected <repository> <commit>")
		}
		return []request{{repository: args[0], commit: args[1]}}, nil
	}

	if len(args) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "--batch needs at least one repository@commit")
	}
	reqs := make([]request, 0, len(args))
	seen := make(map[string]string, len(args))
	for _, arg := range args {
		// The last '@' separates the commit; scp-style identifiers contain one too.
		i := strings.LastIndex(arg, "@")
		if i <= 0 || i == len(arg)-1 {
			return nil, errors.WithContext(
				errors.New(errors.CodeInvalidInput, "batch argument must be repository@commit"),
				"argument", arg)
		}
		req := request{repository: arg[:i], commit: arg[i+1:]}

		// Requests for one repository share a checkout.
		loc, err := materialize.ParseLocator(req.repository)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[loc.String()]; ok {
			return nil, errors.WithContextMap(
				errors.New(errors.CodeInvalidInput, "batch names the same repository twice"),
				map[string]any{"repository": loc.String(), "first": prev, "second": arg})
		}
		seen[loc.String()] = arg

		reqs = append(reqs, req)
	}
	return reqs, nil
}

// materializeAll runs reqs with at most jobs in flight and returns the paths
// in request order. The first failure cancels the rest.
func materializeAll(ctx context.Context, m *materialize.Materializer, reqs []request, jobs int) ([]string, error) {
	if jobs < 1 {
		jobs = 1
	}

	paths := make([]string, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, req := range reqs {
		g.Go(func() error {
			path, err := m.Materialize(ctx, req.repository, req.commit)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
