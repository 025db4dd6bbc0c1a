package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gridplan/domain/search"
	"github.com/felixgeelhaar/gridplan/infrastructure/watch"
)

// watchOptions holds options for the watch command.
type watchOptions struct {
	algorithm  search.Algorithm
	path       string
	jsonOutput bool
	debounce   time.Duration
}

// newWatchCmd creates the watch command.
func (a *App) newWatchCmd() *cobra.Command {
	var algorithm string
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <world-file>",
		Short: "Re-plan whenever a world file changes",
		Long: `Plan a world file, then plan it again every time it is written.

Output for each plan is separated by a blank line. Parse errors are reported
on stderr and watching continues. Stop with Ctrl-C.

Examples:
  gridplan watch world.txt
  gridplan watch -a depth-first --debounce 500ms world.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.resolveAlgorithm(algorithm)
			if err != nil {
				return err
			}
			opts.algorithm = alg
			opts.path = args[0]
			if !cmd.Flags().Changed("json") {
				opts.jsonOutput = a.config.Output.Format == "json"
			}
			return a.watch(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Search algorithm (uniform-cost or depth-first)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output each result as JSON")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-planning")

	return cmd
}

func (a *App) watch(ctx context.Context, opts *watchOptions) (err error) {
	c, err := a.build()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := watch.New(opts.path, watch.WithDebounce(opts.debounce))
	if err != nil {
		return err
	}
	defer w.Close()

	first := true
	replan := func(ctx context.Context) {
		r, err := c.service.PlanFile(ctx, opts.path, opts.algorithm)
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
			}
			return
		}
		if !first {
			fmt.Fprintln(a.stdout)
		}
		first = false

		if opts.jsonOutput {
			err = writeJSON(a.stdout, r)
		} else {
			err = writeText(a.stdout, r.Result)
		}
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}

	replan(ctx)
	return w.Run(ctx, replan)
}
