package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
)

// historyListOptions holds options for history list.
type historyListOptions struct {
	limit       int
	statuses    []string
	algorithm   string
	fingerprint string
	oldestFirst bool
}

// newHistoryCmd creates the history command group.
func (a *App) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded planning runs",
		Long: `Inspect planning runs recorded in the history store.

History must be enabled in the configuration:

  history:
    backend: sqlite
    path: .gridplan/history.db`,
	}

	cmd.AddCommand(
		a.newHistoryListCmd(),
		a.newHistoryShowCmd(),
		a.newHistorySummaryCmd(),
	)
	return cmd
}

func (a *App) newHistoryListCmd() *cobra.Command {
	opts := &historyListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return a.withHistory(cmd.Context(), func(ctx context.Context, store run.Store) error {
				runs, err := store.List(ctx, filter)
				if err != nil {
					return err
				}
				return a.printRuns(runs)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum number of runs (0 = all)")
	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "Only runs with these statuses")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "Only runs of this algorithm")
	cmd.Flags().StringVar(&opts.fingerprint, "world", "", "Only runs for this world fingerprint")
	cmd.Flags().BoolVar(&opts.oldestFirst, "oldest-first", false, "List oldest runs first")

	return cmd
}

func (o *historyListOptions) filter() (run.ListFilter, error) {
	filter := run.ListFilter{
		Limit:       o.limit,
		Fingerprint: o.fingerprint,
		Descending:  !o.oldestFirst,
	}
	for _, s := range o.statuses {
		status := run.Status(s)
		if !status.IsValid() {
			return filter, fmt.Errorf("unknown run status %q", s)
		}
		filter.Status = append(filter.Status, status)
	}
	if o.algorithm != "" {
		alg, err := search.ParseAlgorithm(o.algorithm)
		if err != nil {
			return filter, err
		}
		filter.Algorithms = []search.Algorithm{alg}
	}
	return filter, nil
}

func (a *App) newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHistory(cmd.Context(), func(ctx context.Context, store run.Store) error {
				r, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			})
		},
	}
}

func (a *App) newHistorySummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Summarize recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHistory(cmd.Context(), func(ctx context.Context, store run.Store) error {
				sp, ok := store.(run.SummaryProvider)
				if !ok {
					return fmt.Errorf("history backend %q does not support summaries", a.config.History.Backend)
				}
				s, err := sp.Summary(ctx, run.ListFilter{})
				if err != nil {
					return err
				}

				fmt.Fprintf(a.stdout, "Runs: %d\n", s.TotalRuns)
				fmt.Fprintf(a.stdout, "  Solved: %d\n", s.SolvedRuns)
				fmt.Fprintf(a.stdout, "  Unsolved: %d\n", s.UnsolvedRuns)
				fmt.Fprintf(a.stdout, "  Failed: %d\n", s.FailedRuns)
				fmt.Fprintf(a.stdout, "  Served from cache: %d\n", s.CachedRuns)
				fmt.Fprintf(a.stdout, "Average nodes expanded: %.1f\n", s.AverageExpanded)
				return nil
			})
		},
	}
}

// withHistory opens the configured history store for the duration of fn.
func (a *App) withHistory(ctx context.Context, fn func(context.Context, run.Store) error) (err error) {
	c := &components{}
	store, err := c.openHistory(a.config.History)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if store == nil {
		return ErrHistoryDisabled
	}
	return fn(ctx, store)
}

func (a *App) printRuns(runs []*run.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tALGORITHM\tSTATUS\tCOST\tGENERATED\tEXPANDED\tCACHED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			r.ID,
			r.StartTime.Local().Format(time.DateTime),
			r.Algorithm,
			r.Status,
			r.Result.Cost(),
			r.Result.Generated,
			r.Result.Expanded,
			r.Cached,
		)
	}
	return tw.Flush()
}
