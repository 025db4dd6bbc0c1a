package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// batchOptions holds options for the batch command.
type batchOptions struct {
	algorithm   search.Algorithm
	paths       []string
	concurrency int
	jsonOutput  bool
}

// newBatchCmd creates the batch command.
func (a *App) newBatchCmd() *cobra.Command {
	var algorithm string
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <world-file>...",
		Short: "Plan several world files concurrently",
		Long: `Plan several world files concurrently.

Each file is reported under a "== <path>" header in argument order. A file
that fails to load is reported and the rest are still planned; the command
fails if any file failed.

Examples:
  gridplan batch worlds/*.txt
  gridplan batch -a depth-first -j 2 a.txt b.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.resolveAlgorithm(algorithm)
			if err != nil {
				return err
			}
			opts.algorithm = alg
			opts.paths = args
			if !cmd.Flags().Changed("json") {
				opts.jsonOutput = a.config.Output.Format == "json"
			}
			return a.batch(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Search algorithm (uniform-cost or depth-first)")
	cmd.Flags().IntVarP(&opts.concurrency, "jobs", "j", runtime.GOMAXPROCS(0), "Maximum concurrent searches")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as a JSON array")

	return cmd
}

// batchOutput is the JSON form of one batch entry.
type batchOutput struct {
	Path   string      `json:"path"`
	Result *planOutput `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (a *App) batch(ctx context.Context, opts *batchOptions) (err error) {
	c, err := a.build()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	items, err := c.service.PlanFiles(ctx, opts.paths, opts.algorithm, opts.concurrency)
	if err != nil {
		return err
	}

	failed := 0
	if opts.jsonOutput {
		out := make([]batchOutput, len(items))
		for i, item := range items {
			out[i].Path = item.Path
			if item.Err != nil {
				failed++
				out[i].Error = item.Err.Error()
				continue
			}
			po := newPlanOutput(item.Run)
			out[i].Result = &po
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for i, item := range items {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, "== %s\n", item.Path)
			if item.Err != nil {
				failed++
				fmt.Fprintf(a.stdout, "error: %v\n", item.Err)
				continue
			}
			if err := writeText(a.stdout, item.Run.Result); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d worlds failed", failed, len(items))
	}
	return nil
}
