package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gridplan/domain/run"
	"github.com/felixgeelhaar/gridplan/domain/search"
	"github.com/felixgeelhaar/gridplan/infrastructure/world"
)

// planOptions holds options for the plan command.
type planOptions struct {
	algorithm  search.Algorithm
	path       string
	jsonOutput bool
	verify     bool
}

// newPlanCmd creates the plan command.
func (a *App) newPlanCmd() *cobra.Command {
	var algorithm string
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan <world-file>",
		Short: "Plan a cleaning route for a world file",
		Long: `Plan a cleaning route for a world file.

Without --algorithm the configured default (uniform-cost) is used.

Examples:
  # Plan with the default algorithm
  gridplan plan world.txt

  # Depth-first search with JSON output
  gridplan plan -a depth-first --json world.txt

  # Replay the plan against the world before printing it
  gridplan plan --verify world.txt`,
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
			return a.plan(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Search algorithm (uniform-cost or depth-first)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Replay the plan against the world and fail if it does not clean it")

	return cmd
}

// resolveAlgorithm picks the flag value, falling back to the configured default.
func (a *App) resolveAlgorithm(flag string) (search.Algorithm, error) {
	name := flag
	if name == "" {
		name = a.config.Algorithm
	}
	if name == "" {
		return search.UniformCost, nil
	}
	return search.ParseAlgorithm(name)
}

// plan runs one planning request and prints the result.
func (a *App) plan(ctx context.Context, opts *planOptions) (err error) {
	c, err := a.build()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	r, err := c.service.PlanFile(ctx, opts.path, opts.algorithm)
	if err != nil {
		return err
	}

	if opts.verify && r.Result.Found {
		w, err := world.LoadFile(opts.path)
		if err != nil {
			return err
		}
		if err := search.Verify(w, r.Result.Plan); err != nil {
			return fmt.Errorf("plan failed verification: %w", err)
		}
		fmt.Fprintf(a.stderr, "plan verified: %d actions\n", r.Result.Cost())
	}

	if opts.jsonOutput {
		return writeJSON(a.stdout, r)
	}
	return writeText(a.stdout, r.Result)
}

// writeText prints one token per action followed by the two counter lines.
// The counters are printed even when no plan exists.
func writeText(w io.Writer, result search.Result) error {
	for _, action := range result.Plan {
		if _, err := fmt.Fprintln(w, action); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d nodes generated\n", result.Generated); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d nodes expanded\n", result.Expanded)
	return err
}

// planOutput is the JSON form of a finished run.
type planOutput struct {
	RunID     string           `json:"run_id"`
	Algorithm search.Algorithm `json:"algorithm"`
	World     string           `json:"world"`
	Status    run.Status       `json:"status"`
	Found     bool             `json:"found"`
	Plan      []string         `json:"plan"`
	Cost      int              `json:"cost"`
	Generated int              `json:"nodes_generated"`
	Expanded  int              `json:"nodes_expanded"`
	Cached    bool             `json:"cached"`
	Duration  string           `json:"duration"`
}

func newPlanOutput(r *run.Run) planOutput {
	tokens := make([]string, len(r.Result.Plan))
	for i, action := range r.Result.Plan {
		tokens[i] = action.String()
	}
	return planOutput{
		RunID:     r.ID,
		Algorithm: r.Algorithm,
		World:     r.WorldPath,
		Status:    r.Status,
		Found:     r.Result.Found,
		Plan:      tokens,
		Cost:      r.Result.Cost(),
		Generated: r.Result.Generated,
		Expanded:  r.Result.Expanded,
		Cached:    r.Cached,
		Duration:  r.Duration().String(),
	}
}

func writeJSON(w io.Writer, r *run.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newPlanOutput(r))
}
