// Package cli provides the gridplan command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gridplan"
	domainconfig "github.com/felixgeelhaar/gridplan/domain/config"
	"github.com/felixgeelhaar/gridplan/domain/search"
	"github.com/felixgeelhaar/gridplan/infrastructure/config"
	"github.com/felixgeelhaar/gridplan/infrastructure/logging"
)

// Version information set at build time.
var (
	Version   = gridplan.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	cache      string
}

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)

	opts   globalOptions
	config *domainconfig.PlannerConfig
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
		lookup: os.LookupEnv,
	}

	app.root = &cobra.Command{
		Use:   "gridplan <algorithm> <world-file>",
		Short: "Plan vacuum-world cleaning routes",
		Long: `gridplan plans action sequences for a vacuum agent on a grid with blocked
and dirty cells, using depth-first or uniform-cost search.

Given an algorithm and a world file it prints one action token per line
(V, N, S, E, W) followed by the number of nodes generated and expanded.

Examples:
  gridplan uniform-cost world.txt
  gridplan depth-first world.txt
  gridplan plan -a uniform-cost --json world.txt`,
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return cmd.Help()
			case 1:
				return fmt.Errorf("requires <algorithm> <world-file>, got %q", args[0])
			}
			alg, err := search.ParseAlgorithm(args[0])
			if err != nil {
				return err
			}
			return app.plan(cmd.Context(), &planOptions{algorithm: alg, path: args[1]})
		},
	}

	flags := app.root.PersistentFlags()
	flags.StringVarP(&app.opts.configPath, "config", "c", "", "Path to configuration file")
	flags.StringVar(&app.opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&app.opts.cache, "cache", "", "Plan cache backend (none, memory, badger, sqlite, redis)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newAlgorithmsCmd(),
		app.newPlanCmd(),
		app.newBatchCmd(),
		app.newValidateCmd(),
		app.newWatchCmd(),
		app.newHistoryCmd(),
		app.newCacheCmd(),
		app.newSchemaCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// setup loads configuration, applies flag overrides, and initializes logging.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoaderWithOptions(
		config.WithLookup(a.lookup),
		config.WithValidation(false),
	)
	cfg, source, err := loader.Resolve(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if a.opts.logLevel != "" {
		cfg.Logging.Level = a.opts.logLevel
	}
	if a.opts.cache != "" {
		cfg.Cache.Backend = a.opts.cache
	}
	if errs := domainconfig.NewValidator().Validate(cfg); errs.HasErrors() {
		return fmt.Errorf("%w: %w", domainconfig.ErrValidationFailed, errs)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: a.stderr,
	})
	logging.SetLevel(cfg.Logging.Level)

	if source != "" {
		logging.Debug().
			Add(logging.Str("config", source)).
			Add(logging.Operation(cmd.Name())).
			Msg("configuration loaded")
	}

	a.config = cfg
	return nil
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "gridplan version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// newAlgorithmsCmd creates the algorithms command.
func (a *App) newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the available search algorithms",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, alg := range search.Algorithms() {
				fmt.Fprintln(a.stdout, alg)
			}
		},
	}
}
