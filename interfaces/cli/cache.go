package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gridplan/domain/cache"
	"github.com/felixgeelhaar/gridplan/infrastructure/telemetry"
)

// newCacheCmd creates the cache command group.
func (a *App) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the plan cache",
		Long: `Manage the plan cache configured by cache.backend or --cache.

Examples:
  gridplan cache stats --cache badger
  gridplan cache clear --cache redis`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show cache statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withCache(cmd.Context(), func(ctx context.Context, c cache.Cache) error {
					sp, ok := c.(cache.StatsProvider)
					if !ok {
						return fmt.Errorf("cache backend %q does not report statistics", a.config.Cache.Backend)
					}
					s := sp.Stats()
					fmt.Fprintf(a.stdout, "Backend: %s\n", a.config.Cache.Backend)
					fmt.Fprintf(a.stdout, "  Entries: %d\n", s.Size)
					if s.MaxSize > 0 {
						fmt.Fprintf(a.stdout, "  Capacity: %d\n", s.MaxSize)
					}
					fmt.Fprintf(a.stdout, "  Hits: %d\n", s.Hits)
					fmt.Fprintf(a.stdout, "  Misses: %d\n", s.Misses)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached plan",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withCache(cmd.Context(), func(ctx context.Context, c cache.Cache) error {
					if err := c.Clear(ctx); err != nil {
						return fmt.Errorf("failed to clear cache: %w", err)
					}
					fmt.Fprintf(a.stdout, "Cache cleared (%s)\n", a.config.Cache.Backend)
					return nil
				})
			},
		},
	)
	return cmd
}

// withCache opens the configured cache backend for the duration of fn.
// Unlike planning, an unavailable backend is an error here.
func (a *App) withCache(ctx context.Context, fn func(context.Context, cache.Cache) error) (err error) {
	c := &components{}
	pc, err := c.openCache(a.config.Cache, telemetry.NoopMetricsProvider{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if pc == nil {
		return ErrCacheDisabled
	}
	return fn(ctx, pc)
}
