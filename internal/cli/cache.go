package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/bookpurr/cache"
)

var errNoCache = errors.New("no synthesis cache configured (set --cache or cache in the config file)")

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the synthesis cache",
	}
	cmd.AddCommand(newCacheStatsCmd(a), newCachePruneCmd(a))
	return cmd
}

func newCacheStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many chunks the cache holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCache(cmd.Context(), func(c *cache.SynthesisCache) error {
				stats, err := c.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Sprint(a.cfg.CachePath))
				fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %s of audio\n", stats.Entries, formatBytes(stats.Bytes))
				return nil
			})
		},
	}
}

func newCachePruneCmd(a *app) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached chunks that have not been used recently",
		Long: `Remove every cached chunk whose last use is older than --older-than. A narration
touches each chunk it reads, so chunks of books still being narrated stay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative, got %s", olderThan)
			}
			return a.withCache(cmd.Context(), func(c *cache.SynthesisCache) error {
				removed, err := c.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				a.logger.Info("Pruned synthesis cache", "removed", removed, "older_than", olderThan)
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Sprintf("pruned %d entries", removed))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum time since last use")
	return cmd
}

func (a *app) withCache(ctx context.Context, fn func(*cache.SynthesisCache) error) error {
	if a.cfg.CachePath == "" {
		return errNoCache
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := cache.Open(ctx, a.cfg.CachePath, cache.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("failed to open synthesis cache: %w", err)
	}
	return joinClose(fn(c), c.Close)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
