package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/config"
	"github.com/oss-talent/sourcer-cli/internal/fetcher"
	"github.com/oss-talent/sourcer-cli/internal/store"
	"github.com/oss-talent/sourcer-cli/pkg/geocode"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sourcer-cli",
	Short: "Open-source talent sourcing pipeline",
	Long:  "Harvests repositories and model/dataset listings with author profiles, then normalizes and geocodes author locations into analysis-ready tables.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newFetcher builds the resilient HTTP fetcher from config. token may be
// empty for unauthenticated access.
func newFetcher(token string) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Token:        token,
		Accept:       "application/json",
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxAttempts:  cfg.Fetch.MaxAttempts,
		BaseBackoff:  time.Duration(cfg.Fetch.BaseBackoffMs) * time.Millisecond,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// openGeo opens the geocode cache and selects the provider, loading any
// configured alias overrides first.
func openGeo() (*geocode.FileCache, geocode.Provider, error) {
	if cfg.Geo.AliasPath != "" {
		if err := geocode.LoadAliases(cfg.Geo.AliasPath); err != nil {
			return nil, nil, err
		}
	}

	cache := geocode.OpenCache(cfg.Geo.CachePath)
	provider := geocode.ForName(cfg.Geo.Provider, geocode.Deps{
		Fetcher:   newFetcher(""),
		Cache:     cache,
		GoogleKey: cfg.Geo.GoogleKey,
	})
	return cache, provider, nil
}

// openRunLog opens and migrates the run log database.
func openRunLog(ctx context.Context) (*store.RunLog, error) {
	log, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := log.Migrate(ctx); err != nil {
		_ = log.Close()
		return nil, err
	}
	return log, nil
}

// recordRun logs a completed run, warning rather than failing: bookkeeping
// must never undo a finished harvest.
func recordRun(ctx context.Context, run store.Run) {
	log, err := openRunLog(ctx)
	if err != nil {
		zap.L().Warn("run log unavailable", zap.Error(err))
		return
	}
	defer log.Close() //nolint:errcheck

	if _, err := log.Record(ctx, run); err != nil {
		zap.L().Warn("run log write failed", zap.Error(err))
	}
}
