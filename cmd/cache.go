package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/oss-talent/sourcer-cli/pkg/geocode"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and invalidate the geocode result cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache size and per-status entry counts",
	RunE: func(_ *cobra.Command, _ []string) error {
		cache := geocode.OpenCache(cfg.Geo.CachePath)

		fmt.Fprintf(os.Stdout, "Cache: %s (%d entries)\n", cfg.Geo.CachePath, cache.Len())

		counts := cache.StatusCounts()
		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, string(s))
		}
		sort.Strings(statuses)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, s := range statuses {
			fmt.Fprintf(w, "%s\t%d\n", s, counts[geocode.Status(s)])
		}
		return w.Flush()
	},
}

var (
	cacheClearStatus string
	cacheClearKey    string
	cacheClearAll    bool
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cache entries by status, by key, or entirely",
	Long:  "Removes entries so the next enrichment re-issues live lookups for them. Typical use: clear --status ERROR after a provider outage.",
	RunE: func(_ *cobra.Command, _ []string) error {
		cache := geocode.OpenCache(cfg.Geo.CachePath)

		var dropped int
		switch {
		case cacheClearAll:
			dropped = cache.Len()
			for _, k := range cache.Keys() {
				cache.Delete(k)
			}
		case cacheClearStatus != "":
			dropped = cache.ClearStatus(geocode.Status(cacheClearStatus))
		case cacheClearKey != "":
			if cache.Delete(cacheClearKey) {
				dropped = 1
			}
		default:
			return eris.New("cache clear: one of --status, --key, or --all is required")
		}

		if err := cache.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Dropped %d entries from %s\n", dropped, cfg.Geo.CachePath)
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().StringVar(&cacheClearStatus, "status", "", "drop all entries with this status (e.g. ERROR)")
	cacheClearCmd.Flags().StringVar(&cacheClearKey, "key", "", "drop one entry by cache key (provider:query)")
	cacheClearCmd.Flags().BoolVar(&cacheClearAll, "all", false, "drop every entry")

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
