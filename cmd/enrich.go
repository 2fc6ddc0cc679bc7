package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/oss-talent/sourcer-cli/internal/pipeline"
	"github.com/oss-talent/sourcer-cli/internal/recordio"
	"github.com/oss-talent/sourcer-cli/internal/store"
)

var (
	enrichIn          string
	enrichOut         string
	enrichLocationCol string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Normalize and geocode owner locations in a harvested table",
	Long:  "Reads a harvested XLSX/CSV table, normalizes the raw location column, geocodes each distinct cleaned location once, and writes the table back with the clean and geocode columns attached.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		table, err := recordio.Read(enrichIn)
		if err != nil {
			return err
		}
		if !table.HasColumn(enrichLocationCol) {
			return eris.Errorf("input %s has no column %q", enrichIn, enrichLocationCol)
		}

		cache, provider, err := openGeo()
		if err != nil {
			return err
		}
		defer cache.Close() //nolint:errcheck

		enricher := &pipeline.Enricher{
			Provider:        provider,
			Cache:           cache,
			LocationColumn:  enrichLocationCol,
			CheckpointEvery: cfg.Geo.CheckpointEvery,
		}
		report, err := enricher.Run(ctx, table)
		if err != nil {
			return err
		}

		written, err := recordio.Write(enrichOut, table)
		if err != nil {
			return err
		}

		recordRun(ctx, store.Run{
			Kind:         "enrich",
			Input:        enrichIn,
			Output:       written,
			Records:      report.Records,
			Distinct:     report.Distinct,
			LiveLookups:  report.LiveLookups,
			CacheHits:    report.CacheHits,
			StatusCounts: statusCounts(report),
		})

		fmt.Fprintf(os.Stdout, "Enriched %s -> %s\n%s\n", enrichIn, written, report.Summary())
		return nil
	},
}

func statusCounts(r *pipeline.Report) map[string]int {
	out := make(map[string]int, len(r.ByStatus))
	for s, n := range r.ByStatus {
		out[string(s)] = n
	}
	return out
}

func init() {
	enrichCmd.Flags().StringVar(&enrichIn, "in", "", "input table (.xlsx or .csv)")
	enrichCmd.Flags().StringVar(&enrichOut, "out", "", "output table (.xlsx or .csv)")
	enrichCmd.Flags().StringVar(&enrichLocationCol, "location-col", "owner_location", "raw location column to enrich")
	_ = enrichCmd.MarkFlagRequired("in")
	_ = enrichCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(enrichCmd)
}
