package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/model"
	"github.com/oss-talent/sourcer-cli/internal/recordio"
	"github.com/oss-talent/sourcer-cli/internal/store"
	"github.com/oss-talent/sourcer-cli/pkg/huggingface"
)

var (
	hfDatasets bool
	hfExtended bool
	hfMax      int
	hfOut      string
)

var harvestHFCmd = &cobra.Command{
	Use:   "hf",
	Short: "Harvest Hugging Face models or datasets with author profiles",
	Long:  "Runs the retrieval-focused query plan against the Hugging Face Hub, deduplicates hits, filters by last-modified year, resolves author namespaces, and writes an XLSX/CSV table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind := huggingface.KindModels
		if hfDatasets {
			kind = huggingface.KindDatasets
		}
		max := hfMax
		if max == 0 {
			max = cfg.HF.MaxAssets
		}

		client := huggingface.NewClient(newFetcher(cfg.HF.Token),
			huggingface.WithLimitPerQuery(cfg.HF.LimitPerQuery))

		queries := huggingface.Queries(kind, hfExtended)
		zap.L().Info("harvest starting",
			zap.String("kind", string(kind)),
			zap.Int("queries", len(queries)),
			zap.Int("max", max),
		)

		assets, err := client.SearchAll(ctx, kind, queries,
			cfg.HF.StartYear, cfg.HF.EndYear, max)
		if err != nil {
			return err
		}

		table := model.NewTable(huggingface.HarvestColumns()...)
		for _, asset := range assets {
			author, authorType, err := client.Author(ctx, asset.Namespace())
			if err != nil {
				return err
			}
			table.Append(huggingface.RecordFor(client, kind, asset, author, authorType))
		}

		written, err := recordio.Write(hfOut, table)
		if err != nil {
			return err
		}

		recordRun(ctx, store.Run{
			Kind:    "harvest_hf",
			Input:   string(kind),
			Output:  written,
			Records: table.Len(),
		})

		fmt.Fprintf(os.Stdout, "Harvested %d %s -> %s\n", table.Len(), kind, written)
		return nil
	},
}

func init() {
	harvestHFCmd.Flags().BoolVar(&hfDatasets, "datasets", false, "harvest datasets instead of models")
	harvestHFCmd.Flags().BoolVar(&hfExtended, "extended", true, "include the extended query plan")
	harvestHFCmd.Flags().IntVar(&hfMax, "max", 0, "maximum assets to collect (0 = config default)")
	harvestHFCmd.Flags().StringVar(&hfOut, "out", "hf_assets.xlsx", "output table (.xlsx or .csv)")

	harvestCmd.AddCommand(harvestHFCmd)
}
