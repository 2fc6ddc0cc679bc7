package main

import (
	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest repositories or hub assets with author profiles",
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}
