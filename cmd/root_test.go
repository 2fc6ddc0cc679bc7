package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-talent/sourcer-cli/internal/pipeline"
	"github.com/oss-talent/sourcer-cli/pkg/geocode"
)

func findCommand(t *testing.T, parent *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %q not registered under %q", name, parent.Name())
	return nil
}

func TestCommandTree(t *testing.T) {
	enrich := findCommand(t, rootCmd, "enrich")
	require.NotNil(t, enrich.Flags().Lookup("in"))
	require.NotNil(t, enrich.Flags().Lookup("out"))
	assert.Equal(t, "owner_location", enrich.Flags().Lookup("location-col").DefValue)

	harvest := findCommand(t, rootCmd, "harvest")
	gh := findCommand(t, harvest, "github")
	assert.Equal(t, "lisp", gh.Flags().Lookup("query").DefValue)
	hf := findCommand(t, harvest, "hf")
	assert.Equal(t, "true", hf.Flags().Lookup("extended").DefValue)

	cache := findCommand(t, rootCmd, "cache")
	findCommand(t, cache, "status")
	clear := findCommand(t, cache, "clear")
	require.NotNil(t, clear.Flags().Lookup("status"))

	findCommand(t, rootCmd, "runs")
}

func TestStatusCounts(t *testing.T) {
	r := pipeline.NewReport()
	r.Add(geocode.StatusOK)
	r.Add(geocode.StatusOK)
	r.Add(geocode.StatusNoMatch)

	assert.Equal(t, map[string]int{"OK": 2, "NO_MATCH": 1}, statusCounts(r))
}
