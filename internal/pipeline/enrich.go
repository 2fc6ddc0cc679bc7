// Package pipeline drives dataset enrichment: normalize owner locations,
// geocode the distinct cleaned strings, and broadcast the results back onto
// every record.
package pipeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/model"
	"github.com/oss-talent/sourcer-cli/pkg/geocode"
)

// Enricher runs the enrichment pass over one table. It is deliberately
// single-threaded: the community geocoder is paced per usage policy and the
// cache is not safe for concurrent writers, so parallelism buys nothing.
type Enricher struct {
	Provider geocode.Provider
	Cache    *geocode.FileCache

	// LocationColumn is the raw input column, e.g. "owner_location".
	LocationColumn string

	// CheckpointEvery flushes the cache after this many live lookups, so an
	// interrupted run loses at most one checkpoint window of paid calls.
	CheckpointEvery int

	// CheckpointPause sleeps after each checkpoint flush to pace sustained
	// provider traffic. Zero means the 200ms default; negative disables it.
	CheckpointPause time.Duration
}

// Run enriches the table in place and returns per-status counts over the
// distinct cleaned strings that were resolved.
func (e *Enricher) Run(ctx context.Context, table *model.Table) (*Report, error) {
	checkpointEvery := e.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 50
	}
	checkpointPause := e.CheckpointPause
	if checkpointPause == 0 {
		checkpointPause = 200 * time.Millisecond
	}

	log := zap.L().With(
		zap.String("provider", e.Provider.Name()),
		zap.String("column", e.LocationColumn),
	)
	log.Info("enrichment starting", zap.Int("records", table.Len()))

	table.EnsureColumns(model.CleanColumns()...)
	table.EnsureColumns(model.GeoColumns()...)

	// Pass 1: normalize every record and collect the distinct cleaned
	// strings that need a geocode result.
	distinct := make(map[string]struct{})
	for _, rec := range table.Records {
		n := geocode.Normalize(rec.Get(e.LocationColumn))
		rec.Set(model.ColLocationClean, n.Clean)
		rec.Set(model.ColLocationCleanHint, string(n.Hint))
		if n.Clean != "" {
			distinct[n.Clean] = struct{}{}
		}
	}

	queries := make([]string, 0, len(distinct))
	for q := range distinct {
		queries = append(queries, q)
	}
	sort.Strings(queries)
	log.Info("normalization complete",
		zap.Int("records", table.Len()),
		zap.Int("distinct", len(queries)),
	)

	// Pass 2: resolve each distinct string once. Results land in the cache,
	// which pass 3 reads back; sentinel and cached strings cost nothing.
	report := NewReport()
	resolved := make(map[string]geocode.Result, len(queries))
	var live int
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, wasCached := e.Cache.Get(geocode.Key(e.Provider.Name(), q))
		res := e.Provider.Geocode(ctx, q)
		resolved[q] = res
		report.Add(res.Status)

		if wasCached {
			report.CacheHits++
			continue
		}
		if res.Status == geocode.StatusSkipped || res.Status == geocode.StatusNoAPIKey ||
			res.Status == geocode.StatusUnknownProvider {
			continue
		}

		live++
		if live%checkpointEvery == 0 {
			if err := e.Cache.Flush(); err != nil {
				log.Warn("checkpoint flush failed", zap.Error(err))
			} else {
				log.Info("checkpoint", zap.Int("resolved", live))
			}
			if checkpointPause > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(checkpointPause):
				}
			}
		}
	}

	// Pass 3: broadcast. Every record with the same cleaned string gets the
	// same geocode fields; empty cleans get an explicit EMPTY marker.
	for _, rec := range table.Records {
		clean := rec.Get(model.ColLocationClean)
		res, ok := resolved[clean]
		if clean == "" || !ok {
			res = geocode.EmptyResult(e.Provider.Name())
		}
		applyResult(rec, res)
	}

	if err := e.Cache.Flush(); err != nil {
		return nil, err
	}

	report.Records = table.Len()
	report.Distinct = len(queries)
	report.LiveLookups = live
	log.Info("enrichment complete",
		zap.Int("distinct", report.Distinct),
		zap.Int("live_lookups", report.LiveLookups),
		zap.Int("cache_hits", report.CacheHits),
	)
	return report, nil
}

func applyResult(rec model.Record, res geocode.Result) {
	rec.Set(model.ColGeoNormalized, res.NormalizedAddress)
	rec.Set(model.ColGeoCity, res.City)
	rec.Set(model.ColGeoRegion, res.Region)
	rec.Set(model.ColGeoCountry, res.Country)
	rec.Set(model.ColGeoCountryCode, res.CountryCode)
	rec.Set(model.ColGeoLat, res.Lat)
	rec.Set(model.ColGeoLon, res.Lon)
	rec.Set(model.ColGeoProvider, res.Provider)
	rec.Set(model.ColGeoStatus, string(res.Status))
}
