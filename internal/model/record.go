// Package model defines the tabular record types flowing through the
// harvest and enrichment pipelines.
package model

import "sort"

// Record is one row of a harvested dataset: a flat map of column name to
// cell text. Missing and empty cells are equivalent.
type Record map[string]string

// Get returns the cell value for column, "" when absent.
func (r Record) Get(column string) string {
	return r[column]
}

// Set stores value under column.
func (r Record) Set(column, value string) {
	r[column] = value
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of records with an explicit column order, so
// round-tripping a file preserves its layout.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a record and registers any columns it introduces. New columns
// are added in sorted order so output layout stays deterministic.
func (t *Table) Append(r Record) {
	t.EnsureColumns(keysOf(r)...)
	t.Records = append(t.Records, r)
}

// EnsureColumns appends any columns not yet present, preserving the order
// given. Existing columns keep their position.
func (t *Table) EnsureColumns(columns ...string) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range columns {
		if _, ok := seen[c]; !ok {
			t.Columns = append(t.Columns, c)
			seen[c] = struct{}{}
		}
	}
}

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

func keysOf(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Enrichment column names. The geocode columns mirror the JSON field names
// of the cached geocode results, so a cache entry broadcasts onto a record
// one-to-one.
const (
	ColLocationClean     = "owner_location_clean"
	ColLocationCleanHint = "owner_location_clean_hint"

	ColGeoNormalized  = "owner_location_norm"
	ColGeoCity        = "owner_city"
	ColGeoRegion      = "owner_region"
	ColGeoCountry     = "owner_country"
	ColGeoCountryCode = "owner_country_code"
	ColGeoLat         = "owner_lat"
	ColGeoLon         = "owner_lon"
	ColGeoProvider    = "owner_geocode_provider"
	ColGeoStatus      = "owner_geocode_status"
)

// CleanColumns is the pair added by normalization, in output order.
func CleanColumns() []string {
	return []string{ColLocationClean, ColLocationCleanHint}
}

// GeoColumns is the set added by geocoding, in output order.
func GeoColumns() []string {
	return []string{
		ColGeoNormalized,
		ColGeoCity,
		ColGeoRegion,
		ColGeoCountry,
		ColGeoCountryCode,
		ColGeoLat,
		ColGeoLon,
		ColGeoProvider,
		ColGeoStatus,
	}
}
