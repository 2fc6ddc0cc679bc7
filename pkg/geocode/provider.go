// Package geocode turns free-text owner/author location strings into
// normalized geographic fields via Google (keyed) or Nominatim (community)
// backends, memoized in a durable file cache.
package geocode

import (
	"context"
	"strings"
)

// Status is the terminal outcome of a geocode attempt. Providers never
// return errors; every failure mode is encoded here. Provider-native
// non-OK statuses (e.g. ZERO_RESULTS, OVER_QUERY_LIMIT) are stored
// verbatim alongside these.
type Status string

const (
	StatusOK              Status = "OK"
	StatusEmpty           Status = "EMPTY"
	StatusSkipped         Status = "SKIPPED"
	StatusNoAPIKey        Status = "NO_API_KEY"
	StatusNoMatch         Status = "NO_MATCH"
	StatusBlocked         Status = "OSM_403_BLOCKED"
	StatusError           Status = "ERROR"
	StatusUnknownProvider Status = "UNKNOWN_PROVIDER"
)

// Result holds the geocoding output for one location string. Latitude and
// longitude are decimal degrees kept as text to avoid locale-dependent
// numeric formatting; both are empty unless Status is OK. The JSON field
// names double as the enriched record column names.
type Result struct {
	NormalizedAddress string `json:"owner_location_norm"`
	City              string `json:"owner_city"`
	Region            string `json:"owner_region"`
	Country           string `json:"owner_country"`
	CountryCode       string `json:"owner_country_code"`
	Lat               string `json:"owner_lat"`
	Lon               string `json:"owner_lon"`
	Provider          string `json:"owner_geocode_provider"`
	Status            Status `json:"owner_geocode_status"`
}

// EmptyResult returns a blank result for the given provider with status EMPTY.
func EmptyResult(provider string) Result {
	return Result{Provider: provider, Status: StatusEmpty}
}

// SkippedResult returns a blank result with status SKIPPED (sentinel input).
func SkippedResult(provider string) Result {
	return Result{Provider: provider, Status: StatusSkipped}
}

func noMatchResult(provider string) Result {
	return Result{Provider: provider, Status: StatusNoMatch}
}

// Provider is a single geocoding backend. Geocode never fails; all outcome
// kinds are statuses on the Result.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, raw string) Result
	Available() bool
}

// Getter is the slice of the resilient fetcher the providers depend on.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Deps carries the collaborators a provider needs.
type Deps struct {
	Fetcher   Getter
	Cache     *FileCache
	GoogleKey string
}

// ForName selects the active provider. An empty name defaults to Google
// when a key is configured, Nominatim otherwise. An explicitly unknown
// name yields a provider that reports UNKNOWN_PROVIDER without ever
// issuing a network call.
func ForName(name string, deps Deps) Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		if deps.GoogleKey != "" {
			return NewGoogleProvider(deps.Fetcher, deps.Cache, deps.GoogleKey)
		}
		return NewNominatimProvider(deps.Fetcher, deps.Cache)
	case "google":
		return NewGoogleProvider(deps.Fetcher, deps.Cache, deps.GoogleKey)
	case "nominatim":
		return NewNominatimProvider(deps.Fetcher, deps.Cache)
	default:
		return &unknownProvider{name: strings.ToLower(strings.TrimSpace(name))}
	}
}

type unknownProvider struct {
	name string
}

func (p *unknownProvider) Name() string    { return p.name }
func (p *unknownProvider) Available() bool { return false }

func (p *unknownProvider) Geocode(_ context.Context, _ string) Result {
	return Result{Provider: p.name, Status: StatusUnknownProvider}
}

// precheck handles the shared short-circuit paths: empty input, sentinel
// input, and cache hits. It returns the result and true when no provider
// call is needed, otherwise the cache key for the live call.
func precheck(provider string, raw string, cache *FileCache) (Result, string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return EmptyResult(provider), "", true
	}
	if IsSentinel(raw) {
		return SkippedResult(provider), "", true
	}
	key := Key(provider, raw)
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			return cached, key, true
		}
	}
	return Result{}, key, false
}
