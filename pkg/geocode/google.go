package geocode

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/resilience"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleResponse is the JSON response from the Google Geocoding API.
type googleResponse struct {
	Results []googleResult `json:"results"`
	Status  string         `json:"status"`
}

type googleResult struct {
	FormattedAddress  string            `json:"formatted_address"`
	AddressComponents []googleComponent `json:"address_components"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type googleComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// GoogleProvider geocodes via the Google Geocoding API (keyed, structured).
type GoogleProvider struct {
	fetch Getter
	cache *FileCache
	key   string
}

// NewGoogleProvider creates a GoogleProvider.
func NewGoogleProvider(fetch Getter, cache *FileCache, key string) *GoogleProvider {
	return &GoogleProvider{fetch: fetch, cache: cache, key: key}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// Available implements Provider.
func (p *GoogleProvider) Available() bool { return p.key != "" }

// Geocode implements Provider. All failure modes are encoded in the result
// status; the outcome of every real network round trip is cached, so a
// given query is sent at most once across the lifetime of the cache file.
func (p *GoogleProvider) Geocode(ctx context.Context, raw string) Result {
	result, key, done := precheck(p.Name(), raw, p.cache)
	if done {
		return result
	}

	// A missing key is a configuration condition, not a network outcome:
	// returned but never persisted to the cache.
	if p.key == "" {
		r := EmptyResult(p.Name())
		r.Status = StatusNoAPIKey
		return r
	}

	raw = strings.TrimSpace(raw)
	params := url.Values{
		"address": {raw},
		"key":     {p.key},
	}

	out := noMatchResult(p.Name())
	var resp googleResponse
	if err := p.fetch.GetJSON(ctx, googleGeocodeURL+"?"+params.Encode(), &resp); err != nil {
		zap.L().Warn("google geocode call failed",
			zap.String("query", raw),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		out.Status = StatusError
		p.cache.Put(key, out)
		return out
	}

	status := strings.ToUpper(strings.TrimSpace(resp.Status))
	if status != "OK" {
		// Provider-native statuses (ZERO_RESULTS, OVER_QUERY_LIMIT, ...)
		// are stored verbatim.
		if status == "" {
			status = string(StatusError)
		}
		out.Status = Status(status)
		p.cache.Put(key, out)
		return out
	}

	if len(resp.Results) == 0 {
		p.cache.Put(key, out)
		return out
	}

	top := resp.Results[0]
	comps := componentMap(top.AddressComponents)

	long := func(ty string) string { return comps[ty].LongName }
	short := func(ty string) string { return comps[ty].ShortName }

	city := long("locality")
	if city == "" {
		city = long("postal_town")
	}
	if city == "" {
		city = long("administrative_area_level_3")
	}

	out = Result{
		NormalizedAddress: top.FormattedAddress,
		City:              city,
		Region:            long("administrative_area_level_1"),
		Country:           long("country"),
		CountryCode:       short("country"),
		Lat:               strconv.FormatFloat(top.Geometry.Location.Lat, 'f', -1, 64),
		Lon:               strconv.FormatFloat(top.Geometry.Location.Lng, 'f', -1, 64),
		Provider:          p.Name(),
		Status:            StatusOK,
	}
	p.cache.Put(key, out)
	return out
}

// componentMap indexes address components by type, first occurrence wins.
func componentMap(comps []googleComponent) map[string]googleComponent {
	m := make(map[string]googleComponent, len(comps))
	for _, c := range comps {
		for _, ty := range c.Types {
			if _, ok := m[ty]; !ok {
				m[ty] = c
			}
		}
	}
	return m
}
