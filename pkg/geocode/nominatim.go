package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/oss-talent/sourcer-cli/internal/resilience"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// nominatimPlace is one entry of the Nominatim jsonv2 search response.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Region      string `json:"region"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// NominatimProvider geocodes via the community OSM Nominatim service
// (unkeyed). The service's usage policy caps clients at roughly one request
// per second, so the provider enforces its own minimum inter-request delay
// and a small retry budget on top of the fetcher's transient handling.
type NominatimProvider struct {
	fetch Getter
	cache *FileCache
	pacer *rate.Limiter
	retry resilience.RetryConfig
}

// NewNominatimProvider creates a NominatimProvider with usage-policy pacing.
func NewNominatimProvider(fetch Getter, cache *FileCache) *NominatimProvider {
	return &NominatimProvider{
		fetch: fetch,
		cache: cache,
		pacer: rate.NewLimiter(rate.Every(1200*time.Millisecond), 1),
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 2 * time.Second,
			JitterMax:      500 * time.Millisecond,
		},
	}
}

// Name implements Provider.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Available implements Provider.
func (p *NominatimProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, raw string) Result {
	result, key, done := precheck(p.Name(), raw, p.cache)
	if done {
		return result
	}

	raw = strings.TrimSpace(raw)
	params := url.Values{
		"q":              {raw},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}
	reqURL := nominatimSearchURL + "?" + params.Encode()

	out := noMatchResult(p.Name())

	places, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) ([]nominatimPlace, error) {
		if waitErr := p.pacer.Wait(ctx); waitErr != nil {
			return nil, waitErr
		}
		var places []nominatimPlace
		if fetchErr := p.fetch.GetJSON(ctx, reqURL, &places); fetchErr != nil {
			return nil, fetchErr
		}
		return places, nil
	})
	if err != nil {
		// An insufficient-privileges rejection is a policy block, not a
		// transient error: retrying cannot help.
		if resilience.HTTPStatus(err) == http.StatusForbidden {
			out.Status = StatusBlocked
			p.cache.Put(key, out)
			return out
		}
		zap.L().Warn("nominatim geocode call failed",
			zap.String("query", raw),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		out.Status = StatusError
		p.cache.Put(key, out)
		return out
	}

	if len(places) == 0 {
		p.cache.Put(key, out)
		return out
	}

	place := places[0]
	city := place.Address.City
	if city == "" {
		city = place.Address.Town
	}
	if city == "" {
		city = place.Address.Village
	}
	region := place.Address.State
	if region == "" {
		region = place.Address.Region
	}

	out = Result{
		NormalizedAddress: place.DisplayName,
		City:              city,
		Region:            region,
		Country:           place.Address.Country,
		CountryCode:       strings.ToUpper(place.Address.CountryCode),
		Lat:               place.Lat,
		Lon:               place.Lon,
		Provider:          p.Name(),
		Status:            StatusOK,
	}
	p.cache.Put(key, out)
	return out
}
