package geocode

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/oss-talent/sourcer-cli/internal/fetcher"
	"github.com/oss-talent/sourcer-cli/internal/resilience"
)

// rewriteTransport redirects every request to the test server regardless of
// the original host, preserving path and query. The providers target fixed
// production URLs, so tests reroute at the transport layer.
type rewriteTransport struct {
	target *url.URL
	inner  http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return t.inner.RoundTrip(req)
}

func testGetter(t *testing.T, srv *httptest.Server) *fetcher.HTTPFetcher {
	t.Helper()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		MaxAttempts: 2,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})
	return f.WithHTTPClient(&http.Client{
		Timeout: 5 * time.Second,
		Transport: &rewriteTransport{
			target: target,
			inner:  http.DefaultTransport,
		},
	})
}

func tempCache(t *testing.T) *FileCache {
	t.Helper()
	return OpenCache(filepath.Join(t.TempDir(), "cache.json"))
}

// fastNominatim disables the usage-policy pacing so tests do not wait.
func fastNominatim(t *testing.T, srv *httptest.Server, cache *FileCache) *NominatimProvider {
	t.Helper()
	p := NewNominatimProvider(testGetter(t, srv), cache)
	p.pacer = rate.NewLimiter(rate.Inf, 1)
	p.retry = resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		JitterMax:      time.Millisecond,
	}
	return p
}
