// Package fetcher performs resilient HTTP GETs against quota-limited APIs.
// It is the only place retry and backoff policy is defined; the geocode
// providers and harvest clients all call through it.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/oss-talent/sourcer-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Token        string // optional bearer token
	Accept       string // optional Accept header
	Timeout      time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	RateLimiters map[string]*rate.Limiter
}

// HTTPFetcher implements resilient GETs using net/http with bounded retries,
// exponential backoff with jitter, and per-host rate limiting.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns the default per-host rate limiters.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"api.github.com": rate.NewLimiter(5, 5),
		"huggingface.co": rate.NewLimiter(5, 5),
	}
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 6
	}
	if opts.BaseBackoff == 0 {
		opts.BaseBackoff = 1800 * time.Millisecond
	}
	if opts.MaxBackoff == 0 {
		opts.MaxBackoff = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "sourcer-cli/1.0"
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests to
// inject rewrite transports.
func (f *HTTPFetcher) WithHTTPClient(hc *http.Client) *HTTPFetcher {
	f.client = hc
	return f
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return f.limiters[u.Host]
}

// Get performs a single logical GET. Up to MaxAttempts attempts; 401 fails
// immediately with an AuthError, 404 with a NotFoundError, 429/502/503/504
// and transport errors are retried with backoff, any other non-2xx status
// fails immediately with an HTTPError. Rate-limit responses carrying an
// X-RateLimit-Reset header with exhausted remaining quota sleep until the
// reset instead of backing off blindly.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if f.opts.Accept != "" {
		req.Header.Set("Accept", f.opts.Accept)
	}
	if f.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.opts.Token)
	}

	jitter := time.Second
	if f.opts.BaseBackoff < jitter {
		jitter = f.opts.BaseBackoff
	}
	backoffCfg := resilience.RetryConfig{
		InitialBackoff: f.opts.BaseBackoff,
		MaxBackoff:     f.opts.MaxBackoff,
		JitterMax:      jitter,
	}
	lim := f.limiterFor(rawURL)

	var lastErr error
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "fetch: rate limiter wait")
			}
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "fetch: request cancelled")
			}
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if !f.retryPause(ctx, attempt, backoffCfg) {
				return nil, eris.Wrap(lastErr, "GET failed after retries")
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			_ = resp.Body.Close()
			return nil, &resilience.AuthError{URL: rawURL}

		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, &resilience.NotFoundError{URL: rawURL}

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
			wait, quotaHit := rateLimitWait(resp)
			_ = resp.Body.Close()
			if quotaHit {
				lastErr = resilience.NewTransientError(eris.Errorf("rate limited by %s", rawURL), resp.StatusCode)
				if attempt >= f.opts.MaxAttempts {
					return nil, eris.Wrap(lastErr, "GET failed after retries")
				}
				zap.L().Warn("rate limit hit, sleeping until reset",
					zap.String("url", rawURL),
					zap.Duration("wait", wait),
				)
				if sleepErr := resilience.Sleep(ctx, wait); sleepErr != nil {
					return nil, eris.Errorf("fetch: cancelled waiting for rate limit reset on %s", rawURL)
				}
				continue
			}
			if resp.StatusCode == http.StatusForbidden {
				// A 403 without quota headers is a policy rejection, not transient.
				return nil, &resilience.HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
			}
			lastErr = resilience.NewTransientError(eris.Errorf("http 429 from %s", rawURL), resp.StatusCode)
			zap.L().Warn("rate limited (429), backing off",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
			)
			if !f.retryPause(ctx, attempt, backoffCfg) {
				return nil, eris.Wrap(lastErr, "GET failed after retries")
			}
			continue

		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = resilience.NewTransientError(eris.Errorf("http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
			zap.L().Warn("server error, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			if !f.retryPause(ctx, attempt, backoffCfg) {
				return nil, eris.Wrap(lastErr, "GET failed after retries")
			}
			continue

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			_ = resp.Body.Close()
			return nil, &resilience.HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "GET failed after retries")
}

// retryPause sleeps the backoff before the next attempt. It reports false
// when the attempt budget is spent or the context was cancelled mid-sleep;
// the caller then returns the exhaustion error without a trailing sleep.
func (f *HTTPFetcher) retryPause(ctx context.Context, attempt int, cfg resilience.RetryConfig) bool {
	if attempt >= f.opts.MaxAttempts {
		return false
	}
	return resilience.Sleep(ctx, resilience.Backoff(attempt, cfg)) == nil
}

// GetJSON performs a Get and decodes the response body into v.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := f.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "fetch: read body from %s", rawURL)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return eris.Wrapf(err, "fetch: decode json from %s", rawURL)
	}
	return nil
}

// rateLimitWait inspects GitHub-style quota headers. It returns how long to
// sleep and whether the response indicates an exhausted quota window (as
// opposed to ordinary throttling).
func rateLimitWait(resp *http.Response) (time.Duration, bool) {
	reset := resp.Header.Get("X-RateLimit-Reset")
	if reset == "" {
		return 0, false
	}
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining != "" && remaining != "0" {
		return 0, false
	}
	epoch, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return 0, false
	}
	wait := time.Until(time.Unix(epoch, 0)) + 2*time.Second
	if wait < 0 {
		wait = 0
	}
	return wait, true
}
