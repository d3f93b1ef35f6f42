package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tervyx/claimpipe/internal/cache"
	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/util"
	"github.com/tervyx/claimpipe/internal/worker"
)

const maxFetchAttempts = 3

// fetchSleepFunc is overridable in tests to skip backoff waits
var fetchSleepFunc = time.Sleep

// Fetcher retrieves product pages politely: robots.txt compliance,
// per-domain rate limiting, and a layered page cache so re-runs don't
// refetch archived pages.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	pages      cache.Cache // nil when caching is disabled
}

// NewFetcher creates a fetcher from the HTTP configuration. pages may
// be nil to disable caching.
func NewFetcher(cfg model.HTTPConfig, pages cache.Cache) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter:   worker.NewLimiter(cfg.RatePerHost, cfg.RateBurst),
		pages:     pages,
	}
}

// FetchPage retrieves one product page, honoring robots.txt and the
// per-domain rate limit. Cached pages are returned without a request.
// Transient failures (5xx, 429, connection errors) are retried with
// backoff; anything else fails immediately.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (string, error) {
	key := cache.PageKey(rawURL)
	if f.pages != nil {
		if data, found := f.pages.Get(key); found {
			return string(data), nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if attempt > 1 {
			fetchSleepFunc(time.Duration(attempt-1) * 2 * time.Second)
		}
		page, err := f.fetch(ctx, rawURL)
		if err == nil {
			if f.pages != nil {
				_ = f.pages.Set(key, []byte(page), 0) // Use cache default TTL
			}
			return page, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return "", err
		}
	}
	return "", lastErr
}

// fetch is one polite request attempt
func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("disallowed by robots.txt: %s", rawURL)
	}

	// robots.txt crawl-delay stacks on top of the per-domain limiter
	if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// isRetryableFetchError reports whether another attempt could help:
// server-side errors, throttling, and connection-level failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, status := range []string{"500", "502", "503", "504", "429"} {
		if strings.Contains(msg, "unexpected status: "+status) {
			return true
		}
	}
	if strings.HasPrefix(msg, "fetch: ") {
		return true
	}
	return false
}
