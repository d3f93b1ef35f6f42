package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tervyx/claimpipe/internal/cache"
	"github.com/tervyx/claimpipe/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "test-agent",
		MaxBodyBytes: 1 << 20,
		RatePerHost:  100,
		RateBurst:    10,
	}
}

// pageServer serves product pages and answers robots.txt without
// counting it against the attempt counter
func pageServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
}

func TestFetchPage_Success(t *testing.T) {
	server := pageServer(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	})
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), nil)
	page, err := fetcher.FetchPage(context.Background(), server.URL+"/dp/B0X")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page != "<html><body>OK</body></html>" {
		t.Errorf("unexpected page: %s", page)
	}
}

func TestFetchPage_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := pageServer(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	})
	defer server.Close()

	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig(), nil)
	page, err := fetcher.FetchPage(context.Background(), server.URL+"/dp/B0X")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if page != "<html>OK</html>" {
		t.Errorf("unexpected page: %s", page)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchPage_PermanentFailureNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := pageServer(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig(), nil)
	if _, err := fetcher.FetchPage(context.Background(), server.URL+"/dp/B0X"); err == nil {
		t.Fatal("expected error for 404")
	}
	if attempts.Load() != 1 {
		t.Errorf("404 must not be retried, got %d attempts", attempts.Load())
	}
}

func TestFetchPage_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := pageServer(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig(), nil)
	if _, err := fetcher.FetchPage(context.Background(), server.URL+"/dp/B0X"); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchPage_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /dp/\n")
			return
		}
		_, _ = fmt.Fprint(w, "<html>page</html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), nil)
	if _, err := fetcher.FetchPage(context.Background(), server.URL+"/dp/B0X"); err == nil {
		t.Error("expected robots.txt disallow to block the fetch")
	}
}

func TestFetchPage_CacheSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	server := pageServer(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, "<html>cached</html>")
	})
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), cache.NewMemoryCache(time.Minute, time.Minute))
	url := server.URL + "/dp/B0X"

	for i := 0; i < 3; i++ {
		page, err := fetcher.FetchPage(context.Background(), url)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if page != "<html>cached</html>" {
			t.Errorf("fetch %d: unexpected page %s", i, page)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 origin hit, got %d", hits.Load())
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	cases := []struct {
		err       string
		retryable bool
	}{
		{"unexpected status: 503 Service Unavailable", true},
		{"unexpected status: 500 Internal Server Error", true},
		{"unexpected status: 429 Too Many Requests", true},
		{"unexpected status: 404 Not Found", false},
		{"unexpected status: 403 Forbidden", false},
		{"fetch: connection refused", true},
		{"create request: invalid URL", false},
		{"read body: unexpected EOF", false},
	}
	for _, tc := range cases {
		if got := isRetryableFetchError(fmt.Errorf("%s", tc.err)); got != tc.retryable {
			t.Errorf("isRetryableFetchError(%q) = %v, want %v", tc.err, got, tc.retryable)
		}
	}

	if isRetryableFetchError(nil) {
		t.Error("nil error must not be retryable")
	}
}
