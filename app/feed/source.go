package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/their-side/app/metrics"
)

// Source yields the raw bytes of a feed document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// FetchError reports a feed that could not be retrieved or parsed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch feed %s: HTTP error: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var _ Source = (*HTTPSource)(nil)

// HTTPSource fetches the feed over HTTP, once per call.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewHTTPSource returns a source for url. A fetchRate of 0 disables the
// outbound rate cap.
func NewHTTPSource(url string, httpClient *http.Client, userAgent string, timeout time.Duration, fetchRate float64) *HTTPSource {
	s := &HTTPSource{
		url:        url,
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
	if fetchRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(fetchRate), max(1, int(fetchRate)))
	}
	return s
}

func (s *HTTPSource) Location() string {
	return s.url
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := s.fetch(ctx)
	metrics.ObserveFeedFetch(time.Since(start), err)
	return data, err
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: s.url, Err: err}
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return fetchURL(ctx, s.httpClient, s.url, s.userAgent)
}

func fetchURL(ctx context.Context, httpClient *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}
