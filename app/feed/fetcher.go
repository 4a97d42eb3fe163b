package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError reports a feed response other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status code %d for %s", e.StatusCode, e.URL)
}

// Response is a feed response whose body the caller must close.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch issues a GET for url. Errors are transport failures only; any HTTP
// status is returned to the caller in the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
