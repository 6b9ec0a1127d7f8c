package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/jengatower/pkg/observability"
)

// maxBody caps a fetched document. The country tables are a few hundred KB.
const maxBody = 64 << 20

// Client fetches documents over HTTP with retry.
type Client struct {
	HTTP     *http.Client
	Attempts int
	Delay    time.Duration
}

// NewClient returns a Client with the package defaults.
func NewClient() *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Attempts: 3,
		Delay:    time.Second,
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Fetch returns the response body of a GET to rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	hooks := observability.HTTP()

	var body []byte
	err = c.retry(ctx, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
		if attempt > 1 {
			req.Header.Set("X-Retry-Attempt", strconv.Itoa(attempt))
		}
		start := time.Now()

		resp, err := c.HTTP.Do(req)
		if err != nil {
			hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			serr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return &RetryableError{Err: serr}
			}
			return serr
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return &RetryableError{Err: err}
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
