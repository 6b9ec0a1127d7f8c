// Package httputil fetches remote dataset documents.
//
// [Client.Fetch] issues a GET and retries transient failures (network
// errors, 5xx responses, 429 rate limits) with a doubling wait capped at
// 30 seconds. Other 4xx responses fail immediately. Retried requests carry
// an X-Retry-Attempt header.
//
// Default settings:
//
//   - Attempts: 3
//   - Initial wait: 1 second
//   - Request timeout: 30 seconds
package httputil
