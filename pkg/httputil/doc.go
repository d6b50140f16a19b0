// Package httputil provides retry support for outbound HTTP clients.
//
// The translation backends and the HTTP template loader wrap their
// requests with [Retry] so transient failures recover on their own:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried; anything else is
// returned immediately. It uses exponential backoff to avoid thundering
// herd:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchTranslation()
//	})
package httputil
