// Package translate localizes creative copy through public translation
// endpoints.
//
// Two backends are provided: the Google web endpoint (no key, rate
// limited) and a LibreTranslate instance. The [Translator] tries them
// in order per string and falls back on any failure. Results are
// validated before acceptance; a backend that echoes the input or
// returns an empty string is treated as a failure so the next backend
// gets a chance.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/adforge/adforge/pkg/httputil"
	"github.com/adforge/adforge/pkg/observability"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrBadTranslation is returned when a backend answered but the
	// payload is unusable.
	ErrBadTranslation = errors.New("unusable translation")
)

// Backend translates a single string between two languages.
type Backend interface {
	// Name identifies the backend in cache keys and logs.
	Name() string

	Translate(ctx context.Context, text, source, target string) (string, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// do runs one request with retry-aware status mapping and HTTP hooks.
func do(client *http.Client, req *http.Request) (io.ReadCloser, error) {
	start := time.Now()
	observability.HTTP().OnRequest(req.Context(), req.Method, req.URL.Host, req.URL.Path)

	resp, err := client.Do(req)
	if err != nil {
		observability.HTTP().OnError(req.Context(), req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(req.Context(), req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func urlEncode(s string) string { return url.QueryEscape(s) }
