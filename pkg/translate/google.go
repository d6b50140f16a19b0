package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/adforge/adforge/pkg/httputil"
)

const googleWebBase = "https://translate.googleapis.com"

// GoogleWeb calls the keyless Google web translation endpoint. It is
// the primary backend: fast and accurate, but aggressively rate
// limited, so failures here are expected and non-fatal.
type GoogleWeb struct {
	base string
	http *http.Client
}

// NewGoogleWeb creates a GoogleWeb backend. An empty base uses the
// public endpoint.
func NewGoogleWeb(base string) *GoogleWeb {
	if base == "" {
		base = googleWebBase
	}
	return &GoogleWeb{base: strings.TrimSuffix(base, "/"), http: newHTTPClient()}
}

func (g *GoogleWeb) Name() string { return "google" }

func (g *GoogleWeb) Translate(ctx context.Context, text, source, target string) (string, error) {
	u := fmt.Sprintf("%s/translate_a/single?client=gtx&sl=%s&tl=%s&dt=t&q=%s",
		g.base, urlEncode(source), urlEncode(target), urlEncode(text))

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		rc, err := do(g.http, req)
		if err != nil {
			return err
		}
		defer rc.Close()
		body, err = io.ReadAll(rc)
		return err
	})
	if err != nil {
		return "", err
	}
	return parseGtx(body)
}

// parseGtx extracts the translation from the gtx response shape, a
// nested array whose first element lists segments of the form
// [translated, original, ...]. Segments are concatenated in order.
func parseGtx(data []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) == 0 {
		return "", fmt.Errorf("%w: unexpected response shape", ErrBadTranslation)
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("%w: unexpected segment shape", ErrBadTranslation)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty translation", ErrBadTranslation)
	}
	return b.String(), nil
}
