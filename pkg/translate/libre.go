package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/adforge/adforge/pkg/httputil"
)

const libreBase = "https://libretranslate.com"

// Libre calls a LibreTranslate instance. It is the fallback backend:
// slower and rougher than the Google endpoint but without its rate
// limits when self-hosted.
type Libre struct {
	base   string
	apiKey string
	http   *http.Client
}

// NewLibre creates a Libre backend. An empty base uses the public
// instance; apiKey may be empty for keyless instances.
func NewLibre(base, apiKey string) *Libre {
	if base == "" {
		base = libreBase
	}
	return &Libre{base: strings.TrimSuffix(base, "/"), apiKey: apiKey, http: newHTTPClient()}
}

func (l *Libre) Name() string { return "libre" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *Libre) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload, err := json.Marshal(libreRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", err
	}

	var out libreResponse
	err = httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.base+"/translate", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		rc, err := do(l.http, req)
		if err != nil {
			return err
		}
		defer rc.Close()
		return json.NewDecoder(rc).Decode(&out)
	})
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrBadTranslation, out.Error)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("%w: empty translation", ErrBadTranslation)
	}
	return out.TranslatedText, nil
}
