package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/adforge/adforge/pkg/cache"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/observability"
	"github.com/disintegration/imaging"
)

// Rasterizer shoots a self-contained HTML document at the given pixel
// size. Implementations own the browser lifecycle.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc string, width, height int, scale float64) (image.Image, error)
}

// ===== Chromium =====

// ChromeRasterizer runs a headless Chromium binary per shot. Each call
// writes the document to a scratch directory, screenshots it, and reads
// the PNG back.
type ChromeRasterizer struct {
	// Binary is the Chromium executable. Defaults to "chromium".
	Binary string

	// Timeout bounds a single shot. Defaults to 30 seconds.
	Timeout time.Duration
}

func (r *ChromeRasterizer) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "chromium"
}

func (r *ChromeRasterizer) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 30 * time.Second
}

func (r *ChromeRasterizer) Rasterize(ctx context.Context, doc string, width, height int, scale float64) (image.Image, error) {
	start := time.Now()
	observability.Render().OnRasterStart(ctx, width, height)

	img, err := r.rasterize(ctx, doc, width, height, scale)
	observability.Render().OnRasterComplete(ctx, width, height, time.Since(start), err)
	return img, err
}

func (r *ChromeRasterizer) rasterize(ctx context.Context, doc string, width, height int, scale float64) (image.Image, error) {
	if scale <= 0 {
		scale = 1
	}

	dir, err := os.MkdirTemp("", "adforge-shot-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "create scratch dir")
	}
	defer os.RemoveAll(dir)

	page := filepath.Join(dir, "creative.html")
	shot := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(page, []byte(doc), 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "write document")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary(),
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--hide-scrollbars",
		"--default-background-color=FFFFFFFF",
		fmt.Sprintf("--window-size=%d,%d", width, height),
		fmt.Sprintf("--force-device-scale-factor=%g", scale),
		"--screenshot="+shot,
		"file://"+page,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "browser shot timed out after %s", r.timeout())
		}
		return nil, errors.Wrap(errors.ErrCodeRender, err, "browser exited: %s", firstLine(stderr.String()))
	}

	img, err := imaging.Open(shot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "read shot")
	}
	return img, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// ===== Caching =====

// CachedRasterizer wraps a Rasterizer with a byte cache keyed on the
// document hash and shot geometry. Shots are stored as PNG.
type CachedRasterizer struct {
	inner Rasterizer
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCachedRasterizer wraps inner. A nil cache disables caching.
func NewCachedRasterizer(inner Rasterizer, c cache.Cache, k cache.Keyer, ttl time.Duration) *CachedRasterizer {
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &CachedRasterizer{inner: inner, cache: c, keyer: k, ttl: ttl}
}

func (r *CachedRasterizer) Rasterize(ctx context.Context, doc string, width, height int, scale float64) (image.Image, error) {
	if r.cache == nil {
		return r.inner.Rasterize(ctx, doc, width, height, scale)
	}

	key := r.keyer.RasterKey(cache.Hash([]byte(doc)), cache.RasterKeyOpts{
		Width:  width,
		Height: height,
		Scale:  scale,
	})

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		if img, derr := png.Decode(bytes.NewReader(data)); derr == nil {
			observability.Cache().OnCacheHit(ctx, "raster")
			return img, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "raster")

	img, err := r.inner.Rasterize(ctx, doc, width, height, scale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err == nil {
		if serr := r.cache.Set(ctx, key, buf.Bytes(), r.ttl); serr == nil {
			observability.Cache().OnCacheSet(ctx, "raster", buf.Len())
		}
	}
	return img, nil
}

// ===== Test stub =====

// StubRasterizer returns a solid-color image without running a browser.
type StubRasterizer struct {
	Fill color.Color

	// Err, when set, is returned by every call.
	Err error

	// Calls counts invocations.
	Calls int
}

func (r *StubRasterizer) Rasterize(ctx context.Context, doc string, width, height int, scale float64) (image.Image, error) {
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	fill := r.Fill
	if fill == nil {
		fill = color.White
	}
	w := int(float64(width) * max(scale, 1))
	h := int(float64(height) * max(scale, 1))
	return imaging.New(w, h, toNRGBA(fill)), nil
}

func toNRGBA(c color.Color) color.NRGBA {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
