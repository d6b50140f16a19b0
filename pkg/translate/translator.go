package translate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adforge/adforge/pkg/cache"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/field"
	"github.com/adforge/adforge/pkg/observability"
)

// DefaultPace is the minimum delay between outbound translation
// requests. The Google web endpoint bans bursty callers.
const DefaultPace = 300 * time.Millisecond

// Translator runs strings through an ordered backend chain with
// caching and pacing.
type Translator struct {
	backends []Backend

	// Cache stores accepted translations. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration

	// Pace is the inter-request delay. Zero uses DefaultPace; negative
	// disables pacing.
	Pace time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)

	// mu serializes pacing. Concurrent export jobs share one Translator,
	// so the inter-request delay must hold across goroutines.
	mu          sync.Mutex
	lastRequest time.Time
}

// New creates a Translator over the given backend chain.
func New(backends ...Backend) *Translator {
	return &Translator{
		backends: backends,
		Keyer:    cache.NewDefaultKeyer(),
		TTL:      30 * 24 * time.Hour,
		sleep:    time.Sleep,
	}
}

func (t *Translator) pace() {
	d := t.Pace
	if d == 0 {
		d = DefaultPace
	}
	if d < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if wait := d - time.Since(t.lastRequest); wait > 0 {
		t.sleep(wait)
	}
	t.lastRequest = time.Now()
}

// cleanTranslation trims wrapping quotes some backends add around
// short strings.
func cleanTranslation(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// acceptable rejects translations that are empty or just echo the
// source string.
func acceptable(source, translated string) bool {
	if translated == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(source), translated)
}

// Translate runs one string through the backend chain and returns the
// first accepted result. Identical source and target languages return
// the input untouched.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if source == target {
		return text, nil
	}
	if err := errors.ValidateLanguageCode(target); err != nil {
		return "", err
	}

	var lastErr error
	for _, b := range t.backends {
		if v, ok := t.cached(ctx, b, text, source, target); ok {
			return v, nil
		}

		t.pace()
		raw, err := b.Translate(ctx, text, source, target)
		if err != nil {
			lastErr = err
			continue
		}
		out := cleanTranslation(raw)
		if !acceptable(text, out) {
			lastErr = ErrBadTranslation
			continue
		}

		t.store(ctx, b, text, source, target, out)
		return out, nil
	}

	if lastErr == nil {
		lastErr = ErrBadTranslation
	}
	return "", errors.Wrap(errors.ErrCodeNetwork, lastErr, "all translation backends failed for %q -> %s", truncate(text, 40), target)
}

func (t *Translator) cached(ctx context.Context, b Backend, text, source, target string) (string, bool) {
	if t.Cache == nil {
		return "", false
	}
	key := t.Keyer.TranslationKey(b.Name(), source, target, text)
	data, ok, err := t.Cache.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, "translation")
		return "", false
	}
	observability.Cache().OnCacheHit(ctx, "translation")
	return string(data), true
}

func (t *Translator) store(ctx context.Context, b Backend, text, source, target, out string) {
	if t.Cache == nil {
		return
	}
	key := t.Keyer.TranslationKey(b.Name(), source, target, text)
	if err := t.Cache.Set(ctx, key, []byte(out), t.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "translation", len(out))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ===== Field-level orchestration =====

// Translatable reports whether a field's value is human copy worth
// sending to a backend. Inline binaries, URLs, style values, and
// non-text fields are skipped.
func Translatable(name, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	if strings.HasPrefix(value, "data:") || strings.HasPrefix(value, "blob:") || strings.HasPrefix(value, "http") {
		return false
	}
	switch field.Classify(name) {
	case field.TypeText, field.TypeSelect:
	default:
		return false
	}
	return true
}

// Result summarizes one language's field translation pass.
type Result struct {
	// Values holds every input field, translated where possible.
	Values map[string]string

	Translated int
	Skipped    int
	Failed     int
}

// AllUnchanged reports that translation was attempted but nothing came
// back usable, which usually means both backends are refusing the
// caller. Callers should surface this as a warning.
func (r *Result) AllUnchanged() bool {
	return r.Translated == 0 && r.Failed > 0
}

// TranslateFields localizes a snapshot's text fields. Per-field
// failures keep the original value; the pass itself only fails on
// invalid input.
func (t *Translator) TranslateFields(ctx context.Context, values map[string]string, source, target string) (*Result, error) {
	if err := errors.ValidateLanguageCode(target); err != nil {
		return nil, err
	}

	res := &Result{Values: make(map[string]string, len(values))}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := values[name]
		if !Translatable(name, value) {
			res.Values[name] = value
			res.Skipped++
			continue
		}

		out, err := t.Translate(ctx, value, source, target)
		if err != nil || out == value {
			res.Values[name] = value
			res.Failed++
			continue
		}
		res.Values[name] = out
		res.Translated++
	}
	return res, nil
}
