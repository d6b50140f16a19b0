package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// stubBackend returns canned results and records calls.
type stubBackend struct {
	name   string
	result string
	err    error
	calls  int
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return b.result, nil
}

func newTestTranslator(backends ...Backend) *Translator {
	tr := New(backends...)
	tr.Pace = -1
	return tr
}

func TestParseGtx(t *testing.T) {
	body := `[[["Hallo ","Hello ",null,null,10],["Welt","World",null,null,10]],null,"en"]`
	got, err := parseGtx([]byte(body))
	if err != nil {
		t.Fatalf("parseGtx: %v", err)
	}
	if got != "Hallo Welt" {
		t.Errorf("parseGtx = %q, want Hallo Welt", got)
	}

	for _, bad := range []string{"", "{}", "[]", `["x"]`} {
		if _, err := parseGtx([]byte(bad)); err == nil {
			t.Errorf("parseGtx(%q) succeeded", bad)
		}
	}
}

func TestCleanTranslation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"Hallo"`, "Hallo"},
		{`'Hallo'`, "Hallo"},
		{"  Hallo  ", "Hallo"},
		{`"'Hallo'"`, "Hallo"},
		{`Hal"lo`, `Hal"lo`},
	}
	for _, tt := range tests {
		if got := cleanTranslation(tt.in); got != tt.want {
			t.Errorf("cleanTranslation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAcceptable(t *testing.T) {
	if acceptable("Hello", "") {
		t.Error("empty translation accepted")
	}
	if acceptable("Hello", "hello") {
		t.Error("case-folded echo accepted")
	}
	if !acceptable("Hello", "Hallo") {
		t.Error("valid translation rejected")
	}
}

func TestTranslatable(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"headerMain", "Buy now", true},
		{"headerMain", "", false},
		{"headerMain", "data:image/png;base64,AA", false},
		{"headerMain", "https://example.com", false},
		{"headerBgColor", "#ff0000", false},
		{"heroImage", "photo of a dog", false},
		{"overlayOpacity", "0.5", false},
	}
	for _, tt := range tests {
		if got := Translatable(tt.name, tt.value); got != tt.want {
			t.Errorf("Translatable(%q, %q) = %v, want %v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestTranslatorFallback(t *testing.T) {
	primary := &stubBackend{name: "google", err: fmt.Errorf("rate limited")}
	fallback := &stubBackend{name: "libre", result: "Hallo"}
	tr := newTestTranslator(primary, fallback)

	got, err := tr.Translate(context.Background(), "Hello", "en", "de")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hallo" {
		t.Errorf("Translate = %q", got)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestTranslatorRejectsEcho(t *testing.T) {
	echo := &stubBackend{name: "google", result: "Hello"}
	tr := newTestTranslator(echo)
	if _, err := tr.Translate(context.Background(), "Hello", "en", "de"); err == nil {
		t.Error("echoed translation accepted")
	}
}

func TestTranslatorStripsQuotes(t *testing.T) {
	b := &stubBackend{name: "google", result: `"Hallo"`}
	tr := newTestTranslator(b)
	got, err := tr.Translate(context.Background(), "Hello", "en", "de")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hallo" {
		t.Errorf("Translate = %q, want quotes stripped", got)
	}
}

func TestTranslatorSameLanguage(t *testing.T) {
	b := &stubBackend{name: "google", result: "x"}
	tr := newTestTranslator(b)
	got, err := tr.Translate(context.Background(), "Hello", "en", "en")
	if err != nil || got != "Hello" {
		t.Errorf("Translate = %q, %v", got, err)
	}
	if b.calls != 0 {
		t.Errorf("backend called %d times for same-language pass", b.calls)
	}
}

func TestTranslatorRejectsBadLanguage(t *testing.T) {
	tr := newTestTranslator(&stubBackend{name: "google", result: "x"})
	if _, err := tr.Translate(context.Background(), "Hello", "en", "not a code"); err == nil {
		t.Error("invalid language accepted")
	}
}

// countingBackend is safe for concurrent callers.
type countingBackend struct {
	mu    sync.Mutex
	calls int
}

func (b *countingBackend) Name() string { return "counting" }

func (b *countingBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	return "Hallo", nil
}

func TestTranslatorConcurrentPacing(t *testing.T) {
	b := &countingBackend{}
	tr := New(b)
	tr.Pace = time.Microsecond

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if got, err := tr.Translate(ctx, "Hello", "en", "de"); err != nil || got != "Hallo" {
					t.Errorf("Translate = %q, %v", got, err)
				}
			}
		}()
	}
	wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls != 40 {
		t.Errorf("backend calls = %d, want 40", b.calls)
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error { return nil }
func (c *memCache) Close() error                                 { return nil }

func TestTranslatorCaching(t *testing.T) {
	b := &stubBackend{name: "google", result: "Hallo"}
	tr := newTestTranslator(b)
	tr.Cache = newMemCache()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := tr.Translate(ctx, "Hello", "en", "de")
		if err != nil || got != "Hallo" {
			t.Fatalf("pass %d: %q, %v", i, got, err)
		}
	}
	if b.calls != 1 {
		t.Errorf("backend calls = %d, want 1 with warm cache", b.calls)
	}
}

func TestTranslateFields(t *testing.T) {
	b := &stubBackend{name: "google", result: "Angebot"}
	tr := newTestTranslator(b)

	values := map[string]string{
		"headerMain":    "Special Offer",
		"heroImage":     "data:image/png;base64,AA",
		"headerBgColor": "#ff0000",
		"ctaLink":       "https://example.com",
	}
	res, err := tr.TranslateFields(context.Background(), values, "en", "de")
	if err != nil {
		t.Fatal(err)
	}
	if res.Values["headerMain"] != "Angebot" {
		t.Errorf("headerMain = %q", res.Values["headerMain"])
	}
	// Non-copy values pass through untouched.
	for _, name := range []string{"heroImage", "headerBgColor", "ctaLink"} {
		if res.Values[name] != values[name] {
			t.Errorf("%s changed to %q", name, res.Values[name])
		}
	}
	if res.Translated != 1 || res.Skipped != 3 || res.Failed != 0 {
		t.Errorf("counts = %d/%d/%d", res.Translated, res.Skipped, res.Failed)
	}
	if res.AllUnchanged() {
		t.Error("AllUnchanged on a successful pass")
	}
}

func TestTranslateFieldsKeepsOriginalOnFailure(t *testing.T) {
	b := &stubBackend{name: "google", err: fmt.Errorf("down")}
	tr := newTestTranslator(b)

	values := map[string]string{"headerMain": "Special Offer", "subtitle": "Limited time"}
	res, err := tr.TranslateFields(context.Background(), values, "en", "de")
	if err != nil {
		t.Fatal(err)
	}
	if res.Values["headerMain"] != "Special Offer" || res.Values["subtitle"] != "Limited time" {
		t.Errorf("originals not preserved: %v", res.Values)
	}
	if res.Failed != 2 {
		t.Errorf("Failed = %d, want 2", res.Failed)
	}
	if !res.AllUnchanged() {
		t.Error("AllUnchanged not reported when every field failed")
	}
}

// ===== Backend HTTP =====

func TestGoogleWebBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "en" || q.Get("tl") != "de" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `[[["Hallo Welt","Hello World",null,null,10]],null,"en"]`)
	}))
	defer srv.Close()

	g := NewGoogleWeb(srv.URL)
	got, err := g.Translate(context.Background(), "Hello World", "en", "de")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hallo Welt" {
		t.Errorf("Translate = %q", got)
	}
}

func TestLibreBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"translatedText":"Hallo Welt"}`)
	}))
	defer srv.Close()

	l := NewLibre(srv.URL, "")
	got, err := l.Translate(context.Background(), "Hello World", "en", "de")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hallo Welt" {
		t.Errorf("Translate = %q", got)
	}
}

func TestLibreBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"unsupported language"}`)
	}))
	defer srv.Close()

	l := NewLibre(srv.URL, "")
	if _, err := l.Translate(context.Background(), "Hello", "en", "xx"); err == nil {
		t.Error("backend error not surfaced")
	}
}
