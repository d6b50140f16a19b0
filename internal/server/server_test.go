package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/adforge/adforge/pkg/export"
	"github.com/adforge/adforge/pkg/render"
	"github.com/adforge/adforge/pkg/template"
	"github.com/adforge/adforge/pkg/translate"
)

const testMarkup = `<input data-field="headerMain" value="Default">
<div class="ad-preview">
	<div class="header-main" data-field="headerMain">Default</div>
</div>`

type echoBackend struct{}

func (echoBackend) Name() string { return "echo" }

func (echoBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	return "[" + target + "] " + text, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	loader := template.NewFSLoader(fstest.MapFS{
		"template1.html": &fstest.MapFile{Data: []byte(testMarkup)},
	})

	tr := translate.New(echoBackend{})
	tr.Pace = -1

	exporter := &export.Exporter{
		Loader:     loader,
		Rasterizer: &render.StubRasterizer{},
		Muxer:      &render.StubMuxer{},
		Translator: tr,
		Scale:      1,
	}

	srv := New(loader, exporter, tr, "en", nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body, v any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	if code := getJSON(t, ts.URL+"/healthz", nil); code != http.StatusOK {
		t.Errorf("healthz = %d", code)
	}
}

func TestListTemplates(t *testing.T) {
	ts := newTestServer(t)
	var out struct {
		Templates []string `json:"templates"`
	}
	if code := getJSON(t, ts.URL+"/api/templates", &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(out.Templates) != 1 || out.Templates[0] != "template1" {
		t.Errorf("templates = %v", out.Templates)
	}
}

func TestGetTemplate(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/templates/template1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	if code := getJSON(t, ts.URL+"/api/templates/missing", nil); code != http.StatusNotFound {
		t.Errorf("missing template status = %d", code)
	}
}

func TestTemplateFields(t *testing.T) {
	ts := newTestServer(t)
	var out struct {
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
	}
	if code := getJSON(t, ts.URL+"/api/templates/template1/fields", &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(out.Fields) != 1 || out.Fields[0].Name != "headerMain" || out.Fields[0].Type != "text" {
		t.Errorf("fields = %+v", out.Fields)
	}
}

func TestTranslateEndpoint(t *testing.T) {
	ts := newTestServer(t)
	var out struct {
		Values     map[string]string `json:"values"`
		Translated int               `json:"translated"`
	}
	code := postJSON(t, ts.URL+"/api/translate", map[string]any{
		"target": "de",
		"values": map[string]string{"headerMain": "Hello"},
	}, &out)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.Values["headerMain"] != "[de] Hello" || out.Translated != 1 {
		t.Errorf("out = %+v", out)
	}
}

func TestTranslateRejectsEmpty(t *testing.T) {
	ts := newTestServer(t)
	code := postJSON(t, ts.URL+"/api/translate", map[string]any{"target": "de"}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d", code)
	}
}

func TestExportLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var started struct {
		ID               string  `json:"id"`
		EstimatedSeconds float64 `json:"estimated_seconds"`
	}
	code := postJSON(t, ts.URL+"/api/export", map[string]any{
		"kind":      "images",
		"template":  "template1",
		"snapshot":  map[string]string{"headerMain": "Hello"},
		"languages": []string{"en"},
	}, &started)
	if code != http.StatusAccepted {
		t.Fatalf("start status = %d", code)
	}
	if started.ID == "" || started.EstimatedSeconds <= 0 {
		t.Fatalf("started = %+v", started)
	}

	statusURL := fmt.Sprintf("%s/api/export/%s", ts.URL, started.ID)
	deadline := time.After(15 * time.Second)
	var status struct {
		Status   string  `json:"status"`
		Progress float64 `json:"progress"`
	}
	for {
		if code := getJSON(t, statusURL, &status); code != http.StatusOK {
			t.Fatalf("status code = %d", code)
		}
		if status.Status == "done" || status.Status == "failed" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("export did not finish")
		case <-time.After(20 * time.Millisecond):
		}
	}
	if status.Status != "done" || status.Progress != 1 {
		t.Fatalf("final status = %+v", status)
	}

	resp, err := http.Get(statusURL + "/download")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "template1_images_") {
		t.Errorf("disposition = %q", cd)
	}
}

func TestExportVideoDownloadsPerLanguage(t *testing.T) {
	ts := newTestServer(t)

	var started struct {
		ID string `json:"id"`
	}
	code := postJSON(t, ts.URL+"/api/export", map[string]any{
		"kind":          "videos",
		"template":      "template1",
		"snapshot":      map[string]string{"headerMain": "Hello"},
		"languages":     []string{"en", "de"},
		"audio":         []byte("audio"),
		"audio_ext":     "mp3",
		"audio_seconds": 5,
	}, &started)
	if code != http.StatusAccepted {
		t.Fatalf("start status = %d", code)
	}

	statusURL := fmt.Sprintf("%s/api/export/%s", ts.URL, started.ID)
	deadline := time.After(15 * time.Second)
	var status struct {
		Status    string   `json:"status"`
		Artifacts []string `json:"artifacts"`
	}
	for {
		getJSON(t, statusURL, &status)
		if status.Status == "done" || status.Status == "failed" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("export did not finish")
		case <-time.After(20 * time.Millisecond):
		}
	}
	if status.Status != "done" {
		t.Fatalf("final status = %+v", status)
	}
	if len(status.Artifacts) != 2 {
		t.Fatalf("artifacts = %v, want one archive per language", status.Artifacts)
	}

	for _, name := range status.Artifacts {
		resp, err := http.Get(statusURL + "/download?artifact=" + name)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("download %s = %d", name, resp.StatusCode)
		}
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, name) {
			t.Errorf("disposition = %q, want %q", cd, name)
		}
	}

	resp, err := http.Get(statusURL + "/download?artifact=missing.zip")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown artifact status = %d", resp.StatusCode)
	}
}

func TestExportValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	code := postJSON(t, ts.URL+"/api/export", map[string]any{
		"kind":     "images",
		"template": "template1",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("no languages status = %d", code)
	}

	if code := getJSON(t, ts.URL+"/api/export/not-a-uuid", nil); code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", code)
	}

	unknown := "00000000-0000-0000-0000-000000000000"
	if code := getJSON(t, ts.URL+"/api/export/"+unknown, nil); code != http.StatusNotFound {
		t.Errorf("unknown job status = %d", code)
	}
}
