package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"testing"
)

func openSession(t *testing.T, base string) string {
	t.Helper()
	var out struct {
		ID     string            `json:"id"`
		Values map[string]string `json:"values"`
	}
	code := postJSON(t, base+"/api/sessions", map[string]any{"template": "template1"}, &out)
	if code != http.StatusCreated {
		t.Fatalf("create session status = %d", code)
	}
	if out.ID == "" {
		t.Fatal("create session returned no id")
	}
	return out.ID
}

func patchJSON(t *testing.T, url string, body, v any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := openSession(t, ts.URL)

	var patched struct {
		Values map[string]string `json:"values"`
	}
	code := patchJSON(t, ts.URL+"/api/sessions/"+id+"/fields", map[string]string{
		"name":  "headerMain",
		"value": "Updated",
	}, &patched)
	if code != http.StatusOK {
		t.Fatalf("patch status = %d", code)
	}
	if patched.Values["headerMain"] != "Updated" {
		t.Errorf("values = %v", patched.Values)
	}

	var snap struct {
		Values map[string]string `json:"values"`
	}
	if code := getJSON(t, ts.URL+"/api/sessions/"+id+"/snapshot", &snap); code != http.StatusOK {
		t.Fatalf("snapshot status = %d", code)
	}
	if snap.Values["headerMain"] != "Updated" {
		t.Errorf("snapshot = %v", snap.Values)
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	if code := getJSON(t, ts.URL+"/api/sessions/"+id+"/snapshot", nil); code != http.StatusNotFound {
		t.Errorf("deleted session status = %d", code)
	}
}

func TestSessionRejectsUnknownField(t *testing.T) {
	ts := newTestServer(t)
	id := openSession(t, ts.URL)

	code := patchJSON(t, ts.URL+"/api/sessions/"+id+"/fields", map[string]string{
		"name":  "no such field!",
		"value": "x",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("invalid field status = %d", code)
	}
}

func TestSessionPreview(t *testing.T) {
	ts := newTestServer(t)
	id := openSession(t, ts.URL)

	resp, err := http.Get(ts.URL + "/api/sessions/" + id + "/preview.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if img.Bounds().Dx() == 0 {
		t.Error("preview image is empty")
	}
}

func TestSessionPreviewResized(t *testing.T) {
	ts := newTestServer(t)
	id := openSession(t, ts.URL)

	resp, err := http.Get(ts.URL + "/api/sessions/" + id + "/preview.png?width=600&height=600")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if img.Bounds().Dx() != 600 || img.Bounds().Dy() != 600 {
		t.Errorf("preview size = %v, want 600x600", img.Bounds())
	}
}

func TestCreateSessionUnknownTemplate(t *testing.T) {
	ts := newTestServer(t)
	code := postJSON(t, ts.URL+"/api/sessions", map[string]any{"template": "missing"}, nil)
	if code != http.StatusNotFound {
		t.Errorf("status = %d", code)
	}
}
