package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Binding hooks
	b := NoopBindingHooks{}
	b.OnBindStart(ctx, "template1")
	b.OnBindComplete(ctx, "template1", 12, time.Second, nil)
	b.OnFieldUpdate(ctx, "template1", "headerMain", "text")

	// Render hooks
	r := NoopRenderHooks{}
	r.OnRasterStart(ctx, 320, 480)
	r.OnRasterComplete(ctx, 320, 480, time.Second, nil)
	r.OnRescale(ctx, 1200, 628, 5)

	// Export hooks
	e := NoopExportHooks{}
	e.OnExportStart(ctx, "images", 3, 3)
	e.OnLanguageComplete(ctx, "images", "de", time.Second, nil)
	e.OnExportComplete(ctx, "images", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "translation")
	c.OnCacheMiss(ctx, "raster")
	c.OnCacheSet(ctx, "raster", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "translate.googleapis.com", "/translate_a/single")
	h.OnResponse(ctx, "GET", "translate.googleapis.com", "/translate_a/single", 200, time.Second)
	h.OnError(ctx, "GET", "translate.googleapis.com", "/translate_a/single", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Binding().(NoopBindingHooks); !ok {
		t.Error("Binding() should return NoopBindingHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customBinding := &testBindingHooks{}
	SetBindingHooks(customBinding)
	if Binding() != customBinding {
		t.Error("SetBindingHooks should set custom hooks")
	}

	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Binding().(NoopBindingHooks); !ok {
		t.Error("Reset() should restore NoopBindingHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBindingHooks{}
	SetBindingHooks(custom)

	// Setting nil should be ignored
	SetBindingHooks(nil)

	if Binding() != custom {
		t.Error("SetBindingHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testBindingHooks struct{ NoopBindingHooks }
type testExportHooks struct{ NoopExportHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
