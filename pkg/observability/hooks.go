// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about binding, rendering, exports, cache operations, and
// outbound API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExportHooks(&myExportHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Binding().OnBindStart(ctx, templateName)
//	// ... bind fields ...
//	observability.Binding().OnBindComplete(ctx, templateName, fieldCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Binding Hooks
// =============================================================================

// BindingHooks receives events from the template binding engine.
type BindingHooks interface {
	// Bind events
	OnBindStart(ctx context.Context, template string)
	OnBindComplete(ctx context.Context, template string, fieldCount int, duration time.Duration, err error)

	// Field update events
	OnFieldUpdate(ctx context.Context, template, field, fieldType string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the render pipeline.
type RenderHooks interface {
	// Raster events
	OnRasterStart(ctx context.Context, width, height int)
	OnRasterComplete(ctx context.Context, width, height int, duration time.Duration, err error)

	// Rescale events
	OnRescale(ctx context.Context, width, height int, blurIntensity float64)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from the export orchestrator.
type ExportHooks interface {
	OnExportStart(ctx context.Context, kind string, languages, sizes int)
	OnLanguageComplete(ctx context.Context, kind, language string, duration time.Duration, err error)
	OnExportComplete(ctx context.Context, kind string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBindingHooks is a no-op implementation of BindingHooks.
type NoopBindingHooks struct{}

func (NoopBindingHooks) OnBindStart(context.Context, string) {}
func (NoopBindingHooks) OnBindComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopBindingHooks) OnFieldUpdate(context.Context, string, string, string) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRasterStart(context.Context, int, int)                          {}
func (NoopRenderHooks) OnRasterComplete(context.Context, int, int, time.Duration, error) {}
func (NoopRenderHooks) OnRescale(context.Context, int, int, float64)                     {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int, int)                         {}
func (NoopExportHooks) OnLanguageComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopExportHooks) OnExportComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	bindingHooks BindingHooks = NoopBindingHooks{}
	renderHooks  RenderHooks  = NoopRenderHooks{}
	exportHooks  ExportHooks  = NoopExportHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetBindingHooks registers custom binding hooks.
// This should be called once at application startup before any binding operations.
func SetBindingHooks(h BindingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		bindingHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any render operations.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any export operations.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Binding returns the registered binding hooks.
func Binding() BindingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return bindingHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	bindingHooks = NoopBindingHooks{}
	renderHooks = NoopRenderHooks{}
	exportHooks = NoopExportHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
