// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about solving, point storage, and served requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so no import cycles arise.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMapperHooks(&myMapperHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	m, err := projective.RectToQuad(w, h, q)
//	observability.Mapper().OnSolve(ctx, key, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Mapper Hooks
// =============================================================================

// MapperHooks receives events from the interactive mapping tool.
type MapperHooks interface {
	// OnSolve records one homography solve for an element.
	OnSolve(ctx context.Context, key string, duration time.Duration, err error)

	// Drag events
	OnDragStart(ctx context.Context, key string, corner int)
	OnDragEnd(ctx context.Context, key string, corner int, moves int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from point storage.
type StoreHooks interface {
	// OnLoad records a read; hit reports whether valid points were found.
	OnLoad(ctx context.Context, key string, hit bool)

	// OnSave records a write.
	OnSave(ctx context.Context, key string, size int)

	// OnError records a failed backend operation.
	OnError(ctx context.Context, op, key string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMapperHooks is a no-op implementation of MapperHooks.
type NoopMapperHooks struct{}

func (NoopMapperHooks) OnSolve(context.Context, string, time.Duration, error) {}
func (NoopMapperHooks) OnDragStart(context.Context, string, int)              {}
func (NoopMapperHooks) OnDragEnd(context.Context, string, int, int)           {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, bool)           {}
func (NoopStoreHooks) OnSave(context.Context, string, int)            {}
func (NoopStoreHooks) OnError(context.Context, string, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	mapperHooks MapperHooks = NoopMapperHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetMapperHooks registers custom mapper hooks.
// This should be called once at application startup.
func SetMapperHooks(h MapperHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mapperHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Mapper returns the registered mapper hooks.
func Mapper() MapperHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mapperHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
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
	mapperHooks = NoopMapperHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
