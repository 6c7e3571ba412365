// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout computation, agent calls, and cache operations.
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
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetAgentHooks(&myAgentHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Agent().OnAdjustStart(ctx, command)
//	// ... call the model ...
//	observability.Agent().OnAdjustComplete(ctx, command, success, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout engine. Hook
// implementations observe computed layouts; they can never influence
// the result.
type LayoutHooks interface {
	// OnLayoutComputed records a finished zone layout.
	OnLayoutComputed(strategy string, items int, aligned bool, duration time.Duration)
}

// =============================================================================
// Agent Hooks
// =============================================================================

// AgentHooks receives events from agent service calls.
type AgentHooks interface {
	// OnAdjustStart records the start of an adjust-ui call.
	OnAdjustStart(ctx context.Context, command string)

	// OnAdjustComplete records a finished adjust-ui call.
	OnAdjustComplete(ctx context.Context, command string, success bool, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutComputed(string, int, bool, time.Duration) {}

// NoopAgentHooks is a no-op implementation of AgentHooks.
type NoopAgentHooks struct{}

func (NoopAgentHooks) OnAdjustStart(context.Context, string)                                    {}
func (NoopAgentHooks) OnAdjustComplete(context.Context, string, bool, time.Duration, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	agentHooks  AgentHooks  = NoopAgentHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout operations.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetAgentHooks registers custom agent hooks.
// This should be called once at application startup before any agent calls.
func SetAgentHooks(h AgentHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		agentHooks = h
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

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Agent returns the registered agent hooks.
func Agent() AgentHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return agentHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	agentHooks = NoopAgentHooks{}
	cacheHooks = NoopCacheHooks{}
}
