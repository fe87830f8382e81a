// Package captainhook parses and dispatches bracketed control tags
// embedded in free text.
//
// Three tag shapes exist: self-closing actions ([refresh /]), container
// tags wrapping content ([think]...[/think]) and namespaced actions
// with positional and keyword arguments ([files:read path="a.txt" /]).
// A Context resolves each parsed tag to a registered handler, runs
// lifecycle hooks and result filters around the call, and returns the
// handler's value.
//
// The package-level functions operate on a lazily built default
// context, shared hook registry and shared namespace registry, so small
// programs can register handlers and execute tags without any setup:
//
//	captainhook.Register("refresh", refreshHandler)
//	value, err := captainhook.ExecuteTag(ctx, "[refresh /]", nil)
//
// Larger programs create isolated contexts with NewContext and wire
// their own registries through options.
package captainhook

import (
	"context"
	"os"
	"sync"
)

var (
	defaultsOnce   sync.Once
	defaultHooks   *HookRegistry
	defaultShared  *NamespaceRegistry
	defaultContext *Context
)

// initDefaults builds the process-wide default context on first use.
// The critical-hook removal token comes from the environment so
// deployments can rotate it without code changes.
func initDefaults() {
	defaultHooks = NewHookRegistry(WithRemovalToken(os.Getenv(EnvRemovalToken)))
	defaultShared = NewNamespaceRegistry(nil)
	defaultContext = NewContext(
		WithHooks(defaultHooks),
		WithSharedNamespaces(defaultShared),
	)
}

// Defaults returns the process-wide default execution context.
func Defaults() *Context {
	defaultsOnce.Do(initDefaults)
	return defaultContext
}

// SharedHooks returns the default context's hook registry.
func SharedHooks() *HookRegistry {
	defaultsOnce.Do(initDefaults)
	return defaultHooks
}

// SharedNamespaces returns the process-wide shared namespace registry.
// Namespaces registered here resolve in the default context and in any
// context created with WithSharedNamespaces(SharedNamespaces()).
func SharedNamespaces() *NamespaceRegistry {
	defaultsOnce.Do(initDefaults)
	return defaultShared
}

// Register binds an ActionHandler on the default context.
func Register(pattern string, handler ActionHandler) error {
	return Defaults().Register(pattern, handler)
}

// RegisterContainer binds a ContainerHandler on the default context.
func RegisterContainer(pattern string, handler ContainerHandler) error {
	return Defaults().RegisterContainer(pattern, handler)
}

// RegisterNamespaced binds an exact namespace:action handler on the
// default context.
func RegisterNamespaced(pattern string, handler NamespacedHandler) error {
	return Defaults().RegisterNamespaced(pattern, handler)
}

// RegisterNamespace binds a NamespaceHandler in the shared namespace
// registry.
func RegisterNamespace(name string, handler NamespaceHandler, meta *NamespaceMetadata) error {
	return SharedNamespaces().Register(name, handler, meta)
}

// UnregisterNamespace removes a namespace from the shared registry.
func UnregisterNamespace(name string) error {
	return SharedNamespaces().Unregister(name)
}

// ExecuteNamespace invokes a namespace handler from the shared registry
// directly, bypassing tag parsing.
func ExecuteNamespace(ctx context.Context, namespace, action string, attrs map[string]string) (any, error) {
	return SharedNamespaces().Execute(ctx, namespace, action, attrs)
}

// Execute dispatches a parsed tag on the default context.
func Execute(ctx context.Context, tag *Tag, kwargs map[string]any) (any, error) {
	return Defaults().Execute(ctx, tag, kwargs)
}

// ExecuteTag parses and dispatches a single tag string on the default
// context.
func ExecuteTag(ctx context.Context, tagString string, kwargs map[string]any) (any, error) {
	return Defaults().ExecuteTag(ctx, tagString, kwargs)
}

// ExecuteText parses free text and dispatches every top-level tag on
// the default context.
func ExecuteText(ctx context.Context, text string, kwargs map[string]any) ([]Result, error) {
	return Defaults().ExecuteText(ctx, text, kwargs)
}
