package captainhook

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/itsatony/go-captainhook/internal"
	"go.uber.org/zap"
)

// ActionHandler serves a single self-closing tag pattern such as
// [refresh /]. Positional params and the merged keyword map come from
// the tag's arguments plus the caller's kwargs.
type ActionHandler func(ctx context.Context, params []string, kwargs map[string]any) (any, error)

// ContainerHandler serves a container tag pattern such as
// [think]...[/think]. content is the raw text between open and close
// markers, untrimmed.
type ContainerHandler func(ctx context.Context, content string, params []string, kwargs map[string]any) (any, error)

// NamespacedHandler serves one exact namespace:action pattern
// registered directly on a context, bypassing the namespace registry.
type NamespacedHandler func(ctx context.Context, params []string, attrs map[string]string, kwargs map[string]any) (any, error)

// Result is one record from a batch ExecuteText run. Err is set when
// that tag's dispatch failed; the batch continues past failures.
type Result struct {
	Tag   *Tag
	Value any
	Err   error
}

// Context is an isolated execution scope: its own pattern handlers,
// container handlers, namespaced handlers, local namespace registry and
// hook registry. A shared namespace registry may be attached as a
// read-only fallback for namespaced tags the local scope cannot
// resolve. Contexts are safe for concurrent use.
type Context struct {
	mu         sync.RWMutex
	actions    map[string]ActionHandler
	containers map[string]ContainerHandler
	patterns   map[string]NamespacedHandler

	namespaces *NamespaceRegistry
	shared     *NamespaceRegistry
	hooks      *HookRegistry
	logger     *zap.Logger
}

// NewContext creates an execution context. With no options it has a nop
// logger, a fresh hook registry and no shared namespace fallback.
func NewContext(opts ...Option) *Context {
	c := &Context{
		actions:    make(map[string]ActionHandler),
		containers: make(map[string]ContainerHandler),
		patterns:   make(map[string]NamespacedHandler),
		logger:     zap.NewNop(),
	}
	cfg := contextConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger != nil {
		c.logger = cfg.logger
	}
	c.hooks = cfg.hooks
	if c.hooks == nil {
		c.hooks = NewHookRegistry(WithHookLogger(c.logger))
	}
	c.namespaces = NewNamespaceRegistry(c.logger)
	c.shared = cfg.shared
	if cfg.auditor != nil {
		if _, _, err := AttachAuditor(c.hooks, cfg.auditor, c.logger); err != nil {
			c.logger.Warn(LogMsgAuditAttachFailed, zap.Error(err))
		}
	}

	c.logger.Debug(LogMsgContextCreated)
	return c
}

// Hooks returns the context's hook registry.
func (c *Context) Hooks() *HookRegistry {
	return c.hooks
}

// Namespaces returns the context's local namespace registry.
func (c *Context) Namespaces() *NamespaceRegistry {
	return c.namespaces
}

// Register binds an ActionHandler to a self-closing tag pattern. The
// pattern must be a bare identifier without a namespace.
func (c *Context) Register(pattern string, handler ActionHandler) error {
	if handler == nil {
		return NewRegistrationError(ErrMsgNilHandler, pattern)
	}
	if strings.ContainsRune(pattern, CharNamespace) {
		return NewRegistrationError(ErrMsgPatternNoColon, pattern)
	}
	if err := internal.ValidateIdentifier(pattern); err != nil {
		return NewIdentifierError(err.Error(), pattern)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.actions[pattern]; exists {
		return NewRegistrationError(ErrMsgPatternExists, pattern)
	}
	c.actions[pattern] = handler
	c.logger.Debug(LogMsgHandlerRegistered, zap.String(LogFieldPattern, pattern))
	return nil
}

// RegisterContainer binds a ContainerHandler to a container tag name.
func (c *Context) RegisterContainer(pattern string, handler ContainerHandler) error {
	if handler == nil {
		return NewRegistrationError(ErrMsgNilHandler, pattern)
	}
	if strings.ContainsRune(pattern, CharNamespace) {
		return NewRegistrationError(ErrMsgPatternNoColon, pattern)
	}
	if err := internal.ValidateIdentifier(pattern); err != nil {
		return NewIdentifierError(err.Error(), pattern)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.containers[pattern]; exists {
		return NewRegistrationError(ErrMsgPatternExists, pattern)
	}
	c.containers[pattern] = handler
	c.logger.Debug(LogMsgHandlerRegistered, zap.String(LogFieldPattern, pattern))
	return nil
}

// RegisterNamespaced binds a NamespacedHandler to one exact
// namespace:action pattern. These take precedence over the namespace
// registries during dispatch.
func (c *Context) RegisterNamespaced(pattern string, handler NamespacedHandler) error {
	if handler == nil {
		return NewRegistrationError(ErrMsgNilHandler, pattern)
	}
	namespace, action, found := strings.Cut(pattern, string(CharNamespace))
	if !found {
		return NewRegistrationError(ErrMsgPatternNeedsColon, pattern)
	}
	if err := internal.ValidateIdentifier(namespace); err != nil {
		return NewIdentifierError(err.Error(), namespace)
	}
	if err := internal.ValidateIdentifier(action); err != nil {
		return NewIdentifierError(err.Error(), action)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.patterns[pattern]; exists {
		return NewRegistrationError(ErrMsgPatternExists, pattern)
	}
	c.patterns[pattern] = handler
	c.logger.Debug(LogMsgHandlerRegistered, zap.String(LogFieldPattern, pattern))
	return nil
}

// Unregister removes an ActionHandler by pattern. Returns whether one
// was removed.
func (c *Context) Unregister(pattern string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.actions[pattern]; !exists {
		return false
	}
	delete(c.actions, pattern)
	return true
}

// UnregisterContainer removes a ContainerHandler by pattern.
func (c *Context) UnregisterContainer(pattern string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.containers[pattern]; !exists {
		return false
	}
	delete(c.containers, pattern)
	return true
}

// UnregisterNamespaced removes a NamespacedHandler by pattern.
func (c *Context) UnregisterNamespaced(pattern string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.patterns[pattern]; !exists {
		return false
	}
	delete(c.patterns, pattern)
	return true
}

// RegisterNamespace binds a NamespaceHandler in the local namespace
// registry.
func (c *Context) RegisterNamespace(name string, handler NamespaceHandler, meta *NamespaceMetadata) error {
	return c.namespaces.Register(name, handler, meta)
}

// UnregisterNamespace removes a namespace from the local registry.
func (c *Context) UnregisterNamespace(name string) error {
	return c.namespaces.Unregister(name)
}

// ListPatterns returns every locally registered handler pattern,
// sorted: action patterns, container patterns and exact namespaced
// patterns together.
func (c *Context) ListPatterns() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	patterns := make([]string, 0, len(c.actions)+len(c.containers)+len(c.patterns))
	for pattern := range c.actions {
		patterns = append(patterns, pattern)
	}
	for pattern := range c.containers {
		patterns = append(patterns, pattern)
	}
	for pattern := range c.patterns {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// Execute dispatches one parsed tag: before hook, smuggling guard,
// handler resolution by kind, awaitable resolution, result filter
// chain, after hook. Handler and policy failures return an error; hook
// callbacks can never fail the dispatch.
func (c *Context) Execute(ctx context.Context, tag *Tag, kwargs map[string]any) (any, error) {
	pattern := tag.Pattern()
	c.hooks.DoAction(ctx, HookBeforeExecute, pattern, tag.Raw)

	// A kwarg key that also arrives as a tag attribute is rejected
	// outright instead of one side silently winning.
	for key := range tag.Attributes {
		if _, collides := kwargs[key]; collides {
			return nil, NewSmugglingError(key, pattern)
		}
	}

	value, err := c.invoke(ctx, tag, kwargs)
	if err != nil {
		c.logger.Debug(LogMsgTagFailed,
			zap.String(LogFieldPattern, pattern),
			zap.Error(err),
		)
		return nil, err
	}

	if awaitable, ok := value.(Awaitable); ok {
		value, err = awaitable.Await(ctx)
		if err != nil {
			return nil, NewHandlerError(pattern, err)
		}
	}

	value = c.hooks.ApplyFilters(ctx, FilterResult, value, pattern)
	c.hooks.DoAction(ctx, HookAfterExecute, pattern, value)

	c.logger.Debug(LogMsgTagDispatched,
		zap.String(LogFieldPattern, pattern),
		zap.String(LogFieldKind, tag.Kind.String()),
	)
	return value, nil
}

// invoke resolves the handler for a tag and runs it.
func (c *Context) invoke(ctx context.Context, tag *Tag, kwargs map[string]any) (any, error) {
	switch tag.Kind {
	case KindContainer:
		c.mu.RLock()
		handler, ok := c.containers[tag.Action]
		c.mu.RUnlock()
		if !ok {
			return nil, NewLookupError(ErrMsgNoContainerHandler, tag.Pattern())
		}
		value, err := handler(ctx, tag.Content, copyParams(tag), mergeKwargs(tag, kwargs))
		if err != nil {
			return nil, NewHandlerError(tag.Pattern(), err)
		}
		return value, nil

	case KindSingle:
		c.mu.RLock()
		handler, ok := c.actions[tag.Action]
		c.mu.RUnlock()
		if !ok {
			return nil, NewLookupError(ErrMsgNoHandler, tag.Pattern())
		}
		value, err := handler(ctx, copyParams(tag), mergeKwargs(tag, kwargs))
		if err != nil {
			return nil, NewHandlerError(tag.Pattern(), err)
		}
		return value, nil

	case KindNamespaced:
		return c.invokeNamespaced(ctx, tag, kwargs)

	default:
		return nil, NewLookupError(ErrMsgNoHandler, tag.Pattern())
	}
}

// invokeNamespaced resolves a namespaced tag: exact local pattern
// handler first, then the local namespace registry, then the shared
// fallback registry. The pre/post execute hook points fire around the
// handler regardless of which layer resolved it.
func (c *Context) invokeNamespaced(ctx context.Context, tag *Tag, kwargs map[string]any) (any, error) {
	pattern := tag.Pattern()

	c.mu.RLock()
	exact, hasExact := c.patterns[pattern]
	c.mu.RUnlock()

	var registry *NamespaceRegistry
	if !hasExact {
		if c.namespaces.IsRegistered(tag.Namespace) {
			registry = c.namespaces
		} else if c.shared != nil && c.shared.IsRegistered(tag.Namespace) {
			registry = c.shared
		} else {
			return nil, NewLookupError(ErrMsgNoNamespaceHandler, pattern)
		}
	}

	c.hooks.DoAction(ctx, HookPreExecute, pattern, tag.Namespace, tag.Action, tag.Attributes)

	var value any
	var err error
	if hasExact {
		value, err = exact(ctx, copyParams(tag), copyStringMap(tag.Attributes), freezeKwargs(kwargs))
		if err != nil {
			err = NewHandlerError(pattern, err)
		}
	} else {
		value, err = registry.Execute(ctx, tag.Namespace, tag.Action, tag.Attributes)
	}

	c.hooks.DoAction(ctx, HookPostExecute, pattern, value, err)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ExecuteTag parses a single tag string and dispatches it.
func (c *Context) ExecuteTag(ctx context.Context, tagString string, kwargs map[string]any) (any, error) {
	tag, err := ParseTag(tagString)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, tag, kwargs)
}

// ExecuteText parses free text and dispatches every top-level tag in
// document order. Each tag gets its own Result record; one tag's
// failure never stops the rest. A parse failure of the text itself
// returns a nil slice and the error.
func (c *Context) ExecuteText(ctx context.Context, text string, kwargs map[string]any) ([]Result, error) {
	tags, err := ParseAll(text, false)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(tags))
	for _, tag := range tags {
		value, execErr := c.Execute(ctx, tag, kwargs)
		results = append(results, Result{Tag: tag, Value: value, Err: execErr})
	}
	return results, nil
}

// copyParams copies a tag's positional params so handlers cannot
// mutate the parsed tag.
func copyParams(tag *Tag) []string {
	if len(tag.Params) == 0 {
		return nil
	}
	out := make([]string, len(tag.Params))
	copy(out, tag.Params)
	return out
}

// mergeKwargs builds the keyword map a handler sees: caller kwargs
// plus the tag's own attributes. The smuggling guard has already
// rejected collisions.
func mergeKwargs(tag *Tag, kwargs map[string]any) map[string]any {
	out := make(map[string]any, len(kwargs)+len(tag.Attributes))
	for key, value := range kwargs {
		out[key] = value
	}
	for key, value := range tag.Attributes {
		out[key] = value
	}
	return out
}
