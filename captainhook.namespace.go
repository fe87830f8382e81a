package captainhook

import (
	"context"
	"sort"
	"sync"

	"github.com/itsatony/go-captainhook/internal"
	"go.uber.org/zap"
)

// NamespaceHandler serves every action of one namespace. The dispatcher
// calls Execute with the resolved action name and the tag's frozen
// attribute map.
type NamespaceHandler interface {
	Execute(ctx context.Context, action string, attrs map[string]string) (any, error)
}

// NamespaceHandlerFunc adapts a function to the NamespaceHandler
// interface.
type NamespaceHandlerFunc func(ctx context.Context, action string, attrs map[string]string) (any, error)

// Execute implements NamespaceHandler.
func (f NamespaceHandlerFunc) Execute(ctx context.Context, action string, attrs map[string]string) (any, error) {
	return f(ctx, action, attrs)
}

// NamespaceRegistry maps namespace names to handlers plus their action
// policy metadata. Registration is exclusive: a second Register for the
// same name fails instead of silently replacing the first handler.
type NamespaceRegistry struct {
	mu       sync.RWMutex
	handlers map[string]NamespaceHandler
	metadata map[string]*NamespaceMetadata
	logger   *zap.Logger
}

// NewNamespaceRegistry creates an empty namespace registry.
func NewNamespaceRegistry(logger *zap.Logger) *NamespaceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NamespaceRegistry{
		handlers: make(map[string]NamespaceHandler),
		metadata: make(map[string]*NamespaceMetadata),
		logger:   logger,
	}
}

// Register binds a handler to a namespace name. Metadata may be nil,
// meaning every action is allowed and none suppressed. Fails if the
// name is invalid, the handler is nil, or the namespace already exists.
func (r *NamespaceRegistry) Register(name string, handler NamespaceHandler, meta *NamespaceMetadata) error {
	if handler == nil {
		return NewRegistrationError(ErrMsgNilHandler, name)
	}
	if err := internal.ValidateIdentifier(name); err != nil {
		return NewIdentifierError(err.Error(), name)
	}
	if meta != nil {
		if err := meta.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return NewRegistrationError(ErrMsgNamespaceExists, name)
	}
	r.handlers[name] = handler
	r.metadata[name] = meta.Clone()

	r.logger.Debug(LogMsgNamespaceRegistered, zap.String(LogFieldNamespace, name))
	return nil
}

// Unregister removes a namespace and its metadata. Fails if the
// namespace is unknown.
func (r *NamespaceRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; !exists {
		return NewRegistrationError(ErrMsgNamespaceNotFound, name)
	}
	delete(r.handlers, name)
	delete(r.metadata, name)

	r.logger.Debug(LogMsgNamespaceRemoved, zap.String(LogFieldNamespace, name))
	return nil
}

// Handler returns the registered handler for a namespace.
func (r *NamespaceRegistry) Handler(name string) (NamespaceHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}

// Metadata returns a copy of a namespace's metadata, or nil when none
// was registered.
func (r *NamespaceRegistry) Metadata(name string) *NamespaceMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata[name].Clone()
}

// ValidateAction checks a namespace's action policy without invoking
// anything: the action must be a valid identifier, pass the allow-list,
// and not carry a forbid flag.
func (r *NamespaceRegistry) ValidateAction(namespace, action string) error {
	if err := internal.ValidateIdentifier(action); err != nil {
		return NewIdentifierError(err.Error(), action)
	}

	r.mu.RLock()
	meta := r.metadata[namespace]
	r.mu.RUnlock()

	if !meta.IsActionAllowed(action) {
		return NewActionNotAllowedError(namespace, action)
	}
	if meta.IsActionForbidden(action) {
		return NewActionForbiddenError(namespace, action)
	}
	return nil
}

// ShouldSuppressResponse reports whether the namespace metadata marks
// the action's result as not for surfacing. The flag is advisory:
// Execute always returns the handler's result, and callers that batch
// tool results consult this to decide what to show.
func (r *NamespaceRegistry) ShouldSuppressResponse(namespace, action string) bool {
	r.mu.RLock()
	meta := r.metadata[namespace]
	r.mu.RUnlock()
	return meta.ShouldSuppressResponse(action)
}

// Execute resolves and invokes a namespace handler. The attribute map
// is copied before the call so the handler cannot mutate caller state.
// Handler failures come back wrapped; policy violations come back as
// authorization errors with the handler never invoked.
func (r *NamespaceRegistry) Execute(ctx context.Context, namespace, action string, attrs map[string]string) (any, error) {
	if err := internal.ValidateIdentifier(namespace); err != nil {
		return nil, NewIdentifierError(err.Error(), namespace)
	}

	r.mu.RLock()
	handler, ok := r.handlers[namespace]
	meta := r.metadata[namespace]
	r.mu.RUnlock()

	if !ok {
		return nil, NewLookupError(ErrMsgNoNamespaceHandler, namespace+string(CharNamespace)+action)
	}
	if err := internal.ValidateIdentifier(action); err != nil {
		return nil, NewIdentifierError(err.Error(), action)
	}
	if !meta.IsActionAllowed(action) {
		return nil, NewActionNotAllowedError(namespace, action)
	}
	if meta.IsActionForbidden(action) {
		return nil, NewActionForbiddenError(namespace, action)
	}

	result, err := handler.Execute(ctx, action, copyStringMap(attrs))
	if err != nil {
		return nil, NewHandlerError(namespace+string(CharNamespace)+action, err)
	}
	return result, nil
}

// IsRegistered reports whether a namespace exists.
func (r *NamespaceRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// List returns every registered namespace name, sorted.
func (r *NamespaceRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered namespaces.
func (r *NamespaceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Clear removes every namespace.
func (r *NamespaceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string]NamespaceHandler)
	r.metadata = make(map[string]*NamespaceMetadata)
}
