package captainhook

import "go.uber.org/zap"

// contextConfig collects option values before the Context is built.
type contextConfig struct {
	logger  *zap.Logger
	hooks   *HookRegistry
	shared  *NamespaceRegistry
	auditor Auditor
}

// Option configures a Context at construction time.
type Option func(*contextConfig)

// WithLogger sets the context logger. Without it the context is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(c *contextConfig) {
		c.logger = logger
	}
}

// WithHooks attaches an existing hook registry instead of creating a
// fresh one. Several contexts may share a registry this way.
func WithHooks(hooks *HookRegistry) Option {
	return func(c *contextConfig) {
		c.hooks = hooks
	}
}

// WithSharedNamespaces attaches a shared namespace registry as the
// fallback for namespaced tags the context's local registry cannot
// resolve. The context never writes to it.
func WithSharedNamespaces(shared *NamespaceRegistry) Option {
	return func(c *contextConfig) {
		c.shared = shared
	}
}

// WithAuditor records every namespace-resolved dispatch to the given
// audit sink via the pre/post execute hook points.
func WithAuditor(auditor Auditor) Option {
	return func(c *contextConfig) {
		c.auditor = auditor
	}
}
