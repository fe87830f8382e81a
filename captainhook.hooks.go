package captainhook

import (
	"context"
	"crypto/subtle"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"github.com/itsatony/go-captainhook/internal"
	"go.uber.org/zap"
)

// ActionFunc is a fire-and-forget hook callback. Its return value is
// logged and discarded; a failing callback never blocks the rest.
type ActionFunc func(ctx context.Context, args ...any) error

// FilterFunc transforms a value in a filter chain. If it fails, the
// previous value is kept and the chain continues.
type FilterFunc func(ctx context.Context, value any, args ...any) (any, error)

// hookEntry is one registered callback with its ordering key.
type hookEntry struct {
	id       string
	priority int
	order    int
	action   ActionFunc
	filter   FilterFunc
	ref      uintptr
}

// HookStats is a read-only snapshot of registry size.
type HookStats struct {
	TotalActions int
	TotalFilters int
}

// HookRegistryOption configures a HookRegistry.
type HookRegistryOption func(*HookRegistry)

// WithRemovalToken sets the secret required (together with an explicit
// override) to remove callbacks from critical hook points.
func WithRemovalToken(token string) HookRegistryOption {
	return func(r *HookRegistry) {
		r.removalToken = token
	}
}

// WithCriticalHooks marks additional hook names as critical.
func WithCriticalHooks(names ...string) HookRegistryOption {
	return func(r *HookRegistry) {
		for _, name := range names {
			r.critical[name] = struct{}{}
		}
	}
}

// WithHookLogger sets the registry logger.
func WithHookLogger(logger *zap.Logger) HookRegistryOption {
	return func(r *HookRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// HookRegistry manages ordered action and filter callbacks keyed by hook
// name. Callbacks run in (priority ascending, insertion order ascending)
// order. The registry lock is always released before user callbacks run,
// so a callback may itself register or unregister hooks.
//
// The pre/post execute hook points are critical by default: their
// callbacks cannot be removed without an explicit override and a
// removal token matching the configured secret.
type HookRegistry struct {
	mu           sync.RWMutex
	actions      map[string][]*hookEntry
	filters      map[string][]*hookEntry
	nextActionID int
	nextFilterID int
	insertSeq    int
	critical     map[string]struct{}
	removalToken string
	logger       *zap.Logger
}

// NewHookRegistry creates a hook registry. HookPreExecute and
// HookPostExecute are critical unless more names are added via
// WithCriticalHooks.
func NewHookRegistry(opts ...HookRegistryOption) *HookRegistry {
	r := &HookRegistry{
		actions: make(map[string][]*hookEntry),
		filters: make(map[string][]*hookEntry),
		critical: map[string]struct{}{
			HookPreExecute:  {},
			HookPostExecute: {},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddAction registers a fire-and-forget callback for a hook name. The
// optional priority defaults to DefaultHookPriority; lower runs earlier.
// Returns a unique entry id in the action id space.
func (r *HookRegistry) AddAction(hookName string, callback ActionFunc, priority ...int) (string, error) {
	if callback == nil {
		return "", NewRegistrationError(ErrMsgNilCallback, hookName)
	}
	if err := internal.ValidateHookName(hookName); err != nil {
		return "", NewIdentifierError(err.Error(), hookName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &hookEntry{
		id:       ActionIDPrefix + strconv.Itoa(r.nextActionID),
		priority: pickPriority(priority),
		order:    r.insertSeq,
		action:   callback,
		ref:      reflect.ValueOf(callback).Pointer(),
	}
	r.nextActionID++
	r.insertSeq++
	r.actions[hookName] = insertSorted(r.actions[hookName], entry)

	r.logger.Debug(LogMsgHookRegistered,
		zap.String(LogFieldHook, hookName),
		zap.String(LogFieldEntryID, entry.id),
		zap.Int(LogFieldPriority, entry.priority),
	)
	return entry.id, nil
}

// AddFilter registers a value-transforming callback for a hook name.
// Returns a unique entry id in the filter id space, distinct from
// action ids.
func (r *HookRegistry) AddFilter(hookName string, callback FilterFunc, priority ...int) (string, error) {
	if callback == nil {
		return "", NewRegistrationError(ErrMsgNilCallback, hookName)
	}
	if err := internal.ValidateHookName(hookName); err != nil {
		return "", NewIdentifierError(err.Error(), hookName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &hookEntry{
		id:       FilterIDPrefix + strconv.Itoa(r.nextFilterID),
		priority: pickPriority(priority),
		order:    r.insertSeq,
		filter:   callback,
		ref:      reflect.ValueOf(callback).Pointer(),
	}
	r.nextFilterID++
	r.insertSeq++
	r.filters[hookName] = insertSorted(r.filters[hookName], entry)

	r.logger.Debug(LogMsgHookRegistered,
		zap.String(LogFieldHook, hookName),
		zap.String(LogFieldEntryID, entry.id),
		zap.Int(LogFieldPriority, entry.priority),
	)
	return entry.id, nil
}

// DoAction invokes every action callback registered for hookName with
// frozen arguments. The callback list is snapshotted under the lock and
// the lock released before any callback runs. Each callback failure or
// panic is logged and swallowed; this is a best-effort broadcast and
// must never be used to enforce correctness.
func (r *HookRegistry) DoAction(ctx context.Context, hookName string, args ...any) {
	r.mu.RLock()
	entries := snapshot(r.actions[hookName])
	r.mu.RUnlock()

	if len(entries) == 0 {
		return
	}
	safeArgs := freezeArgs(args)
	for _, entry := range entries {
		r.invokeAction(ctx, hookName, entry, safeArgs)
	}
}

// invokeAction runs one action callback inside a recover envelope.
func (r *HookRegistry) invokeAction(ctx context.Context, hookName string, entry *hookEntry, args []any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn(LogMsgCallbackPanic,
				zap.String(LogFieldHook, hookName),
				zap.String(LogFieldEntryID, entry.id),
				zap.Any(LogFieldRecovered, rec),
			)
		}
	}()
	if err := entry.action(ctx, args...); err != nil {
		r.logger.Warn(LogMsgCallbackFailed,
			zap.String(LogFieldHook, hookName),
			zap.String(LogFieldEntryID, entry.id),
			zap.Error(err),
		)
	}
}

// ApplyFilters threads value through every filter callback registered
// for hookName in order, freezing the value at each step. A failing
// callback keeps the previous value and the chain continues. With no
// filters registered the original value is returned untouched.
func (r *HookRegistry) ApplyFilters(ctx context.Context, hookName string, value any, args ...any) any {
	r.mu.RLock()
	entries := snapshot(r.filters[hookName])
	r.mu.RUnlock()

	if len(entries) == 0 {
		return value
	}
	safeArgs := freezeArgs(args)
	current := Freeze(value)
	for _, entry := range entries {
		if next, ok := r.invokeFilter(ctx, hookName, entry, current, safeArgs); ok {
			current = Freeze(next)
		}
	}
	return current
}

// invokeFilter runs one filter callback inside a recover envelope.
// Returns the new value and whether it should replace the current one.
func (r *HookRegistry) invokeFilter(ctx context.Context, hookName string, entry *hookEntry, value any, args []any) (result any, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			r.logger.Warn(LogMsgCallbackPanic,
				zap.String(LogFieldHook, hookName),
				zap.String(LogFieldEntryID, entry.id),
				zap.Any(LogFieldRecovered, rec),
			)
		}
	}()
	next, err := entry.filter(ctx, value, args...)
	if err != nil {
		r.logger.Warn(LogMsgCallbackFailed,
			zap.String(LogFieldHook, hookName),
			zap.String(LogFieldEntryID, entry.id),
			zap.Error(err),
		)
		return nil, false
	}
	return next, true
}

// RemoveOption configures a removal call.
type RemoveOption func(*removeConfig)

type removeConfig struct {
	allowCritical bool
	token         string
}

// AllowCritical explicitly overrides critical-hook protection with the
// given removal token. Removal still fails unless the token matches the
// registry's configured secret.
func AllowCritical(token string) RemoveOption {
	return func(c *removeConfig) {
		c.allowCritical = true
		c.token = token
	}
}

// RemoveAction removes an action callback by entry id. Returns whether
// an entry was removed. Removing from a critical hook requires
// AllowCritical with a matching token.
func (r *HookRegistry) RemoveAction(hookName, entryID string, opts ...RemoveOption) (bool, error) {
	return r.removeEntry(r.actions, hookName, func(e *hookEntry) bool { return e.id == entryID }, opts)
}

// RemoveActionCallback removes every action entry registered with the
// given callback. Identity is the callback's code pointer, so distinct
// closures built from the same function literal all match; use
// RemoveAction with the entry id to target one registration.
func (r *HookRegistry) RemoveActionCallback(hookName string, callback ActionFunc, opts ...RemoveOption) (bool, error) {
	if callback == nil {
		return false, NewRegistrationError(ErrMsgNilCallback, hookName)
	}
	ref := reflect.ValueOf(callback).Pointer()
	return r.removeEntry(r.actions, hookName, func(e *hookEntry) bool { return e.ref == ref }, opts)
}

// RemoveFilter removes a filter callback by entry id.
func (r *HookRegistry) RemoveFilter(hookName, entryID string, opts ...RemoveOption) (bool, error) {
	return r.removeEntry(r.filters, hookName, func(e *hookEntry) bool { return e.id == entryID }, opts)
}

// RemoveFilterCallback removes every filter entry registered with the
// given callback. The same code-pointer identity caveat applies as for
// RemoveActionCallback.
func (r *HookRegistry) RemoveFilterCallback(hookName string, callback FilterFunc, opts ...RemoveOption) (bool, error) {
	if callback == nil {
		return false, NewRegistrationError(ErrMsgNilCallback, hookName)
	}
	ref := reflect.ValueOf(callback).Pointer()
	return r.removeEntry(r.filters, hookName, func(e *hookEntry) bool { return e.ref == ref }, opts)
}

// RemoveAllActions removes every action callback for a hook name.
func (r *HookRegistry) RemoveAllActions(hookName string, opts ...RemoveOption) (bool, error) {
	return r.removeAll(r.actions, hookName, opts)
}

// RemoveAllFilters removes every filter callback for a hook name.
func (r *HookRegistry) RemoveAllFilters(hookName string, opts ...RemoveOption) (bool, error) {
	return r.removeAll(r.filters, hookName, opts)
}

func (r *HookRegistry) removeEntry(registry map[string][]*hookEntry, hookName string, match func(*hookEntry) bool, opts []RemoveOption) (bool, error) {
	if err := r.ensureRemovalAllowed(hookName, opts); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := registry[hookName]
	if len(entries) == 0 {
		return false, nil
	}
	kept := entries[:0]
	removed := false
	for _, entry := range entries {
		if match(entry) {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) == 0 {
		delete(registry, hookName)
	} else {
		registry[hookName] = kept
	}
	if removed {
		r.logger.Debug(LogMsgHookRemoved, zap.String(LogFieldHook, hookName))
	}
	return removed, nil
}

func (r *HookRegistry) removeAll(registry map[string][]*hookEntry, hookName string, opts []RemoveOption) (bool, error) {
	if err := r.ensureRemovalAllowed(hookName, opts); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := registry[hookName]; !exists {
		return false, nil
	}
	delete(registry, hookName)
	r.logger.Debug(LogMsgHookRemoved, zap.String(LogFieldHook, hookName))
	return true, nil
}

// ensureRemovalAllowed enforces critical-hook protection. The token
// comparison is constant-time.
func (r *HookRegistry) ensureRemovalAllowed(hookName string, opts []RemoveOption) error {
	r.mu.RLock()
	_, isCritical := r.critical[hookName]
	token := r.removalToken
	r.mu.RUnlock()

	if !isCritical {
		return nil
	}

	var cfg removeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.allowCritical {
		return NewCriticalHookError(ErrMsgCriticalHook, hookName)
	}
	if token == "" {
		return NewCriticalHookError(ErrMsgNoRemovalToken, hookName)
	}
	if subtle.ConstantTimeCompare([]byte(cfg.token), []byte(token)) != 1 {
		return NewCriticalHookError(ErrMsgRemovalTokenWrong, hookName)
	}
	return nil
}

// HasAction reports whether any action callback is registered for the
// hook name.
func (r *HookRegistry) HasAction(hookName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions[hookName]) > 0
}

// HasFilter reports whether any filter callback is registered for the
// hook name.
func (r *HookRegistry) HasFilter(hookName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filters[hookName]) > 0
}

// IsCritical reports whether the hook name is protected.
func (r *HookRegistry) IsCritical(hookName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.critical[hookName]
	return ok
}

// ListHooks returns every hook name with at least one registered
// callback, sorted.
func (r *HookRegistry) ListHooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.actions)+len(r.filters))
	for name := range r.actions {
		seen[name] = struct{}{}
	}
	for name := range r.filters {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns registered callback totals.
func (r *HookRegistry) Stats() HookStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats HookStats
	for _, entries := range r.actions {
		stats.TotalActions += len(entries)
	}
	for _, entries := range r.filters {
		stats.TotalFilters += len(entries)
	}
	return stats
}

// pickPriority resolves the optional priority argument.
func pickPriority(priority []int) int {
	if len(priority) > 0 {
		return priority[0]
	}
	return DefaultHookPriority
}

// insertSorted appends an entry and restores (priority, insertion
// order) ordering.
func insertSorted(entries []*hookEntry, entry *hookEntry) []*hookEntry {
	entries = append(entries, entry)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].order < entries[j].order
	})
	return entries
}

// snapshot copies a callback bucket so it can be iterated without the
// lock held.
func snapshot(entries []*hookEntry) []*hookEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]*hookEntry, len(entries))
	copy(out, entries)
	return out
}
