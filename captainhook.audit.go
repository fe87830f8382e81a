package captainhook

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuditEvent is one record of a namespaced dispatch, captured at the
// pre or post execute hook point.
type AuditEvent struct {
	Phase      string
	Pattern    string
	Namespace  string
	Action     string
	Attributes map[string]string
	Error      string
	At         time.Time
}

// Auditor is a sink for dispatch audit events. Record must be safe for
// concurrent use; its failures are logged by the hook registry and
// never fail the dispatch that produced the event.
type Auditor interface {
	Record(ctx context.Context, event AuditEvent) error
	Close() error
}

// MemoryAuditor keeps the most recent events in a bounded in-process
// ring buffer. Useful for tests and for debugging live contexts.
type MemoryAuditor struct {
	mu       sync.Mutex
	events   []AuditEvent
	capacity int
	closed   bool
}

// NewMemoryAuditor creates a memory auditor. A capacity below one uses
// MemoryAuditorDefaultCapacity.
func NewMemoryAuditor(capacity int) *MemoryAuditor {
	if capacity < 1 {
		capacity = MemoryAuditorDefaultCapacity
	}
	return &MemoryAuditor{
		events:   make([]AuditEvent, 0, capacity),
		capacity: capacity,
	}
}

// Record implements Auditor. When full, the oldest event is dropped.
func (a *MemoryAuditor) Record(_ context.Context, event AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return NewAuditError(ErrMsgAuditorClosed, nil)
	}
	if len(a.events) == a.capacity {
		copy(a.events, a.events[1:])
		a.events = a.events[:a.capacity-1]
	}
	a.events = append(a.events, event)
	return nil
}

// Events returns a copy of the recorded events, oldest first.
func (a *MemoryAuditor) Events() []AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]AuditEvent, len(a.events))
	copy(out, a.events)
	return out
}

// Len returns the number of recorded events.
func (a *MemoryAuditor) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

// Close implements Auditor. Further Record calls fail.
func (a *MemoryAuditor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// AttachAuditor registers audit callbacks on the pre and post execute
// hook points so every namespace-resolved dispatch reaches the sink.
// Returns the two entry ids; note the hook points are critical, so the
// callbacks cannot be removed without the registry's removal token.
func AttachAuditor(hooks *HookRegistry, auditor Auditor, logger *zap.Logger) (preID, postID string, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	preID, err = hooks.AddAction(HookPreExecute, func(ctx context.Context, args ...any) error {
		event := auditEventFromArgs(AuditPhasePre, args)
		if recordErr := auditor.Record(ctx, event); recordErr != nil {
			logger.Warn(LogMsgAuditWriteFailed, zap.Error(recordErr))
			return recordErr
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}

	postID, err = hooks.AddAction(HookPostExecute, func(ctx context.Context, args ...any) error {
		event := auditEventFromArgs(AuditPhasePost, args)
		if recordErr := auditor.Record(ctx, event); recordErr != nil {
			logger.Warn(LogMsgAuditWriteFailed, zap.Error(recordErr))
			return recordErr
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return preID, postID, nil
}

// auditEventFromArgs rebuilds an AuditEvent from the hook argument
// convention. Pre args are (pattern, namespace, action, attrs); post
// args are (pattern, value, err).
func auditEventFromArgs(phase string, args []any) AuditEvent {
	event := AuditEvent{Phase: phase, At: time.Now().UTC()}
	if len(args) > 0 {
		if pattern, ok := args[0].(string); ok {
			event.Pattern = pattern
		}
	}
	if phase == AuditPhasePre {
		if len(args) > 1 {
			if namespace, ok := args[1].(string); ok {
				event.Namespace = namespace
			}
		}
		if len(args) > 2 {
			if action, ok := args[2].(string); ok {
				event.Action = action
			}
		}
		if len(args) > 3 {
			if attrs, ok := args[3].(map[string]string); ok {
				event.Attributes = attrs
			}
		}
		return event
	}
	if len(args) > 2 {
		if dispatchErr, ok := args[2].(error); ok && dispatchErr != nil {
			event.Error = dispatchErr.Error()
		}
	}
	return event
}
