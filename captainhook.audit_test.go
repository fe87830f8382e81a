package captainhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAuditor_Record(t *testing.T) {
	auditor := NewMemoryAuditor(10)

	err := auditor.Record(context.Background(), AuditEvent{
		Phase:   AuditPhasePre,
		Pattern: "files:read",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, auditor.Len())

	events := auditor.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "files:read", events[0].Pattern)
}

func TestMemoryAuditor_RingEviction(t *testing.T) {
	auditor := NewMemoryAuditor(2)

	for _, pattern := range []string{"one", "two", "three"} {
		require.NoError(t, auditor.Record(context.Background(), AuditEvent{Pattern: pattern}))
	}

	events := auditor.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "two", events[0].Pattern)
	assert.Equal(t, "three", events[1].Pattern)
}

func TestMemoryAuditor_DefaultCapacity(t *testing.T) {
	auditor := NewMemoryAuditor(0)
	require.NoError(t, auditor.Record(context.Background(), AuditEvent{Pattern: "x"}))
	assert.Equal(t, 1, auditor.Len())
}

func TestMemoryAuditor_Closed(t *testing.T) {
	auditor := NewMemoryAuditor(4)
	require.NoError(t, auditor.Close())

	err := auditor.Record(context.Background(), AuditEvent{Pattern: "late"})
	require.Error(t, err)

	var auditErr *AuditError
	require.ErrorAs(t, err, &auditErr)
	assert.Equal(t, ErrMsgAuditorClosed, auditErr.Message)
}

func TestAttachAuditor_RecordsNamespacedDispatch(t *testing.T) {
	auditor := NewMemoryAuditor(16)
	c := NewContext(WithAuditor(auditor))

	handler := NamespaceHandlerFunc(func(ctx context.Context, action string, attrs map[string]string) (any, error) {
		return "done", nil
	})
	require.NoError(t, c.RegisterNamespace("files", handler, nil))

	_, err := c.ExecuteTag(context.Background(), `[files:read path="a.txt" /]`, nil)
	require.NoError(t, err)

	events := auditor.Events()
	require.Len(t, events, 2)

	assert.Equal(t, AuditPhasePre, events[0].Phase)
	assert.Equal(t, "files:read", events[0].Pattern)
	assert.Equal(t, "files", events[0].Namespace)
	assert.Equal(t, "read", events[0].Action)
	assert.Equal(t, "a.txt", events[0].Attributes["path"])
	assert.False(t, events[0].At.IsZero())

	assert.Equal(t, AuditPhasePost, events[1].Phase)
	assert.Equal(t, "files:read", events[1].Pattern)
	assert.Empty(t, events[1].Error)
}

func TestAttachAuditor_RecordsDispatchFailure(t *testing.T) {
	auditor := NewMemoryAuditor(16)
	c := NewContext(WithAuditor(auditor))

	handler := NamespaceHandlerFunc(func(ctx context.Context, action string, attrs map[string]string) (any, error) {
		return nil, errors.New("denied")
	})
	require.NoError(t, c.RegisterNamespace("files", handler, nil))

	_, err := c.ExecuteTag(context.Background(), "[files:read /]", nil)
	require.Error(t, err)

	events := auditor.Events()
	require.Len(t, events, 2)
	assert.Equal(t, AuditPhasePost, events[1].Phase)
	assert.Contains(t, events[1].Error, "denied")
}

func TestAttachAuditor_SinkFailureDoesNotFailDispatch(t *testing.T) {
	auditor := NewMemoryAuditor(4)
	require.NoError(t, auditor.Close())

	c := NewContext(WithAuditor(auditor))
	handler := NamespaceHandlerFunc(func(ctx context.Context, action string, attrs map[string]string) (any, error) {
		return "ok", nil
	})
	require.NoError(t, c.RegisterNamespace("sys", handler, nil))

	value, err := c.ExecuteTag(context.Background(), "[sys:ping /]", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestAttachAuditor_HooksAreCriticallyProtected(t *testing.T) {
	hooks := NewHookRegistry()
	auditor := NewMemoryAuditor(4)

	preID, postID, err := AttachAuditor(hooks, auditor, nil)
	require.NoError(t, err)
	require.NotEmpty(t, preID)
	require.NotEmpty(t, postID)

	_, err = hooks.RemoveAction(HookPreExecute, preID)
	require.Error(t, err)
	_, err = hooks.RemoveAction(HookPostExecute, postID)
	require.Error(t, err)
}

func TestAuditError_Unwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewAuditError(ErrMsgPostgresInsertFailed, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), ErrMsgPostgresInsertFailed)
	assert.Contains(t, err.Error(), "db down")
}
