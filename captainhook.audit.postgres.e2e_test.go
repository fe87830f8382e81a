//go:build integration

package captainhook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer creates an ephemeral PostgreSQL container for testing.
func setupPostgresContainer(t *testing.T) (*PostgresAuditor, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("captainhook_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	auditor, err := NewPostgresAuditor(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
		QueryTimeout:     30 * time.Second,
	})
	require.NoError(t, err, "failed to create postgres auditor")

	cleanup := func() {
		if auditor != nil {
			_ = auditor.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	}

	return auditor, cleanup
}

func TestPostgresAuditor_E2E_RecordAndQuery(t *testing.T) {
	auditor, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("Record", func(t *testing.T) {
		err := auditor.Record(ctx, AuditEvent{
			Phase:      AuditPhasePre,
			Pattern:    "files:read",
			Namespace:  "files",
			Action:     "read",
			Attributes: map[string]string{"path": "a.txt"},
		})
		require.NoError(t, err)

		err = auditor.Record(ctx, AuditEvent{
			Phase:   AuditPhasePost,
			Pattern: "files:read",
			Error:   "tag handler failed: disk full",
		})
		require.NoError(t, err)
	})

	t.Run("Events", func(t *testing.T) {
		events, err := auditor.Events(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)

		// Newest first.
		assert.Equal(t, AuditPhasePost, events[0].Phase)
		assert.Contains(t, events[0].Error, "disk full")

		assert.Equal(t, AuditPhasePre, events[1].Phase)
		assert.Equal(t, "files", events[1].Namespace)
		assert.Equal(t, "a.txt", events[1].Attributes["path"])
		assert.False(t, events[1].At.IsZero())
	})
}

func TestPostgresAuditor_E2E_AttachedToContext(t *testing.T) {
	auditor, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	c := NewContext(WithAuditor(auditor))
	handler := NamespaceHandlerFunc(func(ctx context.Context, action string, attrs map[string]string) (any, error) {
		return "pong", nil
	})
	require.NoError(t, c.RegisterNamespace("sys", handler, nil))

	value, err := c.ExecuteTag(ctx, "[sys:ping /]", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", value)

	events, err := auditor.Events(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "sys:ping", events[0].Pattern)
	assert.Equal(t, "sys:ping", events[1].Pattern)
}

func TestPostgresAuditor_E2E_Closed(t *testing.T) {
	auditor, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, auditor.Close())

	err := auditor.Record(ctx, AuditEvent{Phase: AuditPhasePre, Pattern: "x"})
	require.Error(t, err)

	_, err = auditor.Events(ctx, 1)
	require.Error(t, err)

	err = auditor.Close()
	require.Error(t, err)
}
