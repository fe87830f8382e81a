package captainhook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNamespaceMetadata(t *testing.T) {
	doc := []byte(`
name: files
description: file system actions
allowedActions:
  - read
  - list
actions:
  read:
    description: read a file
  delete:
    forbid: true
  play:
    noResponse: true
`)

	meta, err := ParseNamespaceMetadata(doc)
	require.NoError(t, err)
	assert.Equal(t, "files", meta.Name)
	assert.Equal(t, "file system actions", meta.Description)
	assert.Equal(t, []string{"read", "list"}, meta.AllowedActions)

	readMeta, ok := meta.ActionMeta("read")
	require.True(t, ok)
	assert.Equal(t, "read a file", readMeta.Description)
	assert.False(t, readMeta.Forbid)

	assert.True(t, meta.IsActionForbidden("delete"))
	assert.True(t, meta.ShouldSuppressResponse("play"))
	assert.False(t, meta.ShouldSuppressResponse("read"))
}

func TestParseNamespaceMetadata_SnakeCaseNoResponse(t *testing.T) {
	doc := []byte(`
name: audio
actions:
  play:
    no_response: true
`)

	meta, err := ParseNamespaceMetadata(doc)
	require.NoError(t, err)
	assert.True(t, meta.ShouldSuppressResponse("play"))
}

func TestParseNamespaceMetadata_NamespaceLevelNoResponse(t *testing.T) {
	doc := []byte(`
name: audio
noResponse: true
actions:
  status:
    noResponse: false
`)

	meta, err := ParseNamespaceMetadata(doc)
	require.NoError(t, err)
	assert.True(t, meta.NoResponse)
	// Actions without their own entry inherit the namespace default.
	assert.True(t, meta.ShouldSuppressResponse("play"))
	// A per-action entry decides for itself.
	assert.False(t, meta.ShouldSuppressResponse("status"))
}

func TestParseNamespaceMetadata_NamespaceLevelNoResponseSnakeCase(t *testing.T) {
	meta, err := ParseNamespaceMetadata([]byte("name: audio\nno_response: true\n"))
	require.NoError(t, err)
	assert.True(t, meta.ShouldSuppressResponse("play"))
}

func TestParseNamespaceMetadata_InvalidYAML(t *testing.T) {
	_, err := ParseNamespaceMetadata([]byte("actions: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMetadataParseFailed)
}

func TestParseNamespaceMetadata_InvalidActionKey(t *testing.T) {
	doc := []byte(`
name: files
actions:
  "bad key":
    forbid: true
`)

	_, err := ParseNamespaceMetadata(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMetadataActionKey)
}

func TestParseNamespaceMetadata_InvalidName(t *testing.T) {
	_, err := ParseNamespaceMetadata([]byte(`name: "__secret"`))
	require.Error(t, err)
}

func TestParseNamespaceMetadataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "files.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: files\nallowedActions: [read]\n"), 0644))

	meta, err := ParseNamespaceMetadataFile(path)
	require.NoError(t, err)
	assert.Equal(t, "files", meta.Name)
	assert.Equal(t, []string{"read"}, meta.AllowedActions)
}

func TestParseNamespaceMetadataFile_Missing(t *testing.T) {
	_, err := ParseNamespaceMetadataFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNamespaceMetadata_ActionMetaLowercaseFallback(t *testing.T) {
	meta := &NamespaceMetadata{
		Actions: map[string]ActionMetadata{"play": {NoResponse: true}},
	}

	_, ok := meta.ActionMeta("PLAY")
	assert.True(t, ok)
	assert.True(t, meta.ShouldSuppressResponse("PLAY"))
}

func TestNamespaceMetadata_NilReceiverIsPermissive(t *testing.T) {
	var meta *NamespaceMetadata

	assert.True(t, meta.IsActionAllowed("anything"))
	assert.False(t, meta.IsActionForbidden("anything"))
	assert.False(t, meta.ShouldSuppressResponse("anything"))
	assert.Nil(t, meta.Clone())
}

func TestNamespaceMetadata_Clone(t *testing.T) {
	meta := &NamespaceMetadata{
		Name:           "files",
		NoResponse:     true,
		AllowedActions: []string{"read"},
		Actions:        map[string]ActionMetadata{"read": {Description: "r"}},
	}

	clone := meta.Clone()
	assert.True(t, clone.NoResponse)
	clone.AllowedActions[0] = "write"
	clone.Actions["read"] = ActionMetadata{Forbid: true}

	assert.Equal(t, []string{"read"}, meta.AllowedActions)
	assert.False(t, meta.Actions["read"].Forbid)
}
