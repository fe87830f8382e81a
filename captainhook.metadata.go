package captainhook

import (
	"os"
	"strings"

	"github.com/itsatony/go-captainhook/internal"
	"gopkg.in/yaml.v3"
)

// ActionMetadata describes per-action behavior inside a namespace.
type ActionMetadata struct {
	// NoResponse marks the action's result as not meant for surfacing.
	// The flag is advisory: callers that batch tool results consult it
	// through ShouldSuppressResponse to decide what to show.
	NoResponse bool
	// Forbid blocks the action entirely. Invoking it fails with an
	// authorization error before the handler is ever called.
	Forbid bool
	// Description is free-text documentation.
	Description string
}

// actionMetadataYAML accepts both noResponse and no_response spellings.
type actionMetadataYAML struct {
	NoResponse  bool   `yaml:"noResponse"`
	NoRespSnake bool   `yaml:"no_response"`
	Forbid      bool   `yaml:"forbid"`
	Description string `yaml:"description"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *ActionMetadata) UnmarshalYAML(node *yaml.Node) error {
	var raw actionMetadataYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	m.NoResponse = raw.NoResponse || raw.NoRespSnake
	m.Forbid = raw.Forbid
	m.Description = raw.Description
	return nil
}

// NamespaceMetadata describes a namespace's action policy. It is
// typically loaded from a YAML document shipped alongside the handler.
//
//	name: files
//	description: file system actions
//	noResponse: false
//	allowedActions: [read, list]
//	actions:
//	  read:
//	    noResponse: false
//	  delete:
//	    forbid: true
type NamespaceMetadata struct {
	Name        string
	Description string
	// NoResponse is the namespace-level default for response
	// suppression; a per-action entry overrides it.
	NoResponse     bool
	AllowedActions []string
	Actions        map[string]ActionMetadata
}

// namespaceMetadataYAML accepts both noResponse and no_response
// spellings at the namespace level.
type namespaceMetadataYAML struct {
	Name           string                    `yaml:"name"`
	Description    string                    `yaml:"description"`
	NoResponse     bool                      `yaml:"noResponse"`
	NoRespSnake    bool                      `yaml:"no_response"`
	AllowedActions []string                  `yaml:"allowedActions"`
	Actions        map[string]ActionMetadata `yaml:"actions"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *NamespaceMetadata) UnmarshalYAML(node *yaml.Node) error {
	var raw namespaceMetadataYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	m.Name = raw.Name
	m.Description = raw.Description
	m.NoResponse = raw.NoResponse || raw.NoRespSnake
	m.AllowedActions = raw.AllowedActions
	m.Actions = raw.Actions
	return nil
}

// ActionMeta returns the metadata for an action, trying the exact name
// first and a lowercased fallback second.
func (m *NamespaceMetadata) ActionMeta(action string) (ActionMetadata, bool) {
	if m == nil || m.Actions == nil {
		return ActionMetadata{}, false
	}
	if meta, ok := m.Actions[action]; ok {
		return meta, true
	}
	if meta, ok := m.Actions[strings.ToLower(action)]; ok {
		return meta, true
	}
	return ActionMetadata{}, false
}

// IsActionAllowed reports whether the action passes the allow-list. A
// nil or empty allow-list permits every action.
func (m *NamespaceMetadata) IsActionAllowed(action string) bool {
	if m == nil || len(m.AllowedActions) == 0 {
		return true
	}
	for _, allowed := range m.AllowedActions {
		if allowed == action {
			return true
		}
	}
	return false
}

// IsActionForbidden reports whether the action carries a forbid flag.
func (m *NamespaceMetadata) IsActionForbidden(action string) bool {
	meta, ok := m.ActionMeta(action)
	return ok && meta.Forbid
}

// ShouldSuppressResponse reports whether the action's result should be
// withheld from surfaced output. A per-action entry decides when one
// exists; otherwise the namespace-level default applies.
func (m *NamespaceMetadata) ShouldSuppressResponse(action string) bool {
	if m == nil {
		return false
	}
	if meta, ok := m.ActionMeta(action); ok {
		return meta.NoResponse
	}
	return m.NoResponse
}

// Clone returns a deep copy so registry-held metadata cannot be mutated
// through a caller's reference.
func (m *NamespaceMetadata) Clone() *NamespaceMetadata {
	if m == nil {
		return nil
	}
	out := &NamespaceMetadata{
		Name:        m.Name,
		Description: m.Description,
		NoResponse:  m.NoResponse,
	}
	if m.AllowedActions != nil {
		out.AllowedActions = make([]string, len(m.AllowedActions))
		copy(out.AllowedActions, m.AllowedActions)
	}
	if m.Actions != nil {
		out.Actions = make(map[string]ActionMetadata, len(m.Actions))
		for action, meta := range m.Actions {
			out.Actions[action] = meta
		}
	}
	return out
}

// Validate checks that the namespace name and every action key are
// valid identifiers.
func (m *NamespaceMetadata) Validate() error {
	if m.Name != "" {
		if err := internal.ValidateIdentifier(m.Name); err != nil {
			return NewIdentifierError(err.Error(), m.Name)
		}
	}
	for action := range m.Actions {
		if err := internal.ValidateIdentifier(action); err != nil {
			return NewRegistrationError(ErrMsgMetadataActionKey, action)
		}
	}
	return nil
}

// ParseNamespaceMetadata decodes a YAML namespace metadata document.
func ParseNamespaceMetadata(data []byte) (*NamespaceMetadata, error) {
	var meta NamespaceMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, NewRegistrationError(ErrMsgMetadataParseFailed, err.Error())
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ParseNamespaceMetadataFile reads and decodes a YAML metadata file.
func ParseNamespaceMetadataFile(path string) (*NamespaceMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRegistrationError(ErrMsgMetadataParseFailed, err.Error())
	}
	return ParseNamespaceMetadata(data)
}
