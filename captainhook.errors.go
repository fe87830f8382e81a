package captainhook

import (
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Parse errors
	ErrMsgInvalidTagName      = "invalid tag name"
	ErrMsgInvalidCloseTag     = "invalid close tag"
	ErrMsgMalformedCloseTag   = "malformed close tag"
	ErrMsgInvalidAction       = "invalid namespaced action"
	ErrMsgMalformedToken      = "malformed token after tag name"
	ErrMsgMalformedSelfClose  = "malformed self-closing tag"
	ErrMsgMissingCloseSeq     = "missing '/]' close sequence"
	ErrMsgUnexpectedCloseTag  = "unexpected close tag"
	ErrMsgUnbalancedContainer = "unbalanced container"
	ErrMsgUnterminatedToken   = "unterminated token"
	ErrMsgUnterminatedTag     = "unterminated container tag"
	ErrMsgInvalidTagFormat    = "input is not a bracketed tag"
	ErrMsgNotExactlyOneTag    = "input must contain exactly one control tag"
	ErrMsgInvalidAttrKey      = "invalid attribute key"
	ErrMsgEmptyAttrKey        = "attribute token has empty key"

	// Identifier errors
	ErrMsgEmptyIdentifier   = "identifier cannot be empty"
	ErrMsgInvalidIdentifier = "invalid identifier"

	// Registration errors
	ErrMsgNilCallback          = "hook callback cannot be nil"
	ErrMsgNilHandler           = "handler cannot be nil"
	ErrMsgNamespaceExists      = "namespace is already registered"
	ErrMsgNamespaceNotFound    = "namespace is not registered"
	ErrMsgPatternExists        = "handler already registered for pattern"
	ErrMsgPatternNeedsColon    = "pattern must have namespace:action form"
	ErrMsgPatternNoColon       = "pattern must not contain a namespace"
	ErrMsgMetadataParseFailed  = "namespace metadata parsing failed"
	ErrMsgMetadataActionKey    = "namespace metadata has invalid action key"

	// Dispatch errors
	ErrMsgNoHandler          = "no handler for tag"
	ErrMsgNoContainerHandler = "no container handler for tag"
	ErrMsgNoNamespaceHandler = "no handler for namespaced tag"
	ErrMsgParamSmuggling     = "attribute collides with caller argument"

	// Authorization errors
	ErrMsgCriticalHook       = "critical hook cannot be removed without explicit override"
	ErrMsgNoRemovalToken     = "critical hook removal requires a configured removal token"
	ErrMsgRemovalTokenWrong  = "critical hook removal token mismatch"
	ErrMsgActionNotAllowed   = "action is not in the namespace allow-list"
	ErrMsgActionForbidden    = "action is forbidden for this namespace"

	// Audit errors
	ErrMsgAuditorClosed          = "auditor is closed"
	ErrMsgPostgresEmptyConnStr   = "postgres connection string is empty"
	ErrMsgPostgresMigrateFailed  = "postgres audit schema migration failed"
	ErrMsgPostgresInsertFailed   = "postgres audit insert failed"
	ErrMsgPostgresConnectFailed  = "postgres connection failed"
)

// NewParseError creates a fail-closed parse error with offset context.
func NewParseError(msg string, offset int, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeParse, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeParse, msg)
	}
	return err.WithMetadata(MetaKeyOffset, strconv.Itoa(offset))
}

// NewTagParseError creates a parse error carrying the offending tag text.
func NewTagParseError(msg string, raw string) error {
	return cuserr.NewValidationError(ErrCodeParse, msg).
		WithMetadata(MetaKeyRaw, raw)
}

// NewIdentifierError creates an error for an invalid identifier.
func NewIdentifierError(msg string, identifier string) error {
	return cuserr.NewValidationError(ErrCodeRegistration, msg).
		WithMetadata(MetaKeyIdentifier, identifier)
}

// NewRegistrationError creates an error raised synchronously at a
// register/unregister call site.
func NewRegistrationError(msg string, subject string) error {
	return cuserr.NewValidationError(ErrCodeRegistration, msg).
		WithMetadata(MetaKeyIdentifier, subject)
}

// NewLookupError creates a dispatch-time "no handler" error.
func NewLookupError(msg string, pattern string) error {
	return cuserr.NewNotFoundError(MetaKeyHandler, msg).
		WithMetadata(MetaKeyPattern, pattern)
}

// NewSmugglingError creates the parameter-smuggling rejection error: the
// same key was supplied by the tag's attributes and by caller kwargs.
func NewSmugglingError(key string, pattern string) error {
	return cuserr.NewValidationError(ErrCodeDispatch, ErrMsgParamSmuggling).
		WithMetadata(MetaKeyKey, key).
		WithMetadata(MetaKeyPattern, pattern)
}

// NewHandlerError wraps a failure from the actual tag handler. Handler
// failures propagate to the caller; they are never swallowed.
func NewHandlerError(pattern string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeDispatch, ErrMsgTagFailedHandler).
		WithMetadata(MetaKeyPattern, pattern)
}

// ErrMsgTagFailedHandler is the wrap message for handler failures.
const ErrMsgTagFailedHandler = "tag handler failed"

// AuthorizationError is raised when a security rule blocks an operation:
// removing a critical hook without a matching token, or invoking an
// action outside a namespace allow-list. It is never silently downgraded.
type AuthorizationError struct {
	Message   string
	Hook      string
	Namespace string
	Action    string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	switch {
	case e.Hook != "":
		return fmt.Sprintf("%s (hook: %s)", e.Message, e.Hook)
	case e.Namespace != "" && e.Action != "":
		return fmt.Sprintf("%s (namespace: %s, action: %s)", e.Message, e.Namespace, e.Action)
	case e.Namespace != "":
		return fmt.Sprintf("%s (namespace: %s)", e.Message, e.Namespace)
	default:
		return e.Message
	}
}

// NewCriticalHookError creates an authorization error for a protected hook.
func NewCriticalHookError(msg string, hookName string) *AuthorizationError {
	return &AuthorizationError{Message: msg, Hook: hookName}
}

// NewActionNotAllowedError creates an authorization error for an action
// outside the namespace allow-list.
func NewActionNotAllowedError(namespace, action string) *AuthorizationError {
	return &AuthorizationError{Message: ErrMsgActionNotAllowed, Namespace: namespace, Action: action}
}

// NewActionForbiddenError creates an authorization error for an action
// carrying a forbid flag.
func NewActionForbiddenError(namespace, action string) *AuthorizationError {
	return &AuthorizationError{Message: ErrMsgActionForbidden, Namespace: namespace, Action: action}
}

// AuditError represents an audit sink failure.
type AuditError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AuditError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuditError) Unwrap() error {
	return e.Cause
}

// NewAuditError creates a new audit error.
func NewAuditError(msg string, cause error) *AuditError {
	return &AuditError{Message: msg, Cause: cause}
}
