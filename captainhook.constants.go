package captainhook

import "time"

// Version is the current library version.
const Version = "1.0.0"

// Tag syntax characters. The [bracket] syntax is fixed; it is the wire
// format control tags use inside free text.
const (
	CharTagOpen   = '['
	CharTagClose  = ']'
	CharNamespace = ':'
)

// Hook point names. The pre/post execute points wrap every
// namespace-resolved handler invocation and are protected from removal
// by default (see HookRegistry critical hooks).
const (
	HookBeforeExecute = "captainhook.before_execute"
	HookAfterExecute  = "captainhook.after_execute"
	HookPreExecute    = "captainhook.pre_execute"
	HookPostExecute   = "captainhook.post_execute"
)

// FilterResult is the filter chain applied to every tag result before it
// is returned to the caller.
const FilterResult = "captainhook.result"

// DefaultHookPriority is the priority used when none is given.
// Lower priorities run earlier.
const DefaultHookPriority = 10

// Hook entry id prefixes. Action and filter ids live in distinct spaces.
const (
	ActionIDPrefix = "act-"
	FilterIDPrefix = "flt-"
)

// EnvRemovalToken is the environment variable the process-wide default
// hook registry reads its critical-hook removal token from.
const EnvRemovalToken = "CAPTAINHOOK_HOOK_REMOVAL_TOKEN"

// Error code constants for categorization
const (
	ErrCodeParse        = "CAPTAINHOOK_PARSE"
	ErrCodeRegistration = "CAPTAINHOOK_REGISTRATION"
	ErrCodeDispatch     = "CAPTAINHOOK_DISPATCH"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyOffset     = "offset"
	MetaKeyPattern    = "pattern"
	MetaKeyKey        = "key"
	MetaKeyIdentifier = "identifier"
	MetaKeyHandler    = "handler"
	MetaKeyRaw        = "raw"
)

// Log message constants
const (
	LogMsgContextCreated      = "execution context created"
	LogMsgHandlerRegistered   = "handler registered"
	LogMsgNamespaceRegistered = "namespace registered"
	LogMsgNamespaceRemoved    = "namespace unregistered"
	LogMsgHookRegistered      = "hook callback registered"
	LogMsgHookRemoved         = "hook callback removed"
	LogMsgCallbackFailed      = "hook callback failed"
	LogMsgCallbackPanic       = "hook callback panicked"
	LogMsgTagDispatched       = "tag dispatched"
	LogMsgTagFailed           = "tag execution failed"
	LogMsgAuditWriteFailed    = "audit event write failed"
	LogMsgAuditAttachFailed   = "audit hook attachment failed"
)

// Log field name constants
const (
	LogFieldHook      = "hook"
	LogFieldEntryID   = "entry_id"
	LogFieldPriority  = "priority"
	LogFieldNamespace = "namespace"
	LogFieldPattern   = "pattern"
	LogFieldKind      = "kind"
	LogFieldRecovered = "recovered"
)

// Postgres auditor defaults
const (
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresTablePrefix            = "captainhook_"
)

// MemoryAuditorDefaultCapacity bounds the in-memory audit ring buffer.
const MemoryAuditorDefaultCapacity = 1024

// Audit phases
const (
	AuditPhasePre  = "pre"
	AuditPhasePost = "post"
)
