package internal

import "strconv"

// TokenKind represents the kind of a scanned tag token
type TokenKind string

// Token kind constants
const (
	TokenKindOpen       TokenKind = "OPEN"
	TokenKindClose      TokenKind = "CLOSE"
	TokenKindSingle     TokenKind = "SINGLE"
	TokenKindNamespaced TokenKind = "NAMESPACED"
)

// TagToken is one structural token read at a '[' position. It carries
// enough position bookkeeping for the caller to rebuild container spans.
type TagToken struct {
	Kind TokenKind

	// Name is the tag name for open, close, and single tokens.
	Name string

	// Namespace and Action are set for namespaced tokens.
	Namespace string
	Action    string

	// Params and Attributes are set for namespaced tokens.
	Params     []string
	Attributes map[string]string

	// Raw is the exact source span of the token itself.
	Raw string

	// RawStart is the byte offset of the token's '['.
	RawStart int

	// ContentStart is the byte offset just past an open token's ']'.
	ContentStart int
}

// ScanError represents a scanner error with the offending byte offset.
type ScanError struct {
	Message string
	Offset  int
}

// Error implements the error interface
func (e *ScanError) Error() string {
	return e.Message + " at offset " + strconv.Itoa(e.Offset)
}

// Scanner error message constants
const (
	ErrMsgInvalidTagName     = "invalid tag name"
	ErrMsgInvalidCloseTag    = "invalid close tag"
	ErrMsgMalformedCloseTag  = "malformed close tag"
	ErrMsgInvalidAction      = "invalid namespaced action"
	ErrMsgMalformedToken     = "malformed token after tag name"
	ErrMsgMalformedSelfClose = "malformed self-closing tag"
	ErrMsgMissingCloseSeq    = "missing '/]' close sequence"
	ErrMsgUnterminatedToken  = "unterminated token"
	ErrMsgUnbalancedQuote    = "unbalanced quote in arguments"
	ErrMsgTrailingEscape     = "dangling escape at end of arguments"
	ErrMsgEmptyAttrKey       = "attribute token has empty key"
	ErrMsgInvalidAttrKey     = "invalid attribute key"
	ErrMsgEmptyIdentifier    = "identifier cannot be empty"
	ErrMsgReservedSentinel   = "identifier uses reserved underscore sentinel"
	ErrMsgInvalidIdentifier  = "invalid identifier"
)

// Log message constants for the scanner
const (
	LogMsgScannerCreated = "tag scanner created"
	LogMsgTokenRead      = "tag token read"
)

// Log field constants for the scanner
const (
	LogFieldSource = "source_len"
	LogFieldOffset = "offset"
	LogFieldKind   = "kind"
)
