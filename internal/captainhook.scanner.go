package internal

import (
	"strings"

	"go.uber.org/zap"
)

// Scanner reads structural tag tokens out of raw text. It is a pure
// byte-level reader: container balancing and depth policy live in the
// caller.
type Scanner struct {
	source string
	logger *zap.Logger
}

// NewScanner creates a scanner over source.
func NewScanner(source string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgScannerCreated, zap.Int(LogFieldSource, len(source)))
	return &Scanner{
		source: source,
		logger: logger,
	}
}

// Len returns the length of the scanned source.
func (s *Scanner) Len() int {
	return len(s.source)
}

// At returns the byte at offset i.
func (s *Scanner) At(i int) byte {
	return s.source[i]
}

// Slice returns source[from:to].
func (s *Scanner) Slice(from, to int) string {
	return s.source[from:to]
}

func (s *Scanner) emit(token *TagToken, next int) (*TagToken, int, error) {
	s.logger.Debug(LogMsgTokenRead,
		zap.String(LogFieldKind, string(token.Kind)),
		zap.Int(LogFieldOffset, token.RawStart),
	)
	return token, next, nil
}

// ReadTagToken attempts to read one tag token at start. If start does not
// sit on a readable '[' (not a bracket, or a bare bracket at end of
// input) it returns a nil token and the unchanged offset; the caller
// skips one byte. Any bracket that begins a token but does not match a
// valid form is a scan error, not a silently-skipped character.
func (s *Scanner) ReadTagToken(start int) (*TagToken, int, error) {
	if start >= len(s.source) || s.source[start] != '[' {
		return nil, start, nil
	}
	if start+1 >= len(s.source) {
		return nil, start, nil
	}

	// Close marker: [/name]
	if s.source[start+1] == '/' {
		cursor := start + 2
		name, cursor := readIdentifier(s.source, cursor)
		if name == "" {
			return nil, start, &ScanError{Message: ErrMsgInvalidCloseTag, Offset: start}
		}
		if hasReservedSentinel(name) {
			return nil, start, &ScanError{Message: ErrMsgReservedSentinel, Offset: start}
		}
		if cursor >= len(s.source) || s.source[cursor] != ']' {
			return nil, start, &ScanError{Message: ErrMsgMalformedCloseTag, Offset: start}
		}
		return s.emit(&TagToken{
			Kind:     TokenKindClose,
			Name:     name,
			Raw:      s.source[start : cursor+1],
			RawStart: start,
		}, cursor+1)
	}

	cursor := start + 1
	name, cursor := readIdentifier(s.source, cursor)
	if name == "" {
		return nil, start, &ScanError{Message: ErrMsgInvalidTagName, Offset: start}
	}
	if hasReservedSentinel(name) {
		return nil, start, &ScanError{Message: ErrMsgReservedSentinel, Offset: start}
	}

	// Namespaced form: [ns:action ... /]
	if cursor < len(s.source) && s.source[cursor] == ':' {
		cursor++
		action, next := readIdentifier(s.source, cursor)
		if action == "" {
			return nil, start, &ScanError{Message: ErrMsgInvalidAction, Offset: start}
		}
		if hasReservedSentinel(action) {
			return nil, start, &ScanError{Message: ErrMsgReservedSentinel, Offset: start}
		}
		cursor = next
		for cursor < len(s.source) && isSpace(s.source[cursor]) {
			cursor++
		}

		closeAt, err := s.findNamespacedClose(cursor)
		if err != nil {
			return nil, start, err
		}
		argText := strings.TrimSpace(s.source[cursor:closeAt])
		attrs, params, err := SplitArgs(argText, cursor)
		if err != nil {
			return nil, start, err
		}
		return s.emit(&TagToken{
			Kind:       TokenKindNamespaced,
			Namespace:  name,
			Action:     action,
			Params:     params,
			Attributes: attrs,
			Raw:        s.source[start : closeAt+2],
			RawStart:   start,
		}, closeAt+2)
	}

	// Whitespace is allowed between the name and the closing form.
	for cursor < len(s.source) && isSpace(s.source[cursor]) {
		cursor++
	}
	if cursor >= len(s.source) {
		return nil, start, &ScanError{Message: ErrMsgUnterminatedToken, Offset: start}
	}

	// Self-closing form: [name /]
	if s.source[cursor] == '/' {
		if cursor+1 >= len(s.source) || s.source[cursor+1] != ']' {
			return nil, start, &ScanError{Message: ErrMsgMalformedSelfClose, Offset: start}
		}
		return s.emit(&TagToken{
			Kind:     TokenKindSingle,
			Name:     name,
			Raw:      s.source[start : cursor+2],
			RawStart: start,
		}, cursor+2)
	}

	// Open marker: [name]
	if s.source[cursor] != ']' {
		return nil, start, &ScanError{Message: ErrMsgMalformedToken, Offset: start}
	}
	return s.emit(&TagToken{
		Kind:         TokenKindOpen,
		Name:         name,
		Raw:          s.source[start : cursor+1],
		RawStart:     start,
		ContentStart: cursor + 1,
	}, cursor+1)
}

// findNamespacedClose locates the '/' of the closing '/]' sequence for a
// namespaced tag, honoring single/double quoting and backslash escaping.
// Characters inside a quoted attribute value, including escaped quotes,
// never terminate the tag.
func (s *Scanner) findNamespacedClose(start int) (int, error) {
	i := start
	var quote byte
	escaped := false
	for i < len(s.source)-1 {
		ch := s.source[i]
		if escaped {
			escaped = false
			i++
			continue
		}
		if ch == '\\' {
			escaped = true
			i++
			continue
		}
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			i++
			continue
		}
		if ch == '"' || ch == '\'' {
			quote = ch
			i++
			continue
		}
		if ch == '/' && s.source[i+1] == ']' {
			return i, nil
		}
		i++
	}
	return 0, &ScanError{Message: ErrMsgMissingCloseSeq, Offset: start}
}

// SplitArgs tokenizes namespaced-tag argument text with shell-style
// quote and escape semantics, then classifies each token: a token
// containing '=' with a valid identifier key becomes an attribute,
// anything else is a positional parameter, in source order. Tokens that
// look like key=value but carry an invalid key fail the parse.
func SplitArgs(argText string, baseOffset int) (map[string]string, []string, error) {
	if argText == "" {
		return map[string]string{}, nil, nil
	}
	tokens, err := splitTokens(argText, baseOffset)
	if err != nil {
		return nil, nil, err
	}

	attrs := make(map[string]string)
	var params []string
	for _, token := range tokens {
		eq := strings.IndexByte(token, '=')
		if eq < 0 {
			params = append(params, token)
			continue
		}
		key := token[:eq]
		value := token[eq+1:]
		if key == "" {
			return nil, nil, &ScanError{Message: ErrMsgEmptyAttrKey, Offset: baseOffset}
		}
		if ValidateIdentifier(key) != nil {
			return nil, nil, &ScanError{Message: ErrMsgInvalidAttrKey, Offset: baseOffset}
		}
		attrs[key] = value
	}
	return attrs, params, nil
}

// splitTokens splits on unquoted whitespace. Single quotes preserve
// everything verbatim; double quotes honor \" and \\ escapes; an
// unquoted backslash escapes the next byte. Unbalanced quoting or a
// dangling escape fails closed.
func splitTokens(s string, baseOffset int) ([]string, error) {
	var tokens []string
	var sb strings.Builder
	inToken := false
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case isSpace(ch):
			if inToken {
				tokens = append(tokens, sb.String())
				sb.Reset()
				inToken = false
			}
			i++

		case ch == '\\':
			if i+1 >= len(s) {
				return nil, &ScanError{Message: ErrMsgTrailingEscape, Offset: baseOffset + i}
			}
			sb.WriteByte(s[i+1])
			inToken = true
			i += 2

		case ch == '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, &ScanError{Message: ErrMsgUnbalancedQuote, Offset: baseOffset + i}
			}
			sb.WriteString(s[i+1 : i+1+end])
			inToken = true
			i += end + 2

		case ch == '"':
			i++
			closed := false
			for i < len(s) {
				c := s[i]
				if c == '"' {
					closed = true
					i++
					break
				}
				if c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
					sb.WriteByte(s[i+1])
					i += 2
					continue
				}
				sb.WriteByte(c)
				i++
			}
			if !closed {
				return nil, &ScanError{Message: ErrMsgUnbalancedQuote, Offset: baseOffset + i}
			}
			inToken = true

		default:
			sb.WriteByte(ch)
			inToken = true
			i++
		}
	}
	if inToken {
		tokens = append(tokens, sb.String())
	}
	return tokens, nil
}

// readIdentifier reads an identifier at start: a letter or underscore,
// then letters, digits, underscores, or hyphens. Returns the identifier
// (empty if none) and the offset just past it.
func readIdentifier(text string, start int) (string, int) {
	if start >= len(text) {
		return "", start
	}
	if !isLetter(text[start]) && text[start] != '_' {
		return "", start
	}
	end := start + 1
	for end < len(text) {
		ch := text[end]
		if isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' {
			end++
		} else {
			break
		}
	}
	return text[start:end], end
}

// ValidateIdentifier checks a namespace, action, or attribute-key
// identifier: starts with a letter or underscore, contains only
// alphanumerics, underscores, or hyphens, and does not start or end with
// the reserved "__" sentinel.
func ValidateIdentifier(value string) error {
	return validateIdentifier(value, false)
}

// ValidateHookName checks a hook name; hook names additionally allow '.'
// and ':' separators.
func ValidateHookName(value string) error {
	return validateIdentifier(value, true)
}

func validateIdentifier(value string, hookName bool) error {
	if value == "" {
		return &ScanError{Message: ErrMsgEmptyIdentifier}
	}
	if hasReservedSentinel(value) {
		return &ScanError{Message: ErrMsgReservedSentinel}
	}
	if !isLetter(value[0]) && value[0] != '_' {
		return &ScanError{Message: ErrMsgInvalidIdentifier}
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' {
			continue
		}
		if hookName && (ch == '.' || ch == ':') {
			continue
		}
		return &ScanError{Message: ErrMsgInvalidIdentifier}
	}
	return nil
}

// hasReservedSentinel reports whether the identifier starts or ends with
// the reserved "__" sentinel.
func hasReservedSentinel(value string) bool {
	return strings.HasPrefix(value, "__") || strings.HasSuffix(value, "__")
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
