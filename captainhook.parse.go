package captainhook

import (
	"errors"
	"strings"

	"github.com/itsatony/go-captainhook/internal"
	"go.uber.org/zap"
)

// openFrame tracks one open container marker on the parse stack.
type openFrame struct {
	name         string
	rawStart     int
	contentStart int
}

// ParseAll parses every top-level tag in text, in source order. Parsing
// is a pure function: it never touches handlers or registries. Tags
// found while a container is open are treated as inert content unless
// includeNested is set, in which case inner tags are reported too.
// Malformed markup fails closed with a parse error; nothing is guessed.
func ParseAll(text string, includeNested bool) ([]*Tag, error) {
	return parseAll(text, includeNested, nil)
}

func parseAll(text string, includeNested bool, logger *zap.Logger) ([]*Tag, error) {
	scanner := internal.NewScanner(text, logger)

	var tags []*Tag
	var stack []openFrame
	cursor := 0

	for cursor < scanner.Len() {
		if scanner.At(cursor) != CharTagOpen {
			cursor++
			continue
		}

		token, next, err := scanner.ReadTagToken(cursor)
		if err != nil {
			return nil, wrapScanError(err)
		}
		if token == nil {
			cursor++
			continue
		}

		switch token.Kind {
		case internal.TokenKindOpen:
			stack = append(stack, openFrame{
				name:         token.Name,
				rawStart:     token.RawStart,
				contentStart: token.ContentStart,
			})
			cursor = next
			continue

		case internal.TokenKindClose:
			if len(stack) == 0 {
				return nil, NewParseError(ErrMsgUnexpectedCloseTag, cursor, nil)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if token.Name != open.name {
				return nil, NewTagParseError(ErrMsgUnbalancedContainer, token.Raw)
			}
			if len(stack) == 0 || includeNested {
				tags = append(tags, &Tag{
					Kind:    KindContainer,
					Action:  open.name,
					Content: scanner.Slice(open.contentStart, cursor),
					Raw:     scanner.Slice(open.rawStart, next),
				})
			}
			cursor = next
			continue
		}

		// Single and namespaced tags inside an open container are inert
		// content by default: literal example markup quoted inside a
		// container must not be dispatched.
		if !includeNested && len(stack) > 0 {
			cursor = next
			continue
		}

		switch token.Kind {
		case internal.TokenKindSingle:
			tags = append(tags, &Tag{
				Kind:   KindSingle,
				Action: token.Name,
				Raw:    token.Raw,
			})
		case internal.TokenKindNamespaced:
			tags = append(tags, &Tag{
				Kind:       KindNamespaced,
				Namespace:  token.Namespace,
				Action:     token.Action,
				Params:     token.Params,
				Attributes: token.Attributes,
				Raw:        token.Raw,
			})
		}
		cursor = next
	}

	if len(stack) > 0 {
		unclosed := stack[len(stack)-1]
		return nil, NewTagParseError(ErrMsgUnterminatedTag, string(CharTagOpen)+unclosed.name+string(CharTagClose))
	}

	return tags, nil
}

// ParseTag parses a string that must contain exactly one top-level tag,
// with leading and trailing whitespace trimmed.
func ParseTag(tagString string) (*Tag, error) {
	text := strings.TrimSpace(tagString)
	if !strings.HasPrefix(text, string(CharTagOpen)) || !strings.HasSuffix(text, string(CharTagClose)) {
		return nil, NewTagParseError(ErrMsgInvalidTagFormat, tagString)
	}
	tags, err := ParseAll(text, true)
	if err != nil {
		return nil, err
	}
	if len(tags) != 1 {
		return nil, NewTagParseError(ErrMsgNotExactlyOneTag, tagString)
	}
	return tags[0], nil
}

// IsValidTag reports whether tagString parses as a single valid tag.
// It never returns an error.
func IsValidTag(tagString string) bool {
	_, err := ParseTag(tagString)
	return err == nil
}

// RemoveTags strips every top-level tag's raw span from text, once per
// tag in reverse discovery order, then trims the result. Text with no
// tags comes back trimmed but otherwise unchanged.
func RemoveTags(text string) (string, error) {
	tags, err := ParseAll(text, false)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return strings.TrimSpace(text), nil
	}
	result := text
	for i := len(tags) - 1; i >= 0; i-- {
		result = strings.Replace(result, tags[i].Raw, "", 1)
	}
	return strings.TrimSpace(result), nil
}

// ParseContainerTags returns every container tag in text, including
// nested ones.
func ParseContainerTags(text string) ([]*Tag, error) {
	return parseFiltered(text, true, KindContainer)
}

// ParseSelfClosing returns every top-level self-closing tag in text.
func ParseSelfClosing(text string) ([]*Tag, error) {
	return parseFiltered(text, false, KindSingle)
}

// ParseNamespacedTags returns every namespaced tag in text, including
// nested ones.
func ParseNamespacedTags(text string) ([]*Tag, error) {
	return parseFiltered(text, true, KindNamespaced)
}

func parseFiltered(text string, includeNested bool, kind TagKind) ([]*Tag, error) {
	tags, err := ParseAll(text, includeNested)
	if err != nil {
		return nil, err
	}
	var out []*Tag
	for _, tag := range tags {
		if tag.Kind == kind {
			out = append(out, tag)
		}
	}
	return out, nil
}

// wrapScanError converts an internal scan error into the public parse
// error taxonomy, preserving the offending offset.
func wrapScanError(err error) error {
	var scanErr *internal.ScanError
	if errors.As(err, &scanErr) {
		return NewParseError(scanErr.Message, scanErr.Offset, nil)
	}
	return NewParseError(err.Error(), 0, err)
}
