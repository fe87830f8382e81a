package captainhook

// TagKind identifies the syntactic form of a parsed tag.
type TagKind int

const (
	// KindSingle is a self-closing tag: [action /]
	KindSingle TagKind = iota
	// KindContainer is an open/close pair: [tag]content[/tag]
	KindContainer
	// KindNamespaced is a namespace:action invocation: [ns:action ... /]
	KindNamespaced
)

// Kind name constants
const (
	KindNameSingle     = "single"
	KindNameContainer  = "container"
	KindNameNamespaced = "namespaced"
	KindNameUnknown    = "unknown"
)

// String returns the string representation of the tag kind.
func (k TagKind) String() string {
	switch k {
	case KindSingle:
		return KindNameSingle
	case KindContainer:
		return KindNameContainer
	case KindNamespaced:
		return KindNameNamespaced
	default:
		return KindNameUnknown
	}
}

// Tag is one parsed control unit from the markup. Tags are created fresh
// per parse call and are not cached; treat them as immutable records.
type Tag struct {
	// Kind is the syntactic form (single, container, namespaced).
	Kind TagKind

	// Namespace is set only for namespaced tags.
	Namespace string

	// Action is the verb being invoked (the tag name for single and
	// container tags).
	Action string

	// Params holds positional parameters in source order (namespaced
	// tags only).
	Params []string

	// Attributes holds key="value" arguments (namespaced tags only).
	Attributes map[string]string

	// Content is the raw text between open and close markers
	// (container tags only).
	Content string

	// Raw is the exact source substring this tag was parsed from. It is
	// used for error reporting and for removing tags from text.
	Raw string
}

// Pattern returns the handler lookup pattern: "namespace:action" for
// namespaced tags, the bare action name otherwise.
func (t *Tag) Pattern() string {
	if t.Kind == KindNamespaced {
		return t.Namespace + string(CharNamespace) + t.Action
	}
	return t.Action
}

// Attr returns the attribute value for key and whether it was present.
func (t *Tag) Attr(key string) (string, bool) {
	v, ok := t.Attributes[key]
	return v, ok
}

// AttrOr returns the attribute value for key, or fallback if absent.
func (t *Tag) AttrOr(key, fallback string) string {
	if v, ok := t.Attributes[key]; ok {
		return v
	}
	return fallback
}
