package captainhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAll_MixedDocument(t *testing.T) {
	text := `Before [refresh /] middle [think]some thoughts[/think] after [files:read path="a.txt" /] end`

	tags, err := ParseAll(text, false)
	require.NoError(t, err)
	require.Len(t, tags, 3)

	assert.Equal(t, KindSingle, tags[0].Kind)
	assert.Equal(t, "refresh", tags[0].Action)
	assert.Equal(t, "[refresh /]", tags[0].Raw)

	assert.Equal(t, KindContainer, tags[1].Kind)
	assert.Equal(t, "think", tags[1].Action)
	assert.Equal(t, "some thoughts", tags[1].Content)
	assert.Equal(t, "[think]some thoughts[/think]", tags[1].Raw)

	assert.Equal(t, KindNamespaced, tags[2].Kind)
	assert.Equal(t, "files", tags[2].Namespace)
	assert.Equal(t, "read", tags[2].Action)
	assert.Equal(t, "a.txt", tags[2].Attributes["path"])
}

func TestParseAll_NoTags(t *testing.T) {
	tags, err := ParseAll("just plain text, no brackets that matter", false)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestParseAll_NestedTagsInertByDefault(t *testing.T) {
	text := "[think]try [refresh /] maybe[/think]"

	tags, err := ParseAll(text, false)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, KindContainer, tags[0].Kind)
	assert.Equal(t, "try [refresh /] maybe", tags[0].Content)
}

func TestParseAll_IncludeNested(t *testing.T) {
	text := "[think]try [refresh /] maybe[/think]"

	tags, err := ParseAll(text, true)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, KindSingle, tags[0].Kind)
	assert.Equal(t, "refresh", tags[0].Action)
	assert.Equal(t, KindContainer, tags[1].Kind)
}

func TestParseAll_NestedContainers(t *testing.T) {
	text := "[outer]a [inner]b[/inner] c[/outer]"

	tags, err := ParseAll(text, false)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "outer", tags[0].Action)
	assert.Equal(t, "a [inner]b[/inner] c", tags[0].Content)
}

func TestParseAll_UnterminatedContainer(t *testing.T) {
	_, err := ParseAll("[think]never closed", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnterminatedTag)
}

func TestParseAll_UnexpectedCloseTag(t *testing.T) {
	_, err := ParseAll("text [/think] more", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnexpectedCloseTag)
}

func TestParseAll_MismatchedCloseTag(t *testing.T) {
	_, err := ParseAll("[outer]content[/inner]", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnbalancedContainer)
}

func TestParseAll_MalformedTagFailsClosed(t *testing.T) {
	// A bracket that begins a token must parse fully or fail the whole
	// text; nothing is guessed.
	_, err := ParseAll("ok [files:read path=\"open /] rest", false)
	require.Error(t, err)
}

func TestParseAll_BracketNotStartingTagFailsClosed(t *testing.T) {
	// A bracket followed by anything that is not a valid tag form is an
	// error, never silently skipped.
	_, err := ParseAll("index b[ 2 ] done", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidTagName)
}

func TestParseAll_BareTrailingBracket(t *testing.T) {
	tags, err := ParseAll("trailing [", false)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestParseTag_SingleTag(t *testing.T) {
	tag, err := ParseTag("  [refresh /]  ")
	require.NoError(t, err)
	assert.Equal(t, KindSingle, tag.Kind)
	assert.Equal(t, "refresh", tag.Action)
}

func TestParseTag_Namespaced(t *testing.T) {
	tag, err := ParseTag(`[files:read fast path="a b.txt" mode='ro' /]`)
	require.NoError(t, err)
	assert.Equal(t, KindNamespaced, tag.Kind)
	assert.Equal(t, "files:read", tag.Pattern())
	assert.Equal(t, []string{"fast"}, tag.Params)
	assert.Equal(t, "a b.txt", tag.Attributes["path"])
	assert.Equal(t, "ro", tag.Attributes["mode"])
}

func TestParseTag_Container(t *testing.T) {
	tag, err := ParseTag("[think]inner text[/think]")
	require.NoError(t, err)
	assert.Equal(t, KindContainer, tag.Kind)
	assert.Equal(t, "inner text", tag.Content)
}

func TestParseTag_RejectsNonTagInput(t *testing.T) {
	_, err := ParseTag("not a tag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidTagFormat)
}

func TestParseTag_RejectsMultipleTags(t *testing.T) {
	_, err := ParseTag("[a /] [b /]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNotExactlyOneTag)
}

func TestIsValidTag(t *testing.T) {
	assert.True(t, IsValidTag("[refresh /]"))
	assert.True(t, IsValidTag("[think]x[/think]"))
	assert.True(t, IsValidTag(`[files:read path="a.txt" /]`))

	assert.False(t, IsValidTag("plain"))
	assert.False(t, IsValidTag("[unclosed"))
	assert.False(t, IsValidTag("[a /] [b /]"))
}

func TestRemoveTags(t *testing.T) {
	text := "keep [refresh /] this [think]not this[/think] text"

	clean, err := RemoveTags(text)
	require.NoError(t, err)
	assert.Equal(t, "keep  this  text", clean)
}

func TestRemoveTags_NoTags(t *testing.T) {
	clean, err := RemoveTags("  untouched text  ")
	require.NoError(t, err)
	assert.Equal(t, "untouched text", clean)
}

func TestRemoveTags_KeepsNestedContentOutOfResult(t *testing.T) {
	clean, err := RemoveTags("a [outer]x [inner]y[/inner] z[/outer] b")
	require.NoError(t, err)
	assert.Equal(t, "a  b", clean)
}

func TestRemoveTags_FailsOnMalformed(t *testing.T) {
	_, err := RemoveTags("[think]unterminated")
	require.Error(t, err)
}

func TestParseContainerTags(t *testing.T) {
	text := "[outer]x [inner]y[/inner] z[/outer] [refresh /]"

	tags, err := ParseContainerTags(text)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "inner", tags[0].Action)
	assert.Equal(t, "outer", tags[1].Action)
}

func TestParseSelfClosing(t *testing.T) {
	text := "[refresh /] [think][inner /][/think] [other /]"

	tags, err := ParseSelfClosing(text)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "refresh", tags[0].Action)
	assert.Equal(t, "other", tags[1].Action)
}

func TestParseNamespacedTags(t *testing.T) {
	text := "[sys:ping /] [think][files:read /][/think]"

	tags, err := ParseNamespacedTags(text)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "sys:ping", tags[0].Pattern())
	assert.Equal(t, "files:read", tags[1].Pattern())
}

func TestTag_AttrHelpers(t *testing.T) {
	tag, err := ParseTag(`[db:query table="users" /]`)
	require.NoError(t, err)

	v, ok := tag.Attr("table")
	assert.True(t, ok)
	assert.Equal(t, "users", v)

	_, ok = tag.Attr("missing")
	assert.False(t, ok)

	assert.Equal(t, "users", tag.AttrOr("table", "fallback"))
	assert.Equal(t, "fallback", tag.AttrOr("missing", "fallback"))
}

func TestTagKind_String(t *testing.T) {
	assert.Equal(t, KindNameSingle, KindSingle.String())
	assert.Equal(t, KindNameContainer, KindContainer.String())
	assert.Equal(t, KindNameNamespaced, KindNamespaced.String())
	assert.Equal(t, KindNameUnknown, TagKind(99).String())
}
