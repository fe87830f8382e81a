package captainhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeze_Map(t *testing.T) {
	src := map[string]any{"a": 1, "b": "two"}

	frozen := FreezeMap(src)
	assert.Equal(t, 2, frozen.Len())
	assert.True(t, frozen.Has("a"))
	assert.Equal(t, []string{"a", "b"}, frozen.Keys())

	v, ok := frozen.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	// Mutating the source after freezing does not leak through.
	src["c"] = 3
	assert.False(t, frozen.Has("c"))

	// Unfreeze yields an independent copy.
	thawed := frozen.Unfreeze()
	thawed["d"] = 4
	assert.False(t, frozen.Has("d"))
}

func TestFreeze_List(t *testing.T) {
	src := []any{"x", "y"}

	frozen := FreezeList(src)
	assert.Equal(t, 2, frozen.Len())
	assert.Equal(t, "x", frozen.At(0))

	src[0] = "mutated"
	assert.Equal(t, "x", frozen.At(0))

	thawed := frozen.Unfreeze()
	thawed[1] = "changed"
	assert.Equal(t, "y", frozen.At(1))
}

func TestFreeze_Set(t *testing.T) {
	src := map[string]struct{}{"read": {}, "list": {}}

	frozen := FreezeSet(src)
	assert.Equal(t, 2, frozen.Len())
	assert.True(t, frozen.Has("read"))
	assert.False(t, frozen.Has("write"))
	assert.Equal(t, []string{"list", "read"}, frozen.Values())
}

func TestFreeze_Dispatch(t *testing.T) {
	_, isMap := Freeze(map[string]any{"k": "v"}).(FrozenMap)
	assert.True(t, isMap)

	_, isList := Freeze([]any{1, 2}).(FrozenList)
	assert.True(t, isList)

	_, isListFromStrings := Freeze([]string{"a"}).(FrozenList)
	assert.True(t, isListFromStrings)

	_, isSet := Freeze(map[string]struct{}{"m": {}}).(FrozenSet)
	assert.True(t, isSet)
}

func TestFreeze_StringMapIsCopied(t *testing.T) {
	src := map[string]string{"k": "v"}

	frozen, ok := Freeze(src).(map[string]string)
	require.True(t, ok)
	src["k2"] = "v2"
	assert.NotContains(t, frozen, "k2")
}

func TestFreeze_ScalarsPassThrough(t *testing.T) {
	assert.Equal(t, 42, Freeze(42))
	assert.Equal(t, "text", Freeze("text"))
	assert.Equal(t, true, Freeze(true))
	assert.Nil(t, Freeze(nil))
}

func TestFreeze_AlreadyFrozenPassThrough(t *testing.T) {
	frozen := FreezeMap(map[string]any{"a": 1})
	again := Freeze(frozen)
	assert.Equal(t, frozen, again)
}
