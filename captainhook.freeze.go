package captainhook

import "sort"

// Freezing converts mutable containers into read-only views before they
// cross a dispatch boundary: hook emission, filter application, and
// namespaced-handler calls all freeze their arguments so callbacks can
// never mutate caller-owned state. Scalars pass through unchanged.

// FrozenMap is a read-only view over a string-keyed mapping.
type FrozenMap struct {
	entries map[string]any
}

// Get returns the value for key and whether it exists.
func (m FrozenMap) Get(key string) (any, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Has reports whether key exists.
func (m FrozenMap) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Len returns the number of entries.
func (m FrozenMap) Len() int {
	return len(m.entries)
}

// Keys returns all keys in sorted order.
func (m FrozenMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unfreeze returns a fresh mutable copy of the mapping.
func (m FrozenMap) Unfreeze() map[string]any {
	out := make(map[string]any, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

// FrozenList is a read-only view over an ordered sequence.
type FrozenList struct {
	items []any
}

// At returns the item at index i.
func (l FrozenList) At(i int) any {
	return l.items[i]
}

// Len returns the number of items.
func (l FrozenList) Len() int {
	return len(l.items)
}

// Unfreeze returns a fresh mutable copy of the sequence.
func (l FrozenList) Unfreeze() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// FrozenSet is a read-only view over a string set.
type FrozenSet struct {
	members map[string]struct{}
}

// Has reports whether value is a member.
func (s FrozenSet) Has(value string) bool {
	_, ok := s.members[value]
	return ok
}

// Len returns the number of members.
func (s FrozenSet) Len() int {
	return len(s.members)
}

// Values returns all members in sorted order.
func (s FrozenSet) Values() []string {
	values := make([]string, 0, len(s.members))
	for v := range s.members {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Freeze converts a mutable container value into its read-only
// equivalent: map[string]any becomes FrozenMap, []any becomes
// FrozenList, map[string]struct{} becomes FrozenSet, and
// map[string]string becomes a defensive copy. Already-frozen values and
// scalars pass through unchanged.
func Freeze(value any) any {
	switch v := value.(type) {
	case FrozenMap, FrozenList, FrozenSet:
		return v
	case map[string]any:
		entries := make(map[string]any, len(v))
		for k, item := range v {
			entries[k] = item
		}
		return FrozenMap{entries: entries}
	case []any:
		items := make([]any, len(v))
		copy(items, v)
		return FrozenList{items: items}
	case []string:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return FrozenList{items: items}
	case map[string]struct{}:
		members := make(map[string]struct{}, len(v))
		for k := range v {
			members[k] = struct{}{}
		}
		return FrozenSet{members: members}
	case map[string]string:
		return copyStringMap(v)
	default:
		return value
	}
}

// FreezeMap freezes a string-keyed mapping.
func FreezeMap(m map[string]any) FrozenMap {
	return Freeze(m).(FrozenMap)
}

// FreezeList freezes an ordered sequence.
func FreezeList(items []any) FrozenList {
	return Freeze(items).(FrozenList)
}

// FreezeSet freezes a string set.
func FreezeSet(members map[string]struct{}) FrozenSet {
	return Freeze(members).(FrozenSet)
}

// freezeArgs freezes a variadic argument list in place order.
func freezeArgs(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = Freeze(arg)
	}
	return out
}

// freezeKwargs freezes every value of a keyword-argument mapping into a
// fresh map.
func freezeKwargs(kwargs map[string]any) map[string]any {
	if kwargs == nil {
		return nil
	}
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		out[k] = Freeze(v)
	}
	return out
}

// copyStringMap returns a defensive copy of a string map.
func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
