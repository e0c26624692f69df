package edge

import (
	"slices"
	"strings"
)

// Set is an immutable, order-independent set of names.
type Set struct {
	items []string
}

// NewSet returns a set holding the given names. Duplicates are dropped.
func NewSet(names ...string) Set {
	items := slices.Clone(names)
	slices.Sort(items)
	return Set{items: slices.Compact(items)}
}

// Has reports whether the set contains name.
func (s Set) Has(name string) bool {
	_, ok := slices.BinarySearch(s.items, name)
	return ok
}

// Len returns the number of names in the set.
func (s Set) Len() int { return len(s.items) }

// Items returns the names in sorted order. The returned slice is a copy.
func (s Set) Items() []string { return slices.Clone(s.items) }

// Equal reports whether both sets hold the same names.
func (s Set) Equal(other Set) bool { return slices.Equal(s.items, other.items) }

// String implements the fmt.Stringer interface.
func (s Set) String() string { return "{" + strings.Join(s.items, ", ") + "}" }
