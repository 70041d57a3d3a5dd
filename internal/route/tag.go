// Package route identifies narrative routes and classifies them against a
// catalog of base, DLC, special, and true routes.
package route

import "strings"

// Tag is the identity of a route. Two tags are equal iff their underlying
// strings are identical; no trimming or case folding is applied.
type Tag struct {
	value string
}

// From wraps name verbatim.
func From(name string) Tag {
	return Tag{value: name}
}

// Empty returns the tag of an unselected route.
func Empty() Tag {
	return Tag{}
}

// Value returns the underlying route name.
func (t Tag) Value() string {
	return t.value
}

// String returns the route name.
func (t Tag) String() string {
	return t.value
}

// IsEmpty reports whether the name is empty or whitespace only.
func (t Tag) IsEmpty() bool {
	return strings.TrimSpace(t.value) == ""
}

// Equal reports strict equality of the underlying names.
func (t Tag) Equal(other Tag) bool {
	return t.value == other.value
}
