// Package activemodel implements the write-side lifecycle for a single row:
// a tri-state field lattice (NotSet/Unchanged/Set), and the insert, update,
// save and delete operations built on top of it. It is deliberately generic
// over the column value type rather than codegen'd per entity, mirroring
// the way entity.Entity describes columns reflectively.
package activemodel

import "reflect"

// tag discriminates the three states a field can be in.
type tag uint8

const (
	tagNotSet tag = iota
	tagUnchanged
	tagSet
)

// State is one column's place in the tri-state lattice: NotSet (no write
// intent, and - for a fetched model - nothing to read either), Unchanged (a
// value loaded from or already persisted to the database), or Set (a
// pending write). NotSet ⊏ Set(v); Unchanged(v) is Set(v)'s frozen form
// once a write lands.
type State[T any] struct {
	t tag
	v T
}

// NotSet returns a field with no write intent and no known value.
func NotSet[T any]() State[T] { return State[T]{t: tagNotSet} }

// Unchanged returns a field carrying a value already persisted (or just
// loaded from a fetched row), not slated for the next write.
func Unchanged[T any](v T) State[T] { return State[T]{t: tagUnchanged, v: v} }

// Set returns a field carrying a pending write.
func Set[T any](v T) State[T] { return State[T]{t: tagSet, v: v} }

// IsNotSet reports whether the field has no write intent.
func (s State[T]) IsNotSet() bool { return s.t == tagNotSet }

// IsUnchanged reports whether the field holds a value not slated for write.
func (s State[T]) IsUnchanged() bool { return s.t == tagUnchanged }

// IsSet reports whether the field holds a pending write.
func (s State[T]) IsSet() bool { return s.t == tagSet }

// Present reports whether the field carries any value at all (Set or Unchanged).
func (s State[T]) Present() bool { return s.t != tagNotSet }

// Value returns the field's value and true, or the zero value and false if
// the field is NotSet.
func (s State[T]) Value() (T, bool) {
	if s.t == tagNotSet {
		var zero T
		return zero, false
	}
	return s.v, true
}

// Reset turns an Unchanged field back into a Set field carrying the same
// value, so the next update includes it in the SET clause. A no-op on
// NotSet or already-Set fields.
func (s State[T]) Reset() State[T] {
	if s.t == tagUnchanged {
		return Set(s.v)
	}
	return s
}

// Freeze turns a Set field into Unchanged, carrying the same value - the
// transition every Set field goes through once a write to it lands.
func (s State[T]) Freeze() State[T] {
	if s.t == tagSet {
		return Unchanged(s.v)
	}
	return s
}

// Equal compares two states by value alone, ignoring whether either is Set
// or Unchanged: Unchanged(v) and Set(v) compare equal for the same v, since
// both represent the row genuinely holding v. Two NotSet states are equal;
// a NotSet and a present state are never equal.
func (s State[T]) Equal(o State[T]) bool {
	if s.t == tagNotSet || o.t == tagNotSet {
		return s.t == o.t
	}
	return reflect.DeepEqual(s.v, o.v)
}
