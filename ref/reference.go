package ref

import (
	"github.com/arloliu/pakref/format"
)

// Site is a slot waiting to receive the canonical decoded value of a key.
type Site interface {
	Key() format.Key
	Type() format.FileType
	IsNull() bool
	IsResolved() bool
	// Fill stores v if the site is unresolved and accepts its type, and
	// reports whether it did.
	Fill(v any) bool
}

// Reference is a typed, possibly-null edge from one decoded record to another.
//
// A Reference never owns the record it names: the loader's cache does. The
// value it holds is the canonical instance, shared with every other
// Reference naming the same key.
type Reference[T any] struct {
	key      format.Key
	typ      format.FileType
	value    T
	resolved bool
}

var _ Site = (*Reference[any])(nil)

// New creates an unresolved reference to key decoded as typ.
func New[T any](key format.Key, typ format.FileType) *Reference[T] {
	return &Reference[T]{key: key, typ: typ}
}

// Null creates a null reference.
func Null[T any]() *Reference[T] {
	return &Reference[T]{key: format.NullKey, typ: format.TypeNone}
}

// Key returns the content key the reference names.
func (r *Reference[T]) Key() format.Key { return r.key }

// Type returns the file type the referenced record decodes as.
func (r *Reference[T]) Type() format.FileType { return r.typ }

// IsNull reports whether the reference names nothing: its type is TypeNone
// or its key is the sentinel.
func (r *Reference[T]) IsNull() bool {
	return r.typ.IsNone() || r.key.IsNull()
}

// IsResolved reports whether the reference holds a value.
func (r *Reference[T]) IsResolved() bool {
	return r.resolved
}

// Value returns the resolved value, if any.
func (r *Reference[T]) Value() (T, bool) {
	return r.value, r.resolved
}

// Fill stores v when the reference is unresolved and v is a T.
func (r *Reference[T]) Fill(v any) bool {
	if r.resolved || r.IsNull() {
		return false
	}

	typed, ok := v.(T)
	if !ok {
		return false
	}
	r.value, r.resolved = typed, true

	return true
}

func (r *Reference[T]) set(v T) {
	r.value, r.resolved = v, true
}

func (r *Reference[T]) String() string {
	if r.IsNull() {
		return "ref(null)"
	}

	return "ref(" + r.key.String() + ":" + r.typ.String() + ")"
}
