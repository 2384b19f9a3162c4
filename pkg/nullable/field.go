// Package nullable provides a tri-state field for partial updates: a value
// can be absent (leave unchanged), explicitly null (clear), or set.
package nullable

import (
	"bytes"
	"encoding/json"
)

// Field holds an optional, possibly-null value. The zero Field is absent.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Absent returns a field that leaves the target unchanged.
func Absent[T any]() Field[T] { return Field[T]{} }

// Null returns a field that clears the target.
func Null[T any]() Field[T] { return Field[T]{present: true, null: true} }

// Value returns a field that sets the target to v.
func Value[T any](v T) Field[T] { return Field[T]{present: true, value: v} }

// FromPtr maps nil to Null and a non-nil pointer to Value.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Null[T]()
	}
	return Value(*p)
}

// Present reports whether the field was supplied at all.
func (f Field[T]) Present() bool { return f.present }

// IsNull reports whether the field was supplied as null.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Get returns the value and whether one was set (present and not null).
func (f Field[T]) Get() (T, bool) {
	return f.value, f.present && !f.null
}

// Ptr returns nil for null, a pointer to the value otherwise.
// Calling Ptr on an absent field also returns nil; check Present first.
func (f Field[T]) Ptr() *T {
	if !f.present || f.null {
		return nil
	}
	v := f.value
	return &v
}

// UnmarshalJSON is only invoked when the key exists in the input, which is
// what separates "absent" from "null".
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON encodes absent and null fields as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
