// Package record implements dynamic, field-based record types: ordered named
// fields, two-phase construction with an immutability lock, per-field equality
// and hash strategies, structural export, and msgpack persistence.
package record

import (
	"fmt"

	"github.com/msabramo/simplestruct/check"
)

// EqFunc compares two stored field values.
type EqFunc func(a, b any) bool

// HashFunc hashes one stored field value. It reports an error for values the
// strategy cannot hash.
type HashFunc func(v any) (uint64, error)

// Field describes a single named slot of a record type. A Field starts as an
// unbound prototype; the type builder clones it and stamps the clone with its
// slot name, so one prototype may be reused across many (type, slot) pairs
// without aliasing.
type Field struct {
	name string

	eq   EqFunc
	hash HashFunc

	kind     check.Kind
	mods     check.Mods
	hasCheck bool
}

// FieldOption customizes a field prototype.
type FieldOption func(*Field)

// WithEq overrides the field's equality strategy.
func WithEq(eq EqFunc) FieldOption {
	return func(f *Field) { f.eq = eq }
}

// WithHash overrides the field's hash strategy. The strategy must be
// consistent with the field's equality: values equal under Eq should hash the
// same. The engine does not enforce this.
func WithHash(h HashFunc) FieldOption {
	return func(f *Field) { f.hash = h }
}

// WithCheck attaches a kind/modifier constraint validated on every store.
func WithCheck(kind check.Kind, mods check.Mods) FieldOption {
	return func(f *Field) {
		f.kind = kind
		f.mods = mods
		f.hasCheck = true
	}
}

// NewField builds an unbound field prototype.
func NewField(opts ...FieldOption) *Field {
	f := &Field{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the slot name, or "" for an unbound prototype.
func (f *Field) Name() string { return f.name }

// Clone returns an unbound copy carrying the same strategies and constraint.
func (f *Field) Clone() *Field {
	c := *f
	c.name = ""
	return &c
}

// Equal compares two values under the field's equality strategy.
func (f *Field) Equal(a, b any) bool {
	if f.eq != nil {
		return f.eq(a, b)
	}
	return structEqual(a, b)
}

// HashValue hashes a value under the field's hash strategy.
func (f *Field) HashValue(v any) (uint64, error) {
	if f.hash != nil {
		return f.hash(v)
	}
	return defaultHash(v)
}

// Get reads this field's value from a record, mediating by slot name.
func (f *Field) Get(r *Record) (any, error) {
	return r.Get(f.name)
}

// Set writes this field's value on a record, subject to the record's
// immutability state.
func (f *Field) Set(r *Record, v any) error {
	return r.Set(f.name, v)
}

// validate applies the optional kind/modifier constraint to a candidate value.
func (f *Field) validate(v any) error {
	if !f.hasCheck {
		return nil
	}
	if err := check.Spec(v, f.kind, f.mods); err != nil {
		return fmt.Errorf("field %q: %w", f.name, err)
	}
	return nil
}
