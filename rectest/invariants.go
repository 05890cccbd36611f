// Package rectest provides invariant checks shared by the record tests.
package rectest

import (
	"errors"
	"fmt"

	"github.com/msabramo/simplestruct/record"
)

// CheckInvariants runs the structural invariants every constructed record
// must satisfy:
// 1) Len matches the type's field count
// 2) Values and AsDict follow declaration order and agree with Get/At
// 3) immutable instances hash to the same value on repeated calls
// 4) mutable instances refuse to hash
func CheckInvariants(r *record.Record) error {
	if r == nil {
		return fmt.Errorf("nil record")
	}
	t := r.Type()
	names := t.FieldNames()
	if r.Len() != t.NumFields() {
		return fmt.Errorf("len mismatch: record=%d type=%d", r.Len(), t.NumFields())
	}
	if len(names) != t.NumFields() {
		return fmt.Errorf("field name count mismatch: %d != %d", len(names), t.NumFields())
	}

	values := r.Values()
	entries := r.AsDict()
	if len(values) != r.Len() || len(entries) != r.Len() {
		return fmt.Errorf("export length mismatch: values=%d entries=%d len=%d",
			len(values), len(entries), r.Len())
	}
	for i, name := range names {
		if entries[i].Name != name {
			return fmt.Errorf("asdict order broken at %d: got=%q want=%q", i, entries[i].Name, name)
		}
		got, err := r.Get(name)
		if err != nil {
			return fmt.Errorf("get %q: %w", name, err)
		}
		at, err := r.At(i)
		if err != nil {
			return fmt.Errorf("at %d: %w", i, err)
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return fmt.Errorf("descriptor missing for %q", name)
		}
		if !f.Equal(got, values[i]) || !f.Equal(got, at) || !f.Equal(got, entries[i].Value) {
			return fmt.Errorf("field %q disagrees across access paths", name)
		}
	}

	if t.IsMutable() {
		if _, err := r.Hash(); !errors.Is(err, record.ErrMutableHash) {
			return fmt.Errorf("mutable record hashed: err=%v", err)
		}
		return nil
	}
	h1, err := r.Hash()
	if errors.Is(err, record.ErrUnhashable) {
		// Holds a value without a natural hash; nothing more to verify.
		return nil
	}
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	h2, err := r.Hash()
	if err != nil {
		return fmt.Errorf("second hash: %w", err)
	}
	if h1 != h2 {
		return fmt.Errorf("hash unstable: %d != %d", h1, h2)
	}
	return nil
}
