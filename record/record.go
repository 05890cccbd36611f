package record

import (
	"fmt"
	"strings"
)

// KV names a constructor or replacement argument. Positional arguments may
// not follow a named one.
type KV struct {
	Name  string
	Value any
}

// Named builds a keyword-style constructor argument.
func Named(name string, v any) KV {
	return KV{Name: name, Value: v}
}

// Entry is one slot of a record's ordered name→value export.
type Entry struct {
	Name  string
	Value any
}

// Record is one instance of a record type. Until construction completes the
// instance is freely writable and unhashable; afterwards an immutable type
// rejects every write, and a mutable type stays writable but never hashable.
type Record struct {
	typ          *Type
	values       []any
	present      []bool
	initializing bool
}

// New constructs an instance through the two-phase protocol: positional
// values fill fields in declaration order, KV values target fields by name,
// then the custom initializer (if any) runs, then the instance locks.
// Leaving fields unset is an error unless a custom initializer is declared,
// in which case the initializer must fill them.
//
// KV is reserved for argument passing: an argument of type KV is always read
// as a named argument, so a value that itself is a KV can only be supplied
// through Named. Replace, Clone, and Unmarshal bind stored values by field
// index and never re-read them as arguments.
func (t *Type) New(args ...any) (*Record, error) {
	r := &Record{
		typ:          t,
		values:       make([]any, len(t.fields)),
		present:      make([]bool, len(t.fields)),
		initializing: true,
	}

	// Phase 1: populate from the arguments.
	pos := 0
	sawNamed := false
	for _, a := range args {
		kv, named := a.(KV)
		if !named {
			if sawNamed {
				return nil, fmt.Errorf("type %q: positional argument after named: %w",
					t.name, ErrBadArgs)
			}
			if pos >= len(t.fields) {
				return nil, fmt.Errorf("type %q: too many positional arguments (%d fields): %w",
					t.name, len(t.fields), ErrBadArgs)
			}
			if err := r.store(pos, a); err != nil {
				return nil, err
			}
			pos++
			continue
		}
		sawNamed = true
		i, ok := t.index[kv.Name]
		if !ok {
			return nil, fmt.Errorf("type %q: argument %q: %w", t.name, kv.Name, ErrUnknownField)
		}
		if r.present[i] {
			return nil, fmt.Errorf("type %q: field %q given twice: %w", t.name, kv.Name, ErrBadArgs)
		}
		if err := r.store(i, kv.Value); err != nil {
			return nil, err
		}
	}

	// Phase 2: optional custom initializer, still unlocked.
	if t.initFn != nil {
		if err := t.initFn(r, args); err != nil {
			return nil, fmt.Errorf("type %q: init: %w", t.name, err)
		}
	}

	// Phase 3: verify and lock.
	for i, ok := range r.present {
		if !ok {
			return nil, fmt.Errorf("type %q: field %q: %w", t.name, t.fields[i].name, ErrUnsetField)
		}
	}
	r.initializing = false
	return r, nil
}

// newFromValues runs the construction protocol with exactly one value per
// field, bound by index. Stored values are never interpreted as arguments, so
// a field may hold any value, KV included. The custom initializer receives
// the values as its arguments.
func (t *Type) newFromValues(values []any) (*Record, error) {
	if len(values) != len(t.fields) {
		return nil, fmt.Errorf("type %q: got %d values for %d fields: %w",
			t.name, len(values), len(t.fields), ErrBadArgs)
	}
	r := &Record{
		typ:          t,
		values:       make([]any, len(t.fields)),
		present:      make([]bool, len(t.fields)),
		initializing: true,
	}
	for i, v := range values {
		if err := r.store(i, v); err != nil {
			return nil, err
		}
	}
	if t.initFn != nil {
		if err := t.initFn(r, values); err != nil {
			return nil, fmt.Errorf("type %q: init: %w", t.name, err)
		}
	}
	r.initializing = false
	return r, nil
}

// Make is New for values known valid at the call site; it panics on a
// construction error.
func (t *Type) Make(args ...any) *Record {
	r, err := t.New(args...)
	if err != nil {
		panic(err)
	}
	return r
}

// store writes one field slot, enforcing the immutability state machine and
// the field's optional kind constraint.
func (r *Record) store(i int, v any) error {
	f := r.typ.fields[i]
	if !r.initializing && !r.typ.mutable {
		return fmt.Errorf("%s.%s: %w", r.typ.name, f.name, ErrImmutable)
	}
	if err := f.validate(v); err != nil {
		return fmt.Errorf("type %q: %w", r.typ.name, err)
	}
	r.values[i] = v
	r.present[i] = true
	return nil
}

// Type returns the record's type.
func (r *Record) Type() *Type { return r.typ }

// Get returns a field's value by name.
func (r *Record) Get(name string) (any, error) {
	i, ok := r.typ.index[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", r.typ.name, name, ErrUnknownField)
	}
	if !r.present[i] {
		return nil, fmt.Errorf("%s.%s: %w", r.typ.name, name, ErrUnsetField)
	}
	return r.values[i], nil
}

// MustGet is Get for fields known present; it panics otherwise.
func (r *Record) MustGet(name string) any {
	v, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set writes a field by name. Writes on a locked immutable instance fail with
// ErrImmutable; writes to undeclared names fail with ErrUnknownField.
func (r *Record) Set(name string, v any) error {
	i, ok := r.typ.index[name]
	if !ok {
		return fmt.Errorf("%s.%s: %w", r.typ.name, name, ErrUnknownField)
	}
	return r.store(i, v)
}

// Len returns the number of fields, making the record a fixed-length
// sequence of its field values.
func (r *Record) Len() int { return len(r.values) }

// At returns the i-th field value in declaration order.
func (r *Record) At(i int) (any, error) {
	if i < 0 || i >= len(r.values) {
		return nil, fmt.Errorf("%s: index %d out of range [0,%d): %w",
			r.typ.name, i, len(r.values), ErrUnknownField)
	}
	return r.values[i], nil
}

// Values returns the field values in declaration order as a fresh slice.
func (r *Record) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// AsDict exports the record as an ordered name→value list.
func (r *Record) AsDict() []Entry {
	out := make([]Entry, len(r.values))
	for i, f := range r.typ.fields {
		out[i] = Entry{Name: f.name, Value: r.values[i]}
	}
	return out
}

// Equal reports whether two records are of the same type and every field
// compares equal under that field's equality strategy.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.typ != o.typ {
		return false
	}
	for i, f := range r.typ.fields {
		if !f.Equal(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

// Hash combines every field's hash, in field order, into one fingerprint.
// Hashing fails while the instance is initializing and always fails for
// instances of a mutable type.
func (r *Record) Hash() (uint64, error) {
	if r.initializing {
		return 0, fmt.Errorf("%s: %w", r.typ.name, ErrInitializingHash)
	}
	if r.typ.mutable {
		return 0, fmt.Errorf("%s: %w", r.typ.name, ErrMutableHash)
	}
	return combineFieldHashes(r.typ.name, r.typ.fields, r.values)
}

// Replace constructs a new instance with the named fields overridden and all
// others carried over. The replacement runs the full two-phase protocol, so a
// custom initializer sees the merged values as its arguments. Carried-over
// values bind by field index, never as constructor arguments.
func (r *Record) Replace(kvs ...KV) (*Record, error) {
	merged := r.Values()
	seen := make(map[string]bool, len(kvs))
	for _, kv := range kvs {
		i, ok := r.typ.index[kv.Name]
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", r.typ.name, kv.Name, ErrUnknownField)
		}
		if seen[kv.Name] {
			return nil, fmt.Errorf("%s: field %q given twice: %w", r.typ.name, kv.Name, ErrBadArgs)
		}
		seen[kv.Name] = true
		merged[i] = kv.Value
	}
	return r.typ.newFromValues(merged)
}

// String renders the record as Name(f1=v1, f2=v2) in field order.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.typ.name)
	b.WriteByte('(')
	for i, f := range r.typ.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", f.name, r.values[i])
	}
	b.WriteByte(')')
	return b.String()
}
