package record

import "fmt"

// Decl declares one field of a record type. A nil Field means a default
// descriptor, so D("a") is shorthand for D("a", NewField()).
type Decl struct {
	Name  string
	Field *Field
}

// D builds a field declaration. The optional prototype, when given, is cloned
// at type-definition time; passing the same prototype to several declarations
// is safe.
func D(name string, field ...*Field) Decl {
	d := Decl{Name: name}
	if len(field) > 0 {
		d.Field = field[0]
	}
	return d
}

// InitFunc is a phase-2 custom initializer. It runs after constructor
// arguments populate the fields and before the instance locks, with the raw
// constructor arguments. It may freely read and rewrite fields.
type InitFunc func(r *Record, args []any) error

// Type is an assembled record type: a name plus a fixed ordered field list.
// Types are immutable once built and safe for concurrent use.
type Type struct {
	name    string
	base    *Type
	fields  []*Field
	index   map[string]int
	mutable bool
	initFn  InitFunc
}

type typeConfig struct {
	base    *Type
	mutable bool
	initFn  InitFunc
}

// TypeOption customizes a record type at definition time.
type TypeOption func(*typeConfig)

// Mutable declares the type's instances writable after construction. Mutable
// instances are permanently unhashable.
func Mutable() TypeOption {
	return func(c *typeConfig) { c.mutable = true }
}

// InheritFields prepends the base type's ordered field list (cloned) before
// the locally declared fields. Single inheritance only.
func InheritFields(base *Type) TypeOption {
	return func(c *typeConfig) { c.base = base }
}

// WithInit installs a phase-2 custom initializer.
func WithInit(fn InitFunc) TypeOption {
	return func(c *typeConfig) { c.initFn = fn }
}

// NewType assembles a record type from an ordered list of field declarations.
// Inherited fields come first. Field name collisions, including collisions
// between an inherited and a local field, fail here rather than at first use.
func NewType(name string, decls []Decl, opts ...TypeOption) (*Type, error) {
	var cfg typeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Type{
		name:    name,
		base:    cfg.base,
		mutable: cfg.mutable,
		initFn:  cfg.initFn,
		index:   make(map[string]int, len(decls)),
	}

	bind := func(fieldName string, proto *Field) error {
		if fieldName == "" {
			return fmt.Errorf("type %q: empty field name", name)
		}
		if _, exists := t.index[fieldName]; exists {
			return fmt.Errorf("type %q: field %q: %w", name, fieldName, ErrFieldCollision)
		}
		f := proto.Clone()
		f.name = fieldName
		t.index[fieldName] = len(t.fields)
		t.fields = append(t.fields, f)
		return nil
	}

	if cfg.base != nil {
		for _, bf := range cfg.base.fields {
			if err := bind(bf.name, bf); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range decls {
		proto := d.Field
		if proto == nil {
			proto = NewField()
		}
		if err := bind(d.Name, proto); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNewType is NewType for package-level type declarations; it panics on a
// definition error.
func MustNewType(name string, decls []Decl, opts ...TypeOption) *Type {
	t, err := NewType(name, decls, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the type's name.
func (t *Type) Name() string { return t.name }

// IsMutable reports whether instances stay writable after construction.
func (t *Type) IsMutable() bool { return t.mutable }

// Base returns the type whose fields were inherited, or nil.
func (t *Type) Base() *Type { return t.base }

// NumFields returns the number of declared fields, inherited ones included.
func (t *Type) NumFields() int { return len(t.fields) }

// Fields returns the ordered field descriptors. The slice is a copy; the
// descriptors themselves are the type's bound instances and must not be
// mutated.
func (t *Type) Fields() []*Field {
	out := make([]*Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// FieldNames returns the field names in declaration order.
func (t *Type) FieldNames() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.name
	}
	return out
}

// FieldByName returns the bound descriptor for a field name.
func (t *Type) FieldByName(name string) (*Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i], true
}
