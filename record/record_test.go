package record

import (
	"errors"
	"testing"
)

func TestConstructionPositionalAndNamed(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b"), D("c")})
	f1 := typ.Make(1, Named("b", 2), Named("c", 3))
	f2 := typ.Make(1, 2, 3)
	if !f1.Equal(f2) {
		t.Fatalf("named and positional construction disagree: %v vs %v", f1, f2)
	}
}

func TestConstructionArgumentErrors(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b")})

	if _, err := typ.New(1, 2, 3); !errors.Is(err, ErrBadArgs) {
		t.Fatalf("too many positional: err=%v", err)
	}
	if _, err := typ.New(1, Named("nope", 2)); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("unknown keyword: err=%v", err)
	}
	if _, err := typ.New(1, Named("a", 2)); !errors.Is(err, ErrBadArgs) {
		t.Fatalf("positional/keyword overlap: err=%v", err)
	}
	if _, err := typ.New(Named("a", 1), 2); !errors.Is(err, ErrBadArgs) {
		t.Fatalf("positional after named: err=%v", err)
	}
	if _, err := typ.New(1); !errors.Is(err, ErrUnsetField) {
		t.Fatalf("missing field without initializer: err=%v", err)
	}
}

func TestImmutableAfterConstruction(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")})
	r := typ.Make(5)
	if got := r.MustGet("bar"); got != 5 {
		t.Fatalf("bar = %v, want 5", got)
	}
	if err := r.Set("bar", 6); !errors.Is(err, ErrImmutable) {
		t.Fatalf("write on locked record: err=%v", err)
	}
	if err := r.Set("nope", 6); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("write to undeclared field: err=%v", err)
	}
}

func TestMutableType(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")}, Mutable())
	r := typ.Make(5)
	if err := r.Set("bar", 6); err != nil {
		t.Fatalf("write on mutable record: %v", err)
	}
	if got := r.MustGet("bar"); got != 6 {
		t.Fatalf("bar = %v after write, want 6", got)
	}
	if _, err := r.Hash(); !errors.Is(err, ErrMutableHash) {
		t.Fatalf("mutable record hash before mutation: err=%v", err)
	}
	if err := r.Set("bar", 7); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if _, err := r.Hash(); !errors.Is(err, ErrMutableHash) {
		t.Fatalf("mutable record hash after mutation: err=%v", err)
	}
}

func TestCustomInitializer(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")},
		WithInit(func(r *Record, args []any) error {
			v, err := r.Get("bar")
			if err != nil {
				return err
			}
			return r.Set("bar", v.(int)+1)
		}))
	r := typ.Make(5)
	if got := r.MustGet("bar"); got != 6 {
		t.Fatalf("initializer did not run: bar=%v, want 6", got)
	}
	if _, err := r.Hash(); err != nil {
		t.Fatalf("hash after init: %v", err)
	}
	if err := r.Set("bar", 7); !errors.Is(err, ErrImmutable) {
		t.Fatalf("write after init locked: err=%v", err)
	}
}

func TestInitializerFillsMissingFields(t *testing.T) {
	typ := MustNewType("Span", []Decl{D("start"), D("end")},
		WithInit(func(r *Record, args []any) error {
			if _, err := r.Get("end"); errors.Is(err, ErrUnsetField) {
				return r.Set("end", r.MustGet("start"))
			}
			return nil
		}))
	r, err := typ.New(3)
	if err != nil {
		t.Fatalf("construct with derived field: %v", err)
	}
	if r.MustGet("end") != 3 {
		t.Fatalf("end = %v, want 3", r.MustGet("end"))
	}
}

func TestHashDuringInitializationFails(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")},
		WithInit(func(r *Record, args []any) error {
			_, err := r.Hash()
			return err
		}))
	if _, err := typ.New(5); !errors.Is(err, ErrInitializingHash) {
		t.Fatalf("hash during init: err=%v", err)
	}
}

func TestEqualityAndHash(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")})
	f1 := typ.Make(5)
	f2 := typ.Make(5)
	f3 := typ.Make(6)

	if !f1.Equal(f2) {
		t.Fatalf("equal records compare unequal")
	}
	if f1.Equal(f3) {
		t.Fatalf("unequal records compare equal")
	}
	h1, err := f1.Hash()
	if err != nil {
		t.Fatalf("hash f1: %v", err)
	}
	h2, err := f2.Hash()
	if err != nil {
		t.Fatalf("hash f2: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("equal records hash differently: %d != %d", h1, h2)
	}
}

func TestEqualityRequiresSameType(t *testing.T) {
	a := MustNewType("Foo", []Decl{D("bar")})
	b := MustNewType("Foo", []Decl{D("bar")})
	if a.Make(5).Equal(b.Make(5)) {
		t.Fatalf("records of distinct types must not compare equal")
	}
}

func TestCustomEqAndHashStrategies(t *testing.T) {
	samePole := NewField(
		WithEq(func(a, b any) bool { return a.(int)*b.(int) > 0 }),
		WithHash(func(v any) (uint64, error) {
			if v.(int) > 0 {
				return 1, nil
			}
			return 2, nil
		}),
	)
	typ := MustNewType("FooB", []Decl{D("bar", samePole)})
	plain := MustNewType("FooA", []Decl{D("bar")})

	if plain.Make(5).Equal(plain.Make(6)) {
		t.Fatalf("default equality equated 5 and 6")
	}
	b1, b2 := typ.Make(5), typ.Make(6)
	if !b1.Equal(b2) {
		t.Fatalf("custom equality must equate values with the same sign")
	}
	h1, err := b1.Hash()
	if err != nil {
		t.Fatalf("hash b1: %v", err)
	}
	h2, err := b2.Hash()
	if err != nil {
		t.Fatalf("hash b2: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("custom hash must match for equal records: %d != %d", h1, h2)
	}
}

func TestSequenceProtocol(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b")})
	r := typ.Make(1, 2)
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	a, err := r.At(0)
	if err != nil {
		t.Fatalf("at 0: %v", err)
	}
	b, err := r.At(1)
	if err != nil {
		t.Fatalf("at 1: %v", err)
	}
	if a != 1 || b != 2 {
		t.Fatalf("decomposition = (%v, %v), want (1, 2)", a, b)
	}
	if _, err := r.At(2); err == nil {
		t.Fatalf("out-of-range index must fail")
	}
	vals := r.Values()
	vals[0] = 99
	if r.MustGet("a") != 1 {
		t.Fatalf("Values must return a copy")
	}
}

func TestAsDict(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b"), D("c")})
	r := typ.Make(1, 2, 3)
	entries := r.AsDict()
	want := []Entry{{"a", 1}, {"b", 2}, {"c", 3}}
	if len(entries) != len(want) {
		t.Fatalf("asdict = %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("asdict[%d] = %v, want %v", i, entries[i], want[i])
		}
	}
}

func TestReplace(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b"), D("c")})
	f1 := typ.Make(1, 2, 3)
	f2, err := f1.Replace(Named("b", 4))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !f2.Equal(typ.Make(1, 4, 3)) {
		t.Fatalf("replace result = %v, want Foo(a=1, b=4, c=3)", f2)
	}
	if !f1.Equal(typ.Make(1, 2, 3)) {
		t.Fatalf("replace mutated the original: %v", f1)
	}
	if _, err := f1.Replace(Named("nope", 4)); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("replace unknown field: err=%v", err)
	}
	if _, err := f1.Replace(Named("b", 4), Named("b", 5)); !errors.Is(err, ErrBadArgs) {
		t.Fatalf("replace duplicate override: err=%v", err)
	}
}

func TestReplaceBindsStoredValuesByIndex(t *testing.T) {
	// A stored value may itself be a KV; carrying it over must not re-read
	// it as a named argument.
	typ := MustNewType("Foo", []Decl{D("a"), D("b")})
	stored := KV{Name: "x", Value: 1}
	r := typ.Make(Named("a", stored), Named("b", 2))

	r2, err := r.Replace(Named("b", 3))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := r2.MustGet("a"); got != stored {
		t.Fatalf("a = %v after replace, want %v", got, stored)
	}
	if r2.MustGet("b") != 3 {
		t.Fatalf("b = %v after replace, want 3", r2.MustGet("b"))
	}

	dup, err := r.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if got := dup.MustGet("a"); got != stored {
		t.Fatalf("a = %v after clone, want %v", got, stored)
	}
}

func TestString(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")})
	if got := typ.Make(5).String(); got != "Foo(bar=5)" {
		t.Fatalf("string = %q, want Foo(bar=5)", got)
	}
	typ2 := MustNewType("Pair", []Decl{D("a"), D("b")})
	if got := typ2.Make(1, "x").String(); got != "Pair(a=1, b=x)" {
		t.Fatalf("string = %q, want Pair(a=1, b=x)", got)
	}
}

func TestGetUnsetField(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b")},
		WithInit(func(r *Record, args []any) error {
			// Reading b before anything stored it must fail.
			if _, err := r.Get("b"); !errors.Is(err, ErrUnsetField) {
				return errors.New("unset read did not fail")
			}
			return r.Set("b", 0)
		}))
	if _, err := typ.New(1); err != nil {
		t.Fatalf("construct: %v", err)
	}
}
