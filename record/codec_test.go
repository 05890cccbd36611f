package record

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMarshalRoundTrip(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("a"), D("b")})
	reg := NewRegistry()
	reg.MustRegister(typ)

	r := typ.Make(1, "x")
	data, err := Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := Unmarshal(data, reg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Equal(r) {
		t.Fatalf("round trip: got %v, want %v", restored, r)
	}
	h1, err := r.Hash()
	if err != nil {
		t.Fatalf("hash original: %v", err)
	}
	h2, err := restored.Hash()
	if err != nil {
		t.Fatalf("hash restored: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("restored hash %d != original %d", h2, h1)
	}
}

func TestMarshalNestedRecordsAndLists(t *testing.T) {
	inner := MustNewType("Inner", []Decl{D("v")})
	outer := MustNewType("Outer", []Decl{D("in"), D("list")})
	reg := NewRegistry()
	reg.MustRegister(inner)
	reg.MustRegister(outer)

	r := outer.Make(inner.Make(7), []any{1, "two", inner.Make(3)})
	data, err := Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := Unmarshal(data, reg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Equal(r) {
		t.Fatalf("round trip: got %v, want %v", restored, r)
	}
	in, err := restored.Get("in")
	if err != nil {
		t.Fatalf("get in: %v", err)
	}
	if _, ok := in.(*Record); !ok {
		t.Fatalf("nested value restored as %T, want *Record", in)
	}
}

func TestMarshalMapValues(t *testing.T) {
	inner := MustNewType("Inner", []Decl{D("v")})
	box := MustNewType("Box", []Decl{D("m")})
	reg := NewRegistry()
	reg.MustRegister(inner)
	reg.MustRegister(box)

	r := box.Make(map[string]any{"a": 1, "rec": inner.Make(2)})
	data, err := Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := Unmarshal(data, reg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Equal(r) {
		t.Fatalf("round trip: got %v, want %v", restored, r)
	}
	m, ok := restored.MustGet("m").(map[string]any)
	if !ok {
		t.Fatalf("map restored as %T, want map[string]any", restored.MustGet("m"))
	}
	if _, ok := m["rec"].(*Record); !ok {
		t.Fatalf("map entry restored as %T, want *Record", m["rec"])
	}
}

func TestUnmarshalRunsConstructionProtocol(t *testing.T) {
	// The restored instance must lock exactly like a freshly built one.
	typ := MustNewType("Foo", []Decl{D("bar")})
	reg := NewRegistry()
	reg.MustRegister(typ)

	data, err := Marshal(typ.Make(5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := Unmarshal(data, reg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := restored.Set("bar", 6); !errors.Is(err, ErrImmutable) {
		t.Fatalf("restored record not locked: err=%v", err)
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")})
	data, err := Marshal(typ.Make(5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Unmarshal(data, NewRegistry()); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type: err=%v", err)
	}
}

func TestUnmarshalEnvelopeVersion(t *testing.T) {
	data, err := msgpack.Marshal(&wireEnvelope{Schema: envelopeVersion + 1})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if _, err := Unmarshal(data, NewRegistry()); !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("future envelope version: err=%v", err)
	}
}

func TestClone(t *testing.T) {
	inner := MustNewType("Inner", []Decl{D("v")})
	typ := MustNewType("Foo", []Decl{D("a"), D("list"), D("in")})

	r := typ.Make(1, []any{1, 2}, inner.Make(9))
	dup, err := r.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if dup == r {
		t.Fatalf("clone returned the original")
	}
	if !dup.Equal(r) {
		t.Fatalf("clone differs: got %v, want %v", dup, r)
	}

	// The duplicate shares no container state with the original.
	list := r.MustGet("list").([]any)
	list[0] = 99
	dupList := dup.MustGet("list").([]any)
	if dupList[0] != 1 {
		t.Fatalf("clone shares list storage: %v", dupList)
	}
	if dup.MustGet("in") == r.MustGet("in") {
		t.Fatalf("clone shares the nested record")
	}
}

func TestCloneLocksLikeNew(t *testing.T) {
	typ := MustNewType("Foo", []Decl{D("bar")})
	dup, err := typ.Make(5).Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if err := dup.Set("bar", 6); !errors.Is(err, ErrImmutable) {
		t.Fatalf("clone not locked: err=%v", err)
	}
}
