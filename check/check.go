// Package check validates values against declared kinds. A kind is a set of
// acceptable value categories; a value satisfies a kind when its type matches
// any of them. A type specification pairs a kind with modifiers: "seq"
// requires the value to be a finite sequence of elements satisfying the kind,
// and "nodups" additionally forbids duplicate elements.
package check

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrTypeMismatch is wrapped by every validation failure in this package.
var ErrTypeMismatch = errors.New("type mismatch")

// Kind is a set of acceptable value categories. A nil or empty Kind accepts
// any value.
type Kind []reflect.Type

// AnyKind accepts every value.
var AnyKind = Kind(nil)

// Kinds builds a kind from explicit reflect types.
func Kinds(types ...reflect.Type) Kind {
	return Kind(types)
}

// KindOf builds a kind from the dynamic types of sample values. A nil sample
// contributes nothing.
func KindOf(samples ...any) Kind {
	k := make(Kind, 0, len(samples))
	for _, s := range samples {
		if t := reflect.TypeOf(s); t != nil {
			k = append(k, t)
		}
	}
	return k
}

// String renders the kind for diagnostics: "int", "int or string",
// "one of {int, string, bool}", or "any" when the kind accepts everything.
func (k Kind) String() string {
	switch len(k) {
	case 0:
		return "any"
	case 1:
		return typeName(k[0])
	case 2:
		return typeName(k[0]) + " or " + typeName(k[1])
	default:
		names := make([]string, len(k))
		for i, t := range k {
			names[i] = typeName(t)
		}
		return "one of {" + strings.Join(names, ", ") + "}"
	}
}

// matches reports whether one value category admits the value's type.
func (k Kind) matches(val any) bool {
	if len(k) == 0 {
		return true
	}
	vt := reflect.TypeOf(val)
	for _, t := range k {
		if t == nil {
			return true
		}
		if vt == nil {
			// Untyped nil satisfies only nilable kinds.
			switch t.Kind() {
			case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map,
				reflect.Chan, reflect.Func:
				return true
			}
			continue
		}
		if vt == t || vt.AssignableTo(t) {
			return true
		}
	}
	return false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func valTypeName(val any) string {
	if val == nil {
		return "nil"
	}
	return typeName(reflect.TypeOf(val))
}

// Mods is a set of modifier strings. Recognized modifiers are "seq" and
// "nodups"; unrecognized ones are carried but ignored.
type Mods []string

// ParseMods splits a space-delimited modifier string.
func ParseMods(s string) Mods {
	return Mods(strings.Fields(s))
}

func (m Mods) has(name string) bool {
	for _, mod := range m {
		if mod == name {
			return true
		}
	}
	return false
}

// Value reports a type-mismatch error when val does not satisfy kind.
func Value(val any, kind Kind) error {
	if kind.matches(val) {
		return nil
	}
	return fmt.Errorf("%w: expected %s; got %s", ErrTypeMismatch, kind, valTypeName(val))
}

// Seq reports a type-mismatch error when val is not a finite sequence of
// elements satisfying kind. Strings count as atoms, never as character
// sequences. With noDups, the first repeated element is an error.
func Seq(val any, kind Kind, noDups bool) error {
	exp := kind.String()
	if _, ok := val.(string); ok {
		return fmt.Errorf("%w: expected sequence of %s; got single string "+
			"(strings do not count as character sequences)", ErrTypeMismatch, exp)
	}
	rv := reflect.ValueOf(val)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("%w: expected sequence of %s; got %s instead of sequence",
			ErrTypeMismatch, exp, valTypeName(val))
	}
	n := rv.Len()
	for i := 0; i < n; i++ {
		item := rv.Index(i).Interface()
		if !kind.matches(item) {
			return fmt.Errorf("%w: expected sequence of %s; got sequence with %s at position %d",
				ErrTypeMismatch, exp, valTypeName(item), i)
		}
	}
	if noDups {
		seen := make([]any, 0, n)
		for i := 0; i < n; i++ {
			item := rv.Index(i).Interface()
			for _, prev := range seen {
				if reflect.DeepEqual(prev, item) {
					return fmt.Errorf("%w: duplicate element %#v at position %d",
						ErrTypeMismatch, item, i)
				}
			}
			seen = append(seen, item)
		}
	}
	return nil
}

// Spec validates val against the kind and modifier specification.
func Spec(val any, kind Kind, mods Mods) error {
	if mods.has("seq") {
		return Seq(val, kind, mods.has("nodups"))
	}
	return Value(val, kind)
}
