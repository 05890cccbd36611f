package record

import "reflect"

// structEqual is the default field equality: numeric values compare by
// magnitude across widths, records compare via their own Equal, sequences
// compare elementwise, maps compare keywise, and everything else falls back
// to deep equality.
func structEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ra, ok := a.(*Record); ok {
		rb, ok := b.(*Record)
		return ok && ra.Equal(rb)
	}
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && numEqual(na, nb)
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isSequence(va) && isSequence(vb) {
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !structEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	if va.Kind() == reflect.Map && vb.Kind() == reflect.Map {
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			bv := mapLookup(vb, iter.Key())
			if !bv.IsValid() || !structEqual(iter.Value().Interface(), bv.Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func mapLookup(m, key reflect.Value) reflect.Value {
	kt := m.Type().Key()
	if key.Type().AssignableTo(kt) {
		return m.MapIndex(key)
	}
	if key.Type().ConvertibleTo(kt) {
		return m.MapIndex(key.Convert(kt))
	}
	return reflect.Value{}
}

func isSequence(v reflect.Value) bool {
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}

type numKind uint8

const (
	numInt numKind = iota
	numUint
	numFloat
)

type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{kind: numInt, i: int64(x)}, true
	case int8:
		return number{kind: numInt, i: int64(x)}, true
	case int16:
		return number{kind: numInt, i: int64(x)}, true
	case int32:
		return number{kind: numInt, i: int64(x)}, true
	case int64:
		return number{kind: numInt, i: x}, true
	case uint:
		return number{kind: numUint, u: uint64(x)}, true
	case uint8:
		return number{kind: numUint, u: uint64(x)}, true
	case uint16:
		return number{kind: numUint, u: uint64(x)}, true
	case uint32:
		return number{kind: numUint, u: uint64(x)}, true
	case uint64:
		return number{kind: numUint, u: x}, true
	case uintptr:
		return number{kind: numUint, u: uint64(x)}, true
	case float32:
		return number{kind: numFloat, f: float64(x)}, true
	case float64:
		return number{kind: numFloat, f: x}, true
	}
	return number{}, false
}

func numEqual(a, b number) bool {
	if a.kind == numFloat || b.kind == numFloat {
		return a.asFloat() == b.asFloat()
	}
	switch {
	case a.kind == numUint && b.kind == numUint:
		return a.u == b.u
	case a.kind == numUint:
		return b.i >= 0 && a.u == uint64(b.i)
	case b.kind == numUint:
		return a.i >= 0 && uint64(a.i) == b.u
	default:
		return a.i == b.i
	}
}

func (n number) asFloat() float64 {
	switch n.kind {
	case numUint:
		return float64(n.u)
	case numFloat:
		return n.f
	default:
		return float64(n.i)
	}
}
