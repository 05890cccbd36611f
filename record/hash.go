package record

import (
	"fmt"
	"math"

	"fortio.org/safecast"
)

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

func fnvMix(h, x uint64) uint64 {
	h ^= x
	h *= fnvPrime64
	return h
}

func hashString(s string) uint64 {
	h := fnvOffset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// defaultHash is the natural hash of a value. Values equal under structEqual
// hash alike: all integral numbers (including integer-valued floats) share the
// two's-complement representation of their magnitude. Containers and other
// non-scalar values are unhashable.
func defaultHash(v any) (uint64, error) {
	if v == nil {
		return fnvMix(fnvOffset64, 0), nil
	}
	if r, ok := v.(*Record); ok {
		return r.Hash()
	}
	if n, ok := toNumber(v); ok {
		return hashNumber(n), nil
	}
	switch x := v.(type) {
	case bool:
		if x {
			return fnvMix(fnvOffset64, 1), nil
		}
		return fnvMix(fnvOffset64, 2), nil
	case string:
		return hashString(x), nil
	}
	return 0, fmt.Errorf("%T: %w", v, ErrUnhashable)
}

func hashNumber(n number) uint64 {
	switch n.kind {
	case numUint:
		return n.u
	case numFloat:
		f := n.f
		if f == math.Trunc(f) && f >= -9223372036854775808.0 && f < 9223372036854775808.0 {
			return uint64(int64(f))
		}
		return fnvMix(fnvOffset64, math.Float64bits(f))
	default:
		return uint64(n.i)
	}
}

// combineFieldHashes folds the type name, field count, and every field's hash
// into one order-sensitive FNV-1a fingerprint.
func combineFieldHashes(typeName string, fields []*Field, values []any) (uint64, error) {
	h := fnvMix(fnvOffset64, hashString(typeName))
	count, err := safecast.Conv[uint64](len(values))
	if err != nil {
		return 0, fmt.Errorf("field count overflow: %w", err)
	}
	h = fnvMix(h, count)
	for i, f := range fields {
		fh, err := f.HashValue(values[i])
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", f.Name(), err)
		}
		h = fnvMix(h, fh)
	}
	return h, nil
}
