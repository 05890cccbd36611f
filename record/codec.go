package record

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Current envelope version - increment when the wire format changes.
const envelopeVersion uint16 = 1

const (
	wirePlain uint8 = iota
	wireRecordKind
	wireList
	wireMap
)

type wireEnvelope struct {
	Schema uint16     `msgpack:"schema"`
	Root   wireRecord `msgpack:"root"`
}

type wireRecord struct {
	Type   string      `msgpack:"type"`
	Values []wireValue `msgpack:"values"`
}

type wireValue struct {
	Kind   uint8                `msgpack:"kind"`
	Plain  any                  `msgpack:"plain,omitempty"`
	Record *wireRecord          `msgpack:"record,omitempty"`
	List   []wireValue          `msgpack:"list,omitempty"`
	Map    map[string]wireValue `msgpack:"map,omitempty"`
}

// Marshal persists a record (and any nested records) as a msgpack envelope.
func Marshal(r *Record) ([]byte, error) {
	root, err := encodeWireRecord(r)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&wireEnvelope{Schema: envelopeVersion, Root: *root})
}

// Unmarshal restores a persisted record. Every record in the envelope is
// reconstructed through the full two-phase construction protocol of the type
// registered under its name, so custom initializers and immutability locking
// behave exactly as they do for normal construction.
func Unmarshal(data []byte, reg *Registry) (*Record, error) {
	var env wireEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode record envelope: %w", err)
	}
	if env.Schema != envelopeVersion {
		return nil, fmt.Errorf("schema %d: %w", env.Schema, ErrSchemaVersion)
	}
	return decodeWireRecord(&env.Root, reg)
}

func encodeWireRecord(r *Record) (*wireRecord, error) {
	wr := &wireRecord{Type: r.typ.name, Values: make([]wireValue, len(r.values))}
	for i, v := range r.values {
		wv, err := encodeWireValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.typ.name, r.typ.fields[i].name, err)
		}
		wr.Values[i] = wv
	}
	return wr, nil
}

func encodeWireValue(v any) (wireValue, error) {
	switch x := v.(type) {
	case *Record:
		wr, err := encodeWireRecord(x)
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{Kind: wireRecordKind, Record: wr}, nil
	case []any:
		list := make([]wireValue, len(x))
		for i, elem := range x {
			wv, err := encodeWireValue(elem)
			if err != nil {
				return wireValue{}, err
			}
			list[i] = wv
		}
		return wireValue{Kind: wireList, List: list}, nil
	case map[string]any:
		m := make(map[string]wireValue, len(x))
		for k, elem := range x {
			wv, err := encodeWireValue(elem)
			if err != nil {
				return wireValue{}, err
			}
			m[k] = wv
		}
		return wireValue{Kind: wireMap, Map: m}, nil
	default:
		return wireValue{Kind: wirePlain, Plain: v}, nil
	}
}

func decodeWireRecord(wr *wireRecord, reg *Registry) (*Record, error) {
	t, ok := reg.Lookup(wr.Type)
	if !ok {
		return nil, fmt.Errorf("%q: %w", wr.Type, ErrUnknownType)
	}
	values := make([]any, len(wr.Values))
	for i, wv := range wr.Values {
		v, err := decodeWireValue(wv, reg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return t.newFromValues(values)
}

func decodeWireValue(wv wireValue, reg *Registry) (any, error) {
	switch wv.Kind {
	case wireRecordKind:
		return decodeWireRecord(wv.Record, reg)
	case wireList:
		out := make([]any, len(wv.List))
		for i, elem := range wv.List {
			v, err := decodeWireValue(elem, reg)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case wireMap:
		out := make(map[string]any, len(wv.Map))
		for k, elem := range wv.Map {
			v, err := decodeWireValue(elem, reg)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return wv.Plain, nil
	}
}

// Clone deep-duplicates a record through the two-phase construction protocol:
// nested records are cloned recursively, generic containers are copied, and
// the copy is rebuilt by field index so custom initializers and locking run
// again.
func (r *Record) Clone() (*Record, error) {
	values := make([]any, len(r.values))
	for i, v := range r.values {
		dup, err := deepCopyValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.typ.name, r.typ.fields[i].name, err)
		}
		values[i] = dup
	}
	return r.typ.newFromValues(values)
}

func deepCopyValue(v any) (any, error) {
	switch x := v.(type) {
	case *Record:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			dup, err := deepCopyValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = dup
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, elem := range x {
			dup, err := deepCopyValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = dup
		}
		return out, nil
	default:
		return v, nil
	}
}
