// Package schema builds record types from declarative TOML definitions and
// collects them into a registry.
//
//	[types.Point]
//	fields = ["x", "y"]
//
//	[types.Point.check.x]
//	kind = "int float"
//
//	[types.Point3]
//	inherits = "Point"
//	fields = ["z"]
//
//	[types.Cursor]
//	mutable = true
//	fields = ["pos"]
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/msabramo/simplestruct/check"
	"github.com/msabramo/simplestruct/record"
)

var (
	// ErrTypesSectionMissing indicates a schema file without a [types] table.
	ErrTypesSectionMissing = errors.New("missing [types]")
	// ErrUnknownBase indicates an inherits reference to an undeclared type.
	ErrUnknownBase = errors.New("unknown base type")
	// ErrInheritCycle indicates a cycle in the inherits graph.
	ErrInheritCycle = errors.New("inheritance cycle")
	// ErrUnknownKind indicates an unrecognized kind name in a check clause.
	ErrUnknownKind = errors.New("unknown kind name")
	// ErrAnyKindMix indicates "any" combined with other kind names.
	ErrAnyKindMix = errors.New(`"any" excludes other kind names`)
)

type schemaFile struct {
	Types map[string]typeDecl `toml:"types"`
}

type typeDecl struct {
	Fields   []string             `toml:"fields"`
	Inherits string               `toml:"inherits"`
	Mutable  bool                 `toml:"mutable"`
	Check    map[string]checkDecl `toml:"check"`
}

type checkDecl struct {
	Kind string `toml:"kind"`
	Mods string `toml:"mods"`
}

// kindNames maps schema kind names to value categories. "int" covers every
// integer width so values survive serialization round trips, which restore
// integers at whatever width the wire format picked; "float" likewise covers
// both float widths. "record" matches nested record values.
var kindNames = map[string][]reflect.Type{
	"bool": {reflect.TypeOf(false)},
	"int": {
		reflect.TypeOf(int(0)), reflect.TypeOf(int8(0)), reflect.TypeOf(int16(0)),
		reflect.TypeOf(int32(0)), reflect.TypeOf(int64(0)),
		reflect.TypeOf(uint(0)), reflect.TypeOf(uint8(0)), reflect.TypeOf(uint16(0)),
		reflect.TypeOf(uint32(0)), reflect.TypeOf(uint64(0)),
	},
	"float":  {reflect.TypeOf(float64(0)), reflect.TypeOf(float32(0))},
	"string": {reflect.TypeOf("")},
	"record": {reflect.TypeOf((*record.Record)(nil))},
	"any":    nil,
}

// Load parses one schema file into a fresh registry.
func Load(path string) (*record.Registry, error) {
	reg := record.NewRegistry()
	if err := LoadInto(path, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadInto parses one schema file and registers every declared type.
// Declaration order inside the file does not matter: inherits references
// resolve across the whole file.
func LoadInto(path string, reg *record.Registry) error {
	built, err := parseFile(path)
	if err != nil {
		return err
	}
	return registerAll(path, built, reg)
}

// parseFile decodes and assembles all types declared in one schema file.
func parseFile(path string) (map[string]*record.Type, error) {
	var sf schemaFile
	meta, err := toml.DecodeFile(path, &sf)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("types") {
		return nil, fmt.Errorf("%s: %w", path, ErrTypesSectionMissing)
	}
	built, err := buildTypes(sf.Types)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return built, nil
}

// registerAll registers built types in sorted name order, so registration
// order never depends on map iteration.
func registerAll(path string, built map[string]*record.Type, reg *record.Registry) error {
	names := make([]string, 0, len(built))
	for name := range built {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := reg.Register(built[name]); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// buildTypes assembles record types in dependency order: a type builds only
// after its base has.
func buildTypes(decls map[string]typeDecl) (map[string]*record.Type, error) {
	built := make(map[string]*record.Type, len(decls))
	for len(built) < len(decls) {
		progress := false
		for name, decl := range decls {
			if _, done := built[name]; done {
				continue
			}
			var base *record.Type
			if decl.Inherits != "" {
				if _, declared := decls[decl.Inherits]; !declared {
					return nil, fmt.Errorf("type %q inherits %q: %w",
						name, decl.Inherits, ErrUnknownBase)
				}
				b, ready := built[decl.Inherits]
				if !ready {
					continue
				}
				base = b
			}
			t, err := buildType(name, decl, base)
			if err != nil {
				return nil, err
			}
			built[name] = t
			progress = true
		}
		if !progress {
			remaining := make([]string, 0, len(decls)-len(built))
			for name := range decls {
				if _, done := built[name]; !done {
					remaining = append(remaining, name)
				}
			}
			sort.Strings(remaining)
			return nil, fmt.Errorf("%w involving %v", ErrInheritCycle, remaining)
		}
	}
	return built, nil
}

func buildType(name string, decl typeDecl, base *record.Type) (*record.Type, error) {
	declFields := make([]record.Decl, 0, len(decl.Fields))
	for _, fieldName := range decl.Fields {
		cd, hasCheck := decl.Check[fieldName]
		if !hasCheck {
			declFields = append(declFields, record.D(fieldName))
			continue
		}
		kind, err := parseKind(cd.Kind)
		if err != nil {
			return nil, fmt.Errorf("type %q, field %q: %w", name, fieldName, err)
		}
		f := record.NewField(record.WithCheck(kind, check.ParseMods(cd.Mods)))
		declFields = append(declFields, record.D(fieldName, f))
	}
	for fieldName := range decl.Check {
		if !containsString(decl.Fields, fieldName) {
			return nil, fmt.Errorf("type %q: check clause for undeclared field %q",
				name, fieldName)
		}
	}

	opts := make([]record.TypeOption, 0, 2)
	if decl.Mutable {
		opts = append(opts, record.Mutable())
	}
	if base != nil {
		opts = append(opts, record.InheritFields(base))
	}
	return record.NewType(name, declFields, opts...)
}

// parseKind turns a space-delimited list of kind names into a check.Kind.
// "any" stands alone: combining it with other names is an error rather than
// a silently widened kind.
func parseKind(spec string) (check.Kind, error) {
	names := strings.Fields(spec)
	kind := make(check.Kind, 0, len(names))
	for _, n := range names {
		types, ok := kindNames[n]
		if !ok {
			return nil, fmt.Errorf("%q: %w", n, ErrUnknownKind)
		}
		if types == nil {
			if len(names) > 1 {
				return nil, fmt.Errorf("%q: %w", spec, ErrAnyKindMix)
			}
			return check.AnyKind, nil
		}
		kind = append(kind, types...)
	}
	return kind, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
