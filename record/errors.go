package record

import "errors"

var (
	// ErrFieldCollision indicates a duplicate field name inside one record type.
	ErrFieldCollision = errors.New("duplicate field name")
	// ErrUnknownField indicates a field name the record type does not declare.
	ErrUnknownField = errors.New("no such field")
	// ErrUnsetField indicates a read of a field that was never stored.
	ErrUnsetField = errors.New("field not set")
	// ErrImmutable indicates a write to a locked field of an immutable record.
	ErrImmutable = errors.New("cannot set field on initialized immutable record")
	// ErrUnhashable indicates a value without a natural hash (slices, maps, funcs).
	ErrUnhashable = errors.New("unhashable value")
	// ErrMutableHash indicates a hash request on an instance of a mutable type.
	ErrMutableHash = errors.New("instances of a mutable record type are unhashable")
	// ErrInitializingHash indicates a hash request before construction finished.
	ErrInitializingHash = errors.New("record is still initializing and cannot be hashed")
	// ErrBadArgs indicates malformed constructor arguments.
	ErrBadArgs = errors.New("invalid constructor arguments")
	// ErrUnknownType indicates a decode of a type name missing from the registry.
	ErrUnknownType = errors.New("record type not registered")
	// ErrTypeRegistered indicates a duplicate type name in a registry.
	ErrTypeRegistered = errors.New("record type already registered")
	// ErrSchemaVersion indicates a persisted record with an incompatible envelope.
	ErrSchemaVersion = errors.New("unsupported record envelope version")
)
