// Package errors defines the error taxonomy shared by libgobind packages.
// Match sentinels with errors.Is; structured context is attached with
// errorc.With and the Field* keys below.
package errors

import "github.com/ygrebnov/errorc"

// Namespace prefixes every sentinel message and field key.
const Namespace = "gobind"

var namespace = errorc.Namespace(Namespace)

var (
	// ErrLookup is returned for unknown library names, missing symbols and
	// undeclared members.
	ErrLookup = namespace.NewError("lookup failed")

	// ErrType is returned when a value has the wrong Go type, e.g. a
	// non-integer passed to an enum constructor.
	ErrType = namespace.NewError("type mismatch")

	// ErrValidation is returned for enum values outside the allowed set.
	ErrValidation = namespace.NewError("invalid value")

	// ErrUnsupported is returned by declared but unimplemented methods.
	ErrUnsupported = namespace.NewError("not supported")

	// ErrArity is returned when a bound call receives the wrong number of arguments.
	ErrArity = namespace.NewError("wrong number of arguments")

	// ErrDuplicateMember is returned when two entry points install under one name.
	ErrDuplicateMember = namespace.NewError("duplicate member")

	// ErrResolving is returned when a member is resolved re-entrantly.
	ErrResolving = namespace.NewError("resolution in progress")

	// ErrConfig is returned for unreadable or invalid config files, manifests
	// and declarations.
	ErrConfig = namespace.NewError("invalid configuration")
)

var newKey = errorc.KeyFactory(Namespace)

// Structured error field keys.
var (
	FieldLibrary = newKey("library") // gobind.library
	FieldSymbol  = newKey("symbol")  // gobind.symbol
	FieldMember  = newKey("member")  // gobind.member
	FieldType    = newKey("type")    // gobind.type
	FieldValue   = newKey("value")   // gobind.value
	FieldPath    = newKey("path")    // gobind.path
	FieldCause   = newKey("cause")   // gobind.cause
)
