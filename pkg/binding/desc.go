package binding

import (
	"github.com/thesyncim/libgobind/internal/ffi"
	"github.com/thesyncim/libgobind/pkg/enum"
)

// Re-exported call boundary types so callers outside this module can
// implement libraries and loaders.
type (
	Kind        = ffi.Kind
	Signature   = ffi.Signature
	Func        = ffi.Func
	Library     = ffi.Library
	Loader      = ffi.Loader
	LoaderFunc  = ffi.LoaderFunc
	LibraryName = ffi.LibraryName
)

// Recognized libraries.
const (
	GLib         = ffi.GLib
	GObject      = ffi.GObject
	GIRepository = ffi.GIRepository
)

// Desc describes the native type of an argument or return value. Descs are
// comparable; two are equal when they have the same kind and target.
type Desc struct {
	kind   ffi.Kind
	target *Type
	values *enum.Type
}

// Scalar descriptors.
var (
	Void    = Desc{kind: ffi.Void}
	Bool    = Desc{kind: ffi.Bool}
	Int8    = Desc{kind: ffi.Int8}
	Int16   = Desc{kind: ffi.Int16}
	Int32   = Desc{kind: ffi.Int32}
	Int64   = Desc{kind: ffi.Int64}
	Uint8   = Desc{kind: ffi.Uint8}
	Uint16  = Desc{kind: ffi.Uint16}
	Uint32  = Desc{kind: ffi.Uint32}
	Uint64  = Desc{kind: ffi.Uint64}
	Float32 = Desc{kind: ffi.Float32}
	Float64 = Desc{kind: ffi.Float64}
	String  = Desc{kind: ffi.String}
	// Opaque is an untyped pointer (void*). Results come back as
	// *ownership.Pointer.
	Opaque = Desc{kind: ffi.Pointer}
)

// Scalar returns the descriptor of a plain kind.
func Scalar(k Kind) Desc {
	if k == ffi.Pointer {
		return Opaque
	}
	return Desc{kind: k}
}

// PointerTo describes a pointer to an instance of t. Results come back as
// *Object of type t.
func PointerTo(t *Type) Desc {
	return Desc{kind: ffi.Pointer, target: t}
}

// EnumOf describes an integer carrying values of an enum or flags type.
// Results come back as enum.Value.
func EnumOf(t *enum.Type) Desc {
	k := ffi.Int32
	if t.Kind() == enum.KindFlags {
		k = ffi.Uint32
	}
	return Desc{kind: k, values: t}
}

// Kind returns the native kind.
func (d Desc) Kind() Kind { return d.kind }

// Target returns the pointed-to type of a typed pointer, or nil.
func (d Desc) Target() *Type { return d.target }

// Values returns the enum or flags type of an enum descriptor, or nil.
func (d Desc) Values() *enum.Type { return d.values }

// IsVoid reports whether d describes no value.
func (d Desc) IsVoid() bool { return d.kind == ffi.Void }

// IsPointer reports whether d is pointer-shaped: a handle to a native
// resource rather than a plain scalar. Strings are copied and not
// pointer-shaped.
func (d Desc) IsPointer() bool { return d.kind == ffi.Pointer }

// Equal reports whether d and o describe the same type.
func (d Desc) Equal(o Desc) bool { return d == o }

func (d Desc) String() string {
	switch {
	case d.target != nil:
		return "*" + d.target.Name()
	case d.values != nil:
		return d.values.Kind().String() + ":" + d.values.Name()
	default:
		return d.kind.String()
	}
}

func signatureOf(ret Desc, args []Desc) Signature {
	sig := Signature{Return: ret.kind, Args: make([]ffi.Kind, len(args))}
	for i, a := range args {
		sig.Args[i] = a.kind
	}
	return sig
}
