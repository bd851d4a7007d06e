package ffi

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/ebitengine/purego"
	"github.com/ygrebnov/errorc"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// Kind is the native representation of an argument or return value.
type Kind uint8

const (
	Void Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String  // const char*: results are copied into a Go string, arguments are *byte
	Pointer // any handle or address, passed as uintptr
)

var kindNames = [...]string{
	Void:    "void",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
	Pointer: "pointer",
}

var kindTypes = [...]reflect.Type{
	Bool:    reflect.TypeFor[bool](),
	Int8:    reflect.TypeFor[int8](),
	Int16:   reflect.TypeFor[int16](),
	Int32:   reflect.TypeFor[int32](),
	Int64:   reflect.TypeFor[int64](),
	Uint8:   reflect.TypeFor[uint8](),
	Uint16:  reflect.TypeFor[uint16](),
	Uint32:  reflect.TypeFor[uint32](),
	Uint64:  reflect.TypeFor[uint64](),
	Float32: reflect.TypeFor[float32](),
	Float64: reflect.TypeFor[float64](),
	String:  reflect.TypeFor[string](),
	Pointer: reflect.TypeFor[uintptr](),
}

// String returns the descriptor spelling of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

var bytePtrType = reflect.TypeFor[*byte]()

// GoType returns the Go type of a result of kind k at the call boundary.
// Void has no Go type and returns nil.
func (k Kind) GoType() reflect.Type {
	if k == Void || int(k) >= len(kindTypes) {
		return nil
	}
	return kindTypes[k]
}

// ArgType returns the Go type of an argument of kind k. String arguments
// are passed as *byte so that nil reaches the callee as NULL.
func (k Kind) ArgType() reflect.Type {
	if k == String {
		return bytePtrType
	}
	return k.GoType()
}

// IsInteger reports whether the kind is a signed or unsigned integer.
func (k Kind) IsInteger() bool {
	return k >= Int8 && k <= Uint64
}

// ParseKind parses a descriptor spelling. "int" and "uint" are accepted as
// aliases for the 32-bit C types, "gboolean" for a C int used as bool.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "gint", "gboolean":
		return Int32, nil
	case "uint", "guint":
		return Uint32, nil
	case "size", "gsize", "gtype":
		return Uint64, nil
	case "double", "gdouble":
		return Float64, nil
	}
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return Void, fmt.Errorf("%w: unknown kind %q", gerrors.ErrType, s)
}

// Signature is the return and argument kinds of a native function.
type Signature struct {
	Return Kind
	Args   []Kind
}

// FuncType returns the Go func type used to register the signature.
func (s Signature) FuncType() reflect.Type {
	in := make([]reflect.Type, len(s.Args))
	for i, k := range s.Args {
		in[i] = k.ArgType()
	}
	var out []reflect.Type
	if t := s.Return.GoType(); t != nil {
		out = []reflect.Type{t}
	}
	return reflect.FuncOf(in, out, false)
}

func (s Signature) String() string {
	args := make([]string, len(s.Args))
	for i, k := range s.Args {
		args[i] = k.String()
	}
	return s.Return.String() + "(" + strings.Join(args, ", ") + ")"
}

// Func is a bound native function. Arguments are converted to the declared
// kinds; the result is nil for void functions.
type Func func(args ...any) (any, error)

// MakeFunc wraps fn, a Go func whose type matches sig.FuncType(), as a Func.
func MakeFunc(sig Signature, fn any) (Func, error) {
	want := sig.FuncType()
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Type() != want {
		return nil, fmt.Errorf("%w: function type %v does not match signature %s", gerrors.ErrType, reflect.TypeOf(fn), sig)
	}

	in := make([]reflect.Type, len(sig.Args))
	for i, k := range sig.Args {
		in[i] = k.ArgType()
	}
	hasResult := sig.Return != Void

	return func(args ...any) (any, error) {
		if len(args) != len(in) {
			return nil, errorc.With(gerrors.ErrArity,
				errorc.String(gerrors.FieldValue, fmt.Sprintf("got %d, want %d", len(args), len(in))),
			)
		}
		values := make([]reflect.Value, len(args))
		for i, a := range args {
			av, err := convertArg(a, in[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			values[i] = av
		}
		out := v.Call(values)
		// String arguments point into Go memory owned by values.
		runtime.KeepAlive(values)
		if !hasResult {
			return nil, nil
		}
		return out[0].Interface(), nil
	}, nil
}

func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		// NULL for pointers and strings, zero for scalars.
		return reflect.Zero(t), nil
	}
	av := reflect.ValueOf(a)
	if av.Type() == t {
		return av, nil
	}
	if t == bytePtrType {
		if s, ok := a.(string); ok {
			return reflect.ValueOf(&CString(s)[0]), nil
		}
		return reflect.Value{}, errorc.With(gerrors.ErrType,
			errorc.String(gerrors.FieldType, av.Type().String()),
			errorc.String(gerrors.FieldValue, fmt.Sprint(a)),
		)
	}
	if t.Kind() == reflect.Bool || av.Kind() == reflect.Bool {
		if av.Kind() == t.Kind() {
			return av.Convert(t), nil
		}
		return reflect.Value{}, errorc.With(gerrors.ErrType,
			errorc.String(gerrors.FieldType, av.Type().String()),
			errorc.String(gerrors.FieldValue, fmt.Sprint(a)),
		)
	}
	if !av.CanConvert(t) {
		return reflect.Value{}, errorc.With(gerrors.ErrType,
			errorc.String(gerrors.FieldType, av.Type().String()),
			errorc.String(gerrors.FieldValue, fmt.Sprint(a)),
		)
	}
	return av.Convert(t), nil
}

// Library is a loaded native library.
type Library interface {
	Name() LibraryName
	// Bind looks up symbol and returns a call with the given signature.
	Bind(symbol string, sig Signature) (Func, error)
}

type dynamicLibrary struct {
	name   LibraryName
	path   string
	handle uintptr
	sym    func(handle uintptr, symbol string) (uintptr, error)
}

func (l *dynamicLibrary) Name() LibraryName { return l.name }

// Path returns the file the library was loaded from.
func (l *dynamicLibrary) Path() string { return l.path }

func (l *dynamicLibrary) Bind(symbol string, sig Signature) (Func, error) {
	addr, err := l.Symbol(symbol)
	if err != nil {
		return nil, err
	}
	return bindAddress(addr, sig)
}

// Symbol returns the address of symbol.
func (l *dynamicLibrary) Symbol(symbol string) (uintptr, error) {
	addr, err := l.sym(l.handle, symbol)
	if err != nil || addr == 0 {
		cause := "symbol not found"
		if err != nil {
			cause = err.Error()
		}
		return 0, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldLibrary, string(l.name)),
			errorc.String(gerrors.FieldSymbol, symbol),
			errorc.String(gerrors.FieldCause, cause),
		)
	}
	return addr, nil
}

// bindAddress registers a Go func of the signature's type against addr.
func bindAddress(addr uintptr, sig Signature) (fn Func, err error) {
	fptr := reflect.New(sig.FuncType())
	defer func() {
		// purego panics on signatures it cannot marshal.
		if r := recover(); r != nil {
			fn, err = nil, fmt.Errorf("%w: cannot bind %s: %v", gerrors.ErrUnsupported, sig, r)
		}
	}()
	purego.RegisterFunc(fptr.Interface(), addr)
	return MakeFunc(sig, fptr.Elem().Interface())
}
