// Package enum builds validated enumerated and bitmask value types from
// (value, name) lists read out of introspection metadata.
//
// A single Type carries its allowed set or flag list as data; the Kind
// decides whether values are validated (enum) or combined as a bitmask
// (flags).
package enum

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/ygrebnov/errorc"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// Kind selects enum or flags semantics.
type Kind uint8

const (
	KindEnum Kind = iota
	KindFlags
)

func (k Kind) String() string {
	if k == KindFlags {
		return "flags"
	}
	return "enum"
}

// Entry is one (numeric value, symbolic name) pair.
type Entry struct {
	Value int64
	Name  string
}

// Names are the display names of one value as registered with the type system.
type Names struct {
	Name string
	Nick string
}

// Metadata fetches display names for a value. It is consulted at most once
// per distinct value of a Type; results are cached on the Type.
type Metadata interface {
	LookupValue(kind Kind, value int64) (Names, error)
}

// Type is an enum or flags value type.
type Type struct {
	kind    Kind
	name    string
	entries []Entry
	allowed map[int64]string
	members map[string]Value
	methods map[string]struct{}
	meta    Metadata

	mu  sync.Mutex
	aux map[int64]Names
}

// Option configures a Type.
type Option func(*Type)

// WithMethods declares instance methods that exist in metadata but are not
// implemented. Calling one fails with ErrUnsupported.
func WithMethods(names ...string) Option {
	return func(t *Type) {
		for _, n := range names {
			t.methods[n] = struct{}{}
		}
	}
}

// NewEnum builds an enum type whose allowed set is exactly the entry values.
func NewEnum(name string, entries []Entry, meta Metadata, opts ...Option) *Type {
	return newType(KindEnum, name, entries, meta, opts)
}

// NewFlags builds a flags type. Any bit combination is a valid value.
func NewFlags(name string, entries []Entry, meta Metadata, opts ...Option) *Type {
	return newType(KindFlags, name, entries, meta, opts)
}

func newType(kind Kind, name string, entries []Entry, meta Metadata, opts []Option) *Type {
	t := &Type{
		kind:    kind,
		name:    name,
		entries: make([]Entry, 0, len(entries)),
		allowed: make(map[int64]string, len(entries)),
		members: make(map[string]Value, len(entries)),
		methods: make(map[string]struct{}),
		meta:    meta,
		aux:     make(map[int64]Names),
	}
	for _, e := range entries {
		upper := memberName(e.Name)
		t.entries = append(t.entries, Entry{Value: e.Value, Name: upper})
		t.allowed[e.Value] = upper
	}
	for _, opt := range opts {
		opt(t)
	}
	// Singletons are created after the allowed set is complete.
	for _, e := range t.entries {
		t.members[e.Name] = Value{typ: t, v: e.Value}
	}
	return t
}

// memberName upper-cases a metadata name and prefixes names that would not
// start an identifier, e.g. "2button_press" becomes "_2BUTTON_PRESS".
func memberName(name string) string {
	upper := strings.ToUpper(name)
	if upper != "" && upper[0] >= '0' && upper[0] <= '9' {
		upper = "_" + upper
	}
	return upper
}

// Name returns the namespaced type name.
func (t *Type) Name() string { return t.name }

// Kind returns enum or flags.
func (t *Type) Kind() Kind { return t.kind }

// Entries returns the (value, upper-cased name) list in declared order.
func (t *Type) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Contains reports whether v is in the allowed set. Flags types accept
// every value.
func (t *Type) Contains(v int64) bool {
	if t.kind == KindFlags {
		return true
	}
	_, ok := t.allowed[v]
	return ok
}

// Member returns the singleton for an upper-cased symbolic name.
func (t *Type) Member(name string) (Value, bool) {
	v, ok := t.members[name]
	return v, ok
}

// MustMember is like Member but panics for unknown names.
func (t *Type) MustMember(name string) Value {
	v, ok := t.members[name]
	if !ok {
		panic(fmt.Sprintf("enum: %s has no member %s", t.name, name))
	}
	return v
}

// Members returns the singletons in declared order.
func (t *Type) Members() []Value {
	out := make([]Value, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, t.members[e.Name])
	}
	return out
}

// New converts an integer to a value of t. Non-integer input fails with
// ErrType; for enum types, values outside the allowed set fail with
// ErrValidation.
func (t *Type) New(x any) (Value, error) {
	v, ok, err := toInt(x)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", t.name, err)
	}
	if !ok {
		return Value{}, errorc.With(gerrors.ErrType,
			errorc.String(gerrors.FieldType, t.name),
			errorc.String(gerrors.FieldValue, fmt.Sprintf("int expected, got %T", x)),
		)
	}
	if !t.Contains(v) {
		return Value{}, errorc.With(gerrors.ErrValidation,
			errorc.String(gerrors.FieldType, t.name),
			errorc.String(gerrors.FieldValue, fmt.Sprint(v)),
		)
	}
	return Value{typ: t, v: v}, nil
}

// MustNew is like New but panics on error.
func (t *Type) MustNew(x any) Value {
	v, err := t.New(x)
	if err != nil {
		panic(err)
	}
	return v
}

func toInt(x any) (int64, bool, error) {
	switch n := x.(type) {
	case Value:
		return n.v, n.typ != nil, nil
	case int:
		return int64(n), true, nil
	case int8:
		return int64(n), true, nil
	case int16:
		return int64(n), true, nil
	case int32:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return int64(n), true, nil
	case uint16:
		return int64(n), true, nil
	case uint32:
		return int64(n), true, nil
	case uint64:
		return fromUint(n)
	case uintptr:
		return fromUint(uint64(n))
	}
	// Named integer types.
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint())
	}
	return 0, false, nil
}

// fromUint rejects unsigned values that do not fit in an int64.
func fromUint(n uint64) (int64, bool, error) {
	if n > math.MaxInt64 {
		return 0, true, errorc.With(gerrors.ErrValidation,
			errorc.String(gerrors.FieldValue, strconv.FormatUint(n, 10)),
			errorc.String(gerrors.FieldCause, "out of int64 range"),
		)
	}
	return int64(n), true, nil
}

// names returns the cached display names of v, asking the metadata once
// per distinct value. Failed lookups are not cached.
func (t *Type) names(v int64) (Names, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.aux[v]; ok {
		return n, nil
	}
	if t.meta == nil {
		return Names{}, errorc.With(gerrors.ErrUnsupported,
			errorc.String(gerrors.FieldType, t.name),
			errorc.String(gerrors.FieldCause, "no metadata"),
		)
	}
	n, err := t.meta.LookupValue(t.kind, v)
	if err != nil {
		return Names{}, err
	}
	t.aux[v] = n
	return n, nil
}

func (t *Type) unsupported(what string) error {
	return errorc.With(gerrors.ErrUnsupported,
		errorc.String(gerrors.FieldType, t.name),
		errorc.String(gerrors.FieldMember, what),
	)
}
