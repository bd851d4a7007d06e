package enum

import (
	"fmt"
	"strings"

	"github.com/ygrebnov/errorc"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// flagsSeparator joins flag names in Label.
const flagsSeparator = " | "

// Value is an immutable enum or flags value. Values are comparable and can
// be used as map keys; Equal compares the integers only.
type Value struct {
	typ *Type
	v   int64
}

// Type returns the value's type, or nil for the zero Value.
func (v Value) Type() *Type { return v.typ }

// Int returns the integer value.
func (v Value) Int() int64 { return v.v }

// Equal reports integer equality.
func (v Value) Equal(o Value) bool { return v.v == o.v }

// Label returns the symbolic rendering of the value.
//
// Enum values render as their name. Flags values render as the zero entry's
// name when the value is zero and such an entry exists; otherwise as the
// names of every nonzero entry whose bits are all set, in declared order,
// joined by " | ", or "0" when nothing matches.
func (v Value) Label() string {
	if v.typ == nil {
		return fmt.Sprint(v.v)
	}
	if v.typ.kind == KindEnum {
		return v.typ.allowed[v.v]
	}

	if v.v == 0 {
		if name, ok := v.typ.allowed[0]; ok {
			return name
		}
		return "0"
	}
	var names []string
	for _, e := range v.typ.entries {
		if e.Value != 0 && v.v&e.Value == e.Value {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, flagsSeparator)
}

// String renders the value with its owning type, e.g.
// "<enum IN of type GIRepositoryGIDirection>".
func (v Value) String() string {
	if v.typ == nil {
		return fmt.Sprintf("<invalid value %d>", v.v)
	}
	return fmt.Sprintf("<%s %s of type %s>", v.typ.kind, v.Label(), v.typ.name)
}

// Has reports whether every bit of flag is set in v.
func (v Value) Has(flag Value) bool {
	return v.v&flag.v == flag.v
}

// Or returns v | o as a value of v's flags type.
func (v Value) Or(o Value) (Value, error) {
	if err := v.requireFlags("|"); err != nil {
		return Value{}, err
	}
	return Value{typ: v.typ, v: v.v | o.v}, nil
}

// And returns v & o as a value of v's flags type.
func (v Value) And(o Value) (Value, error) {
	if err := v.requireFlags("&"); err != nil {
		return Value{}, err
	}
	return Value{typ: v.typ, v: v.v & o.v}, nil
}

func (v Value) requireFlags(op string) error {
	if v.typ == nil || v.typ.kind != KindFlags {
		name := "<nil>"
		if v.typ != nil {
			name = v.typ.name
		}
		return errorc.With(gerrors.ErrUnsupported,
			errorc.String(gerrors.FieldType, name),
			errorc.String(gerrors.FieldMember, op),
		)
	}
	return nil
}

// ValueNick returns the enum value's nick, fetched from metadata on first use.
func (v Value) ValueNick() (string, error) {
	n, err := v.enumNames("value_nick")
	return n.Nick, err
}

// ValueName returns the enum value's registered C name.
func (v Value) ValueName() (string, error) {
	n, err := v.enumNames("value_name")
	return n.Name, err
}

// FirstValueNick returns the nick of the first flag set in v.
func (v Value) FirstValueNick() (string, error) {
	n, err := v.flagsNames("first_value_nick")
	return n.Nick, err
}

// FirstValueName returns the C name of the first flag set in v.
func (v Value) FirstValueName() (string, error) {
	n, err := v.flagsNames("first_value_name")
	return n.Name, err
}

func (v Value) enumNames(attr string) (Names, error) {
	if v.typ == nil || v.typ.kind != KindEnum {
		return Names{}, v.typ.unsupportedOrNil(attr)
	}
	return v.typ.names(v.v)
}

func (v Value) flagsNames(attr string) (Names, error) {
	if v.typ == nil || v.typ.kind != KindFlags {
		return Names{}, v.typ.unsupportedOrNil(attr)
	}
	return v.typ.names(v.v)
}

func (t *Type) unsupportedOrNil(what string) error {
	if t == nil {
		return errorc.With(gerrors.ErrUnsupported, errorc.String(gerrors.FieldMember, what))
	}
	return t.unsupported(what)
}

// Call invokes a declared instance method. Declared methods are not
// implemented and fail with ErrUnsupported; other names fail with ErrLookup.
func (v Value) Call(method string, args ...any) (any, error) {
	if v.typ == nil {
		return nil, errorc.With(gerrors.ErrLookup, errorc.String(gerrors.FieldMember, method))
	}
	if _, ok := v.typ.methods[method]; ok {
		return nil, v.typ.unsupported(method)
	}
	return nil, errorc.With(gerrors.ErrLookup,
		errorc.String(gerrors.FieldType, v.typ.name),
		errorc.String(gerrors.FieldMember, method),
	)
}

// HasMethod reports whether method was declared in metadata.
func (t *Type) HasMethod(method string) bool {
	_, ok := t.methods[method]
	return ok
}
