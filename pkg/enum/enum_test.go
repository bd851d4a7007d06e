package enum

import (
	"errors"
	"math"
	"strings"
	"testing"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

type countingMetadata struct {
	calls map[int64]int
	fail  bool
}

func (m *countingMetadata) LookupValue(kind Kind, v int64) (Names, error) {
	if m.calls == nil {
		m.calls = make(map[int64]int)
	}
	m.calls[v]++
	if m.fail {
		return Names{}, errors.New("class lookup failed")
	}
	return Names{Name: "GI_DIRECTION_" + strings.ToUpper(kind.String()), Nick: "nick-" + string(rune('a'+v))}, nil
}

var directionEntries = []Entry{
	{0, "in"},
	{1, "out"},
	{2, "inout"},
}

func TestEnumSingletons(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil)

	for _, e := range directionEntries {
		v, err := typ.New(e.Value)
		if err != nil {
			t.Fatalf("New(%d): %v", e.Value, err)
		}
		member, ok := typ.Member(strings.ToUpper(e.Name))
		if !ok {
			t.Fatalf("Member(%q) missing", strings.ToUpper(e.Name))
		}
		if v != member {
			t.Errorf("New(%d) = %v, want singleton %v", e.Value, v, member)
		}
		if !v.Equal(member) || v.Int() != e.Value {
			t.Errorf("New(%d) not equal to its singleton", e.Value)
		}
	}

	if got := len(typ.Members()); got != 3 {
		t.Errorf("Members() has %d entries", got)
	}
	if typ.Kind() != KindEnum || typ.Name() != "GIRepositoryGIDirection" {
		t.Errorf("Kind/Name = %v/%q", typ.Kind(), typ.Name())
	}
}

func TestEnumValidation(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil)

	_, err := typ.New(7)
	if !errors.Is(err, gerrors.ErrValidation) {
		t.Fatalf("New(7) error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "7") {
		t.Errorf("error %q does not name the value", err)
	}

	for _, in := range []any{"1", 1.0, true, nil, struct{}{}} {
		if _, err := typ.New(in); !errors.Is(err, gerrors.ErrType) {
			t.Errorf("New(%#v) error = %v, want ErrType", in, err)
		}
	}

	// Unsigned values above MaxInt64 must not wrap onto negative entries.
	signed := NewEnum("E", []Entry{{-1, "neg"}, {1, "one"}}, nil)
	flags := NewFlags("F", []Entry{{1, "one"}}, nil)
	var big uint64 = math.MaxUint64
	for _, in := range []any{big, uint(big), uintptr(big), uint64(math.MaxInt64 + 1)} {
		if v, err := signed.New(in); !errors.Is(err, gerrors.ErrValidation) {
			t.Errorf("enum New(%T %v) = %v, %v, want ErrValidation", in, in, v, err)
		}
		if v, err := flags.New(in); !errors.Is(err, gerrors.ErrValidation) {
			t.Errorf("flags New(%T %v) = %v, %v, want ErrValidation", in, in, v, err)
		}
	}
	if v, err := signed.New(uint64(1)); err != nil || v != signed.MustMember("ONE") {
		t.Errorf("New(uint64(1)) = %v, %v", v, err)
	}
}

type myInt int16

func TestEnumAcceptsIntegerKinds(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil)
	inputs := []any{int8(1), int32(1), int64(1), uint(1), uint8(1), uint32(1), uint64(1), myInt(1), typ.MustMember("OUT")}
	for _, in := range inputs {
		v, err := typ.New(in)
		if err != nil {
			t.Errorf("New(%T): %v", in, err)
			continue
		}
		if v != typ.MustMember("OUT") {
			t.Errorf("New(%T) = %v", in, v)
		}
	}
}

func TestEnumString(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil)
	v := typ.MustNew(1)
	if got := v.String(); got != "<enum OUT of type GIRepositoryGIDirection>" {
		t.Errorf("String() = %q", got)
	}
	if got := v.Label(); got != "OUT" {
		t.Errorf("Label() = %q", got)
	}
}

func TestEnumMemberNames(t *testing.T) {
	typ := NewEnum("GdkEventType", []Entry{{4, "2button_press"}, {5, "button-release"}}, nil)
	if _, ok := typ.Member("_2BUTTON_PRESS"); !ok {
		t.Error("leading digit member not prefixed")
	}
	if _, ok := typ.Member("BUTTON-RELEASE"); !ok {
		t.Error("member not upper-cased")
	}
}

func TestEnumAsMapKey(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil)
	seen := map[Value]int{}
	seen[typ.MustNew(2)]++
	seen[typ.MustMember("INOUT")]++
	if len(seen) != 1 || seen[typ.MustNew(2)] != 2 {
		t.Errorf("equal values hashed differently: %v", seen)
	}
}

func TestEnumAuxNamesCachedPerValue(t *testing.T) {
	meta := &countingMetadata{}
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, meta)

	a := typ.MustNew(1)
	b := typ.MustMember("OUT")
	for i := 0; i < 3; i++ {
		if _, err := a.ValueNick(); err != nil {
			t.Fatalf("ValueNick: %v", err)
		}
		if _, err := b.ValueName(); err != nil {
			t.Fatalf("ValueName: %v", err)
		}
	}
	nick, _ := a.ValueNick()
	if nick != "nick-b" {
		t.Errorf("ValueNick() = %q", nick)
	}
	if meta.calls[1] != 1 {
		t.Errorf("metadata consulted %d times for value 1, want 1", meta.calls[1])
	}

	if _, err := typ.MustNew(2).ValueNick(); err != nil {
		t.Fatal(err)
	}
	if meta.calls[2] != 1 {
		t.Errorf("metadata consulted %d times for value 2, want 1", meta.calls[2])
	}

	if _, err := a.FirstValueNick(); !errors.Is(err, gerrors.ErrUnsupported) {
		t.Errorf("FirstValueNick on enum error = %v, want ErrUnsupported", err)
	}
}

func TestEnumAuxNamesErrors(t *testing.T) {
	meta := &countingMetadata{fail: true}
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, meta)

	v := typ.MustNew(0)
	for i := 0; i < 2; i++ {
		if _, err := v.ValueName(); err == nil {
			t.Fatal("expected lookup failure")
		}
	}
	if meta.calls[0] != 2 {
		t.Errorf("failed lookups should not be cached, got %d calls", meta.calls[0])
	}

	bare := NewEnum("Bare", directionEntries, nil)
	if _, err := bare.MustNew(0).ValueNick(); !errors.Is(err, gerrors.ErrUnsupported) {
		t.Errorf("no metadata error = %v, want ErrUnsupported", err)
	}
}

func TestEnumDeclaredMethods(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil, WithMethods("to_string"))
	v := typ.MustNew(0)

	_, err := v.Call("to_string")
	if !errors.Is(err, gerrors.ErrUnsupported) {
		t.Fatalf("Call(to_string) error = %v, want ErrUnsupported", err)
	}
	if !strings.Contains(err.Error(), "to_string") {
		t.Errorf("error %q does not name the method", err)
	}
	if !typ.HasMethod("to_string") {
		t.Error("HasMethod(to_string) = false")
	}

	if _, err := v.Call("frobnicate"); !errors.Is(err, gerrors.ErrLookup) {
		t.Errorf("Call(frobnicate) error = %v, want ErrLookup", err)
	}
}

func TestEnumOrUnsupported(t *testing.T) {
	typ := NewEnum("GIRepositoryGIDirection", directionEntries, nil)
	if _, err := typ.MustNew(1).Or(typ.MustNew(2)); !errors.Is(err, gerrors.ErrUnsupported) {
		t.Errorf("Or on enum error = %v, want ErrUnsupported", err)
	}
}
