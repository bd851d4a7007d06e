package binding

import (
	"sync"

	"github.com/ygrebnov/errorc"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

// builtinMembers are accessor names every Object already has; cached
// properties that would collide with them get a "_" suffix.
var builtinMembers = []string{"addr", "owns", "type", "cast", "release"}

// Type is an exposed type: a native object class or its pointer
// representation. Members are attached only by Registry.InstallAll.
type Type struct {
	name     string
	reserved map[string]struct{}

	mu      sync.RWMutex
	members map[string]*Member
	order   []string
	release *Member
}

// NewType returns an exposed type with no members. reserved adds names
// that properties must not shadow, on top of the built-in accessors.
func NewType(name string, reserved ...string) *Type {
	t := &Type{
		name:     name,
		reserved: make(map[string]struct{}, len(builtinMembers)+len(reserved)),
		members:  make(map[string]*Member),
	}
	for _, n := range builtinMembers {
		t.reserved[n] = struct{}{}
	}
	for _, n := range reserved {
		t.reserved[n] = struct{}{}
	}
	return t
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

// Defined reports whether name is a reserved accessor or an installed member.
func (t *Type) Defined(name string) bool {
	if _, ok := t.reserved[name]; ok {
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[name]
	return ok
}

// Member returns an installed member.
func (t *Type) Member(name string) (*Member, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.members[name]
	return m, ok
}

// Members returns installed member names in installation order.
func (t *Type) Members() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

func (t *Type) install(m *Member) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.members[m.name]; ok {
		return errorc.With(gerrors.ErrDuplicateMember,
			errorc.String(gerrors.FieldType, t.name),
			errorc.String(gerrors.FieldMember, m.name),
		)
	}
	t.members[m.name] = m
	t.order = append(t.order, m.name)
	return nil
}

func (t *Type) setRelease(m *Member) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.release = m
}

func (t *Type) releaser() *Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.release
}

func (t *Type) lookup(name string) (*Member, error) {
	m, ok := t.Member(name)
	if !ok {
		return nil, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldType, t.name),
			errorc.String(gerrors.FieldMember, name),
		)
	}
	return m, nil
}

// Call invokes a static member installed on t. Ownership flags are not
// applied to static entry points.
func (t *Type) Call(name string, args ...any) (any, error) {
	m, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	if m.kind != StaticMember {
		return nil, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldType, t.name),
			errorc.String(gerrors.FieldMember, name),
			errorc.String(gerrors.FieldCause, "not a static member, call it on an object"),
		)
	}
	return m.invoke(args)
}

// Wrap returns an Object of type t for p. p's type tag is not checked.
func (t *Type) Wrap(p *ownership.Pointer) *Object {
	return &Object{typ: t, ptr: p}
}

// New returns an Object of type t for addr.
func (t *Type) New(addr uintptr, own ownership.Ownership) *Object {
	return t.Wrap(ownership.New(addr, t, own))
}
