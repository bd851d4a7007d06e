package binding

import (
	"fmt"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/thesyncim/libgobind/internal/ffi"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
	"github.com/thesyncim/libgobind/pkg/enum"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

// MemberKind says how a member is reached.
type MemberKind uint8

const (
	// PropertyMember is a zero-argument getter cached per object.
	PropertyMember MemberKind = iota
	// MethodMember is called on an object, which is passed as the first argument.
	MethodMember
	// StaticMember is called on the base type.
	StaticMember
)

func (k MemberKind) String() string {
	switch k {
	case PropertyMember:
		return "property"
	case MethodMember:
		return "method"
	case StaticMember:
		return "static"
	default:
		return fmt.Sprintf("member(%d)", uint8(k))
	}
}

type resolveState uint8

const (
	unresolved resolveState = iota
	resolving
	resolved
)

// Member is a bound entry point. Its native symbol is looked up and given a
// call signature on first use; the outcome, including failure, is kept.
//
// First use is not meant to race: concurrent first calls may observe the
// resolving state and fail with ErrResolving.
type Member struct {
	kind    MemberKind
	name    string
	symbol  string
	spec    MethodSpec
	library LibraryName
	loader  Loader

	mu    sync.Mutex
	state resolveState
	fn    ffi.Func
	err   error
}

func newMember(kind MemberKind, name string, d *Declaration, spec MethodSpec, loader Loader) *Member {
	return &Member{
		kind:    kind,
		name:    name,
		symbol:  d.Prefix + spec.Name,
		spec:    spec,
		library: d.Library,
		loader:  loader,
	}
}

// Name returns the installed member name.
func (m *Member) Name() string { return m.name }

// Kind returns property, method or static.
func (m *Member) Kind() MemberKind { return m.kind }

// Symbol returns the native symbol name.
func (m *Member) Symbol() string { return m.symbol }

// Spec returns the declaration the member was installed from.
func (m *Member) Spec() MethodSpec { return m.spec }

// Resolved reports whether the symbol has been looked up.
func (m *Member) Resolved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == resolved
}

func (m *Member) resolve() (ffi.Func, error) {
	m.mu.Lock()
	switch m.state {
	case resolved:
		fn, err := m.fn, m.err
		m.mu.Unlock()
		return fn, err
	case resolving:
		m.mu.Unlock()
		return nil, errorc.With(gerrors.ErrResolving,
			errorc.String(gerrors.FieldMember, m.name),
			errorc.String(gerrors.FieldSymbol, m.symbol),
		)
	}
	m.state = resolving
	m.mu.Unlock()

	fn, err := m.bind()

	m.mu.Lock()
	m.fn, m.err, m.state = fn, err, resolved
	m.mu.Unlock()
	return fn, err
}

func (m *Member) bind() (ffi.Func, error) {
	lib, err := m.loader.Resolve(m.library)
	if err != nil {
		return nil, err
	}
	fn, err := lib.Bind(m.symbol, signatureOf(m.spec.Return, m.spec.Args))
	if err != nil {
		return nil, err
	}
	ffi.Debugf("resolved %s from %s as %s", m.symbol, m.library, signatureOf(m.spec.Return, m.spec.Args))
	return fn, nil
}

// invoke resolves the symbol, calls it with args lowered to native values
// and converts the result according to the declared return type.
func (m *Member) invoke(args []any) (any, error) {
	fn, err := m.resolve()
	if err != nil {
		return nil, err
	}
	lowered := make([]any, len(args))
	for i, a := range args {
		lowered[i] = lower(a)
	}
	res, err := fn(lowered...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.symbol, err)
	}
	return m.convert(res)
}

func (m *Member) convert(res any) (any, error) {
	ret := m.spec.Return
	switch {
	case ret.IsVoid():
		return nil, nil
	case ret.IsPointer():
		addr, _ := res.(uintptr)
		if addr == 0 {
			return nil, nil
		}
		// Static entry points never take ownership.
		own := ownership.Borrowed
		if m.spec.OwnsResult && m.kind != StaticMember {
			own = ownership.Owned
		}
		if ret.target == nil {
			return ownership.New(addr, nil, own), nil
		}
		return ret.target.New(addr, own), nil
	case ret.values != nil:
		v, err := ret.values.New(res)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.symbol, err)
		}
		return v, nil
	default:
		return res, nil
	}
}

// lower turns binding-level values into what the call boundary accepts.
func lower(a any) any {
	switch v := a.(type) {
	case *Object:
		return v.Addr()
	case *ownership.Pointer:
		return v.Addr()
	case enum.Value:
		return v.Int()
	default:
		return a
	}
}
