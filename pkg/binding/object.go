package binding

import (
	"fmt"
	"sync"

	"github.com/ygrebnov/errorc"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

// Object is an instance of a pointer type. Cached properties are stored
// per object after their first read.
type Object struct {
	typ *Type
	ptr *ownership.Pointer

	mu    sync.Mutex
	cache map[string]any
}

// Type returns the object's exposed type.
func (o *Object) Type() *Type { return o.typ }

// Pointer returns the underlying handle.
func (o *Object) Pointer() *ownership.Pointer { return o.ptr }

// Addr returns the native address; 0 for a nil Object.
func (o *Object) Addr() uintptr {
	if o == nil {
		return 0
	}
	return o.ptr.Addr()
}

// Owns reports whether this object must release its native resource.
func (o *Object) Owns() bool { return o != nil && o.ptr.Owns() }

func (o *Object) String() string {
	return fmt.Sprintf("<%s object at %#x>", o.typ.name, o.Addr())
}

// Get reads a cached property. The first read on o resolves the native
// getter (once per member across all objects) and calls it with o; later
// reads return the stored value without calling into the library.
func (o *Object) Get(name string) (any, error) {
	o.mu.Lock()
	if v, ok := o.cache[name]; ok {
		o.mu.Unlock()
		return v, nil
	}
	o.mu.Unlock()

	m, err := o.typ.lookup(name)
	if err != nil {
		return nil, err
	}
	if m.kind != PropertyMember {
		return nil, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldType, o.typ.name),
			errorc.String(gerrors.FieldMember, name),
			errorc.String(gerrors.FieldCause, "not a property, use Call"),
		)
	}

	v, err := m.invoke([]any{o})
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cache == nil {
		o.cache = make(map[string]any)
	}
	o.cache[name] = v
	return v, nil
}

// Call invokes a method with o as the first argument followed by args.
// Methods declared to transfer ownership return objects that own their
// resource.
func (o *Object) Call(name string, args ...any) (any, error) {
	m, err := o.typ.lookup(name)
	if err != nil {
		return nil, err
	}
	if m.kind != MethodMember {
		return nil, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldType, o.typ.name),
			errorc.String(gerrors.FieldMember, name),
			errorc.String(gerrors.FieldCause, "not a method of "+m.kind.String()+" kind"),
		)
	}
	full := make([]any, 0, len(args)+1)
	full = append(full, o)
	full = append(full, args...)
	return m.invoke(full)
}

// Cast reinterprets o as an object of target. Ownership moves to the
// result; o is left borrowed. The caller guarantees that both types
// describe the same native handle.
func (o *Object) Cast(target *Type) *Object {
	return target.Wrap(ownership.Reinterpret(o.ptr, target))
}

// Release frees the native resource through the type's release entry point
// if o owns it, at most once. o keeps ownership when the release call
// fails. Borrowed objects and types without a release entry point are left
// alone.
func (o *Object) Release() error {
	if !o.Owns() {
		return nil
	}
	m := o.typ.releaser()
	if m == nil {
		return nil
	}
	_, err := o.ptr.Release(func(addr uintptr) error {
		_, err := m.invoke([]any{addr})
		return err
	})
	return err
}
