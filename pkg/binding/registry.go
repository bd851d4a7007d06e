// Package binding turns declarations of native entry points into lazily
// resolved members of exposed types.
//
// Declarations are queued on a Registry during a declaration phase and
// attached to their types by a single InstallAll call. Nothing touches a
// native library until a member is first used. The declaration and
// installation phases must be serialized by the embedding application.
package binding

import (
	"errors"
	"strings"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/thesyncim/libgobind/internal/ffi"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// MethodSpec declares one native entry point. The native symbol is the
// declaration's prefix followed by Name.
type MethodSpec struct {
	Name   string
	Return Desc
	Args   []Desc
	// OwnsResult marks entry points that hand the caller a newly owned
	// resource. It is ignored for static entry points.
	OwnsResult bool
}

// Method is shorthand for a MethodSpec without ownership transfer.
func Method(name string, ret Desc, args ...Desc) MethodSpec {
	return MethodSpec{Name: name, Return: ret, Args: args}
}

// Owned returns a copy of s that transfers ownership of its result.
func (s MethodSpec) Owned() MethodSpec {
	s.OwnsResult = true
	return s
}

// Declaration binds a list of entry points of one library to an exposed
// base type and its pointer representation.
type Declaration struct {
	Library LibraryName
	Base    *Type
	Pointer *Type
	Prefix  string
	Methods []MethodSpec
	// Release is the local name of the entry point that frees an owned
	// instance, e.g. "unref". Empty means owned objects are never freed.
	Release string
}

// Registry queues declarations and installs them once.
type Registry struct {
	mu        sync.Mutex
	loader    Loader
	pending   []Declaration
	installed bool
}

// NewRegistry returns an empty Registry resolving libraries through loader
// (ffi.DefaultLoader when nil).
func NewRegistry(loader Loader) *Registry {
	if loader == nil {
		loader = ffi.DefaultLoader
	}
	return &Registry{loader: loader}
}

// Declare queues d. No symbol is resolved.
func (r *Registry) Declare(d Declaration) error {
	if d.Base == nil || d.Pointer == nil {
		return errorc.With(gerrors.ErrConfig,
			errorc.String(gerrors.FieldSymbol, d.Prefix),
			errorc.String(gerrors.FieldCause, "declaration needs a base and a pointer type"),
		)
	}
	if !d.Library.Known() {
		return errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldLibrary, string(d.Library)),
			errorc.String(gerrors.FieldCause, "unknown library name"),
		)
	}
	d.Methods = append([]MethodSpec(nil), d.Methods...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, d)
	return nil
}

// Pending returns the number of queued declarations.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Installed reports whether InstallAll has run.
func (r *Registry) Installed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installed
}

// InstallAll drains the queue and installs every queued declaration's
// entry points in order. With an empty queue it does nothing. Failures of
// single members are collected; the remaining members are still installed.
func (r *Registry) InstallAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.pending
	r.pending = nil
	r.installed = true

	var errs []error
	for i := range pending {
		if err := r.install(&pending[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) install(d *Declaration) error {
	var errs []error
	self := PointerTo(d.Pointer)

	for _, spec := range d.Methods {
		if len(spec.Args) > 0 && spec.Args[0].Equal(self) {
			if err := r.installInstance(d, spec); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if spec.OwnsResult {
			ffi.Debugf("%s%s: ownership flag ignored for static entry point", d.Prefix, spec.Name)
		}
		if err := d.Base.install(newMember(StaticMember, spec.Name, d, spec, r.loader)); err != nil {
			errs = append(errs, err)
		}
	}

	if d.Release != "" {
		spec := Method(d.Release, Void, self)
		d.Pointer.setRelease(newMember(MethodMember, d.Release, d, spec, r.loader))
	}
	return errors.Join(errs...)
}

func (r *Registry) installInstance(d *Declaration, spec MethodSpec) error {
	if cacheable(spec) {
		name := propertyName(d.Pointer, spec.Name)
		return d.Pointer.install(newMember(PropertyMember, name, d, spec, r.loader))
	}
	return d.Pointer.install(newMember(MethodMember, spec.Name, d, spec, r.loader))
}

// cacheable reports whether an instance entry point can be a cached
// property: it takes only the instance and returns a non-void,
// non-pointer value.
func cacheable(spec MethodSpec) bool {
	return len(spec.Args) == 1 && !spec.Return.IsVoid() && !spec.Return.IsPointer()
}

// propertyName strips a "get_" prefix and appends "_" when the result is
// already defined on the pointer type.
func propertyName(ptr *Type, method string) string {
	name := strings.TrimPrefix(method, "get_")
	if ptr.Defined(name) {
		name += "_"
	}
	return name
}
