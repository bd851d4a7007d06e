package manifest

import (
	"errors"

	"github.com/ygrebnov/errorc"

	"github.com/thesyncim/libgobind/internal/ffi"
	"github.com/thesyncim/libgobind/pkg/binding"
	"github.com/thesyncim/libgobind/pkg/enum"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

// MetadataFunc returns the display-name source of an enum or flags type,
// or nil when the type has none.
type MetadataFunc func(name string) enum.Metadata

// Set holds the types a manifest created.
type Set struct {
	types map[string]*binding.Type
	enums map[string]*enum.Type
}

// Type returns an exposed type by name.
func (s *Set) Type(name string) (*binding.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Enum returns an enum or flags type by name.
func (s *Set) Enum(name string) (*enum.Type, bool) {
	t, ok := s.enums[name]
	return t, ok
}

// Apply creates the manifest's types and queues its declarations on reg.
// meta may be nil. Nothing is installed; call reg.InstallAll afterwards.
func (m *Manifest) Apply(reg *binding.Registry, meta MetadataFunc) (*Set, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	set := &Set{
		types: make(map[string]*binding.Type),
		enums: make(map[string]*enum.Type),
	}

	for _, e := range m.Enums {
		var md enum.Metadata
		if meta != nil {
			md = meta(e.Name)
		}
		entries := make([]enum.Entry, len(e.Entries))
		for i, en := range e.Entries {
			entries[i] = enum.Entry{Name: en.Name, Value: en.Value}
		}
		var opts []enum.Option
		if len(e.Methods) > 0 {
			opts = append(opts, enum.WithMethods(e.Methods...))
		}
		if e.IsFlags() {
			set.enums[e.Name] = enum.NewFlags(e.Name, entries, md, opts...)
		} else {
			set.enums[e.Name] = enum.NewEnum(e.Name, entries, md, opts...)
		}
	}
	for _, d := range m.Declarations {
		set.types[d.Base] = binding.NewType(d.Base)
		set.types[d.Pointer] = binding.NewType(d.Pointer)
	}

	var errs []error
	for _, d := range m.Declarations {
		decl, err := set.declaration(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := reg.Declare(decl); err != nil {
			errs = append(errs, err)
		}
	}
	return set, errors.Join(errs...)
}

func (s *Set) declaration(d Declaration) (binding.Declaration, error) {
	decl := binding.Declaration{
		Library: ffi.LibraryName(d.Library),
		Base:    s.types[d.Base],
		Pointer: s.types[d.Pointer],
		Prefix:  d.Prefix,
		Release: d.Release,
		Methods: make([]binding.MethodSpec, 0, len(d.Methods)),
	}
	for _, meth := range d.Methods {
		ret, err := s.desc(meth.Return)
		if err != nil {
			return decl, err
		}
		args := make([]binding.Desc, len(meth.Args))
		for i, a := range meth.Args {
			if args[i], err = s.desc(a); err != nil {
				return decl, err
			}
		}
		transfer, err := ownership.ParseTransfer(meth.Transfer)
		if err != nil {
			return decl, err
		}
		spec := binding.Method(meth.Name, ret, args...)
		spec.OwnsResult = transfer.OwnsResult()
		decl.Methods = append(decl.Methods, spec)
	}
	return decl, nil
}

// Desc resolves a descriptor string against the set's types.
func (s *Set) Desc(str string) (binding.Desc, error) { return s.desc(str) }

func (s *Set) desc(str string) (binding.Desc, error) {
	d, err := ParseDescriptor(str)
	if err != nil {
		return binding.Void, err
	}
	switch {
	case d.Target != "":
		t, ok := s.types[d.Target]
		if !ok {
			return binding.Void, lookupErr(d.Target)
		}
		return binding.PointerTo(t), nil
	case d.Enum != "":
		t, ok := s.enums[d.Enum]
		if !ok {
			return binding.Void, lookupErr(d.Enum)
		}
		return binding.EnumOf(t), nil
	default:
		return binding.Scalar(d.Kind), nil
	}
}

func lookupErr(name string) error {
	return errorc.With(gerrors.ErrLookup,
		errorc.String(gerrors.FieldType, name),
	)
}
