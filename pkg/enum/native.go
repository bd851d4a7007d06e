package enum

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/ygrebnov/errorc"

	"github.com/thesyncim/libgobind/internal/ffi"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// gEnumValue mirrors GEnumValue and GFlagsValue; both start with a 32-bit
// value followed by the name and nick strings.
type gEnumValue struct {
	value int32
	name  uintptr
	nick  uintptr
}

var (
	sigClassRef   = ffi.Signature{Return: ffi.Pointer, Args: []ffi.Kind{ffi.Uint64}}
	sigEnumValue  = ffi.Signature{Return: ffi.Pointer, Args: []ffi.Kind{ffi.Pointer, ffi.Int32}}
	sigFlagsValue = ffi.Signature{Return: ffi.Pointer, Args: []ffi.Kind{ffi.Pointer, ffi.Uint32}}
)

// ClassMetadata looks value names up in the runtime class structure of a
// registered GType through gobject-2.0.
type ClassMetadata struct {
	gtype  uint64
	loader ffi.Loader

	once       sync.Once
	err        error
	classRef   ffi.Func
	enumValue  ffi.Func
	flagsValue ffi.Func
}

// NewClassMetadata returns metadata for gtype resolved through loader
// (ffi.DefaultLoader when nil).
func NewClassMetadata(gtype uint64, loader ffi.Loader) *ClassMetadata {
	if loader == nil {
		loader = ffi.DefaultLoader
	}
	return &ClassMetadata{gtype: gtype, loader: loader}
}

// GType returns the type id the metadata was created for.
func (m *ClassMetadata) GType() uint64 { return m.gtype }

func (m *ClassMetadata) bind() error {
	m.once.Do(func() {
		lib, err := m.loader.Resolve(ffi.GObject)
		if err != nil {
			m.err = err
			return
		}
		if m.classRef, m.err = lib.Bind("g_type_class_ref", sigClassRef); m.err != nil {
			return
		}
		if m.enumValue, m.err = lib.Bind("g_enum_get_value", sigEnumValue); m.err != nil {
			return
		}
		m.flagsValue, m.err = lib.Bind("g_flags_get_first_value", sigFlagsValue)
	})
	return m.err
}

// LookupValue implements Metadata. The class reference taken here is kept
// for the process lifetime.
func (m *ClassMetadata) LookupValue(kind Kind, value int64) (Names, error) {
	if err := m.bind(); err != nil {
		return Names{}, err
	}

	klass, err := m.classRef(m.gtype)
	if err != nil {
		return Names{}, err
	}

	var res any
	if kind == KindFlags {
		res, err = m.flagsValue(klass, uint32(value))
	} else {
		res, err = m.enumValue(klass, int32(value))
	}
	if err != nil {
		return Names{}, err
	}

	addr, _ := res.(uintptr)
	if addr == 0 {
		return Names{}, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldType, kind.String()),
			errorc.String(gerrors.FieldValue, strconv.FormatInt(value, 10)),
		)
	}
	ev := (*gEnumValue)(unsafe.Pointer(addr))
	return Names{Name: ffi.GoString(ev.name), Nick: ffi.GoString(ev.nick)}, nil
}
