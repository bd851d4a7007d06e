// Package testutil provides in-memory native libraries for libgobind tests.
package testutil

import (
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/thesyncim/libgobind/internal/ffi"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// Library is a fake ffi.Library whose symbols are Go funcs. It counts how
// often each symbol is bound and called.
type Library struct {
	name ffi.LibraryName

	mu    sync.Mutex
	funcs map[string]any
	binds map[string]int
	calls map[string]int
}

// NewLibrary returns an empty fake library.
func NewLibrary(name ffi.LibraryName) *Library {
	return &Library{
		name:  name,
		funcs: make(map[string]any),
		binds: make(map[string]int),
		calls: make(map[string]int),
	}
}

// Define registers fn under symbol. fn's type must match the signature the
// symbol is later bound with; string arguments arrive as *byte.
func (l *Library) Define(symbol string, fn any) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funcs[symbol] = fn
	return l
}

func (l *Library) Name() ffi.LibraryName { return l.name }

func (l *Library) Bind(symbol string, sig ffi.Signature) (ffi.Func, error) {
	l.mu.Lock()
	fn, ok := l.funcs[symbol]
	l.binds[symbol]++
	l.mu.Unlock()

	if !ok {
		return nil, errorc.With(gerrors.ErrLookup,
			errorc.String(gerrors.FieldLibrary, string(l.name)),
			errorc.String(gerrors.FieldSymbol, symbol),
		)
	}
	call, err := ffi.MakeFunc(sig, fn)
	if err != nil {
		return nil, err
	}
	return func(args ...any) (any, error) {
		l.mu.Lock()
		l.calls[symbol]++
		l.mu.Unlock()
		return call(args...)
	}, nil
}

// Binds returns how many times symbol was bound.
func (l *Library) Binds(symbol string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.binds[symbol]
}

// Calls returns how many times symbol was called.
func (l *Library) Calls(symbol string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[symbol]
}

// Loader serves fake libraries by name and counts resolutions.
type Loader struct {
	mu       sync.Mutex
	libs     map[ffi.LibraryName]ffi.Library
	resolves int
}

// NewLoader returns a Loader serving libs.
func NewLoader(libs ...*Library) *Loader {
	l := &Loader{libs: make(map[ffi.LibraryName]ffi.Library)}
	for _, lib := range libs {
		l.libs[lib.Name()] = lib
	}
	return l
}

func (l *Loader) Resolve(name ffi.LibraryName) (ffi.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolves++
	lib, ok := l.libs[name]
	if !ok {
		return nil, errorc.With(gerrors.ErrLookup, errorc.String(gerrors.FieldLibrary, string(name)))
	}
	return lib, nil
}

// Resolves returns the number of Resolve calls.
func (l *Loader) Resolves() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolves
}
