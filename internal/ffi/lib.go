// Package ffi resolves logical library names to loaded native libraries and
// binds their symbols to typed Go calls.
// It supports purego (default), CGO (linux) and x/sys/windows dlopen backends
// via build tags; calls always go through purego.RegisterFunc.
package ffi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ygrebnov/errorc"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// LibraryName is a stable identifier used instead of a platform-specific
// shared library filename.
type LibraryName string

// Recognized libraries. Adding a backing library means extending this list
// and libraryFiles; configuration can only redirect the file that is opened.
const (
	GLib         LibraryName = "glib-2.0"
	GObject      LibraryName = "gobject-2.0"
	GIRepository LibraryName = "girepository-1.0"
)

// Libraries returns the recognized library names in a fixed order.
func Libraries() []LibraryName {
	return []LibraryName{GLib, GObject, GIRepository}
}

// Known reports whether name is a recognized library.
func (n LibraryName) Known() bool {
	_, ok := libraryFiles[n]
	return ok
}

func (n LibraryName) String() string { return string(n) }

type platformFiles struct {
	linux, darwin, windows string
}

var libraryFiles = map[LibraryName]platformFiles{
	GLib:         {"libglib-2.0.so.0", "libglib-2.0.0.dylib", "libglib-2.0-0.dll"},
	GObject:      {"libgobject-2.0.so.0", "libgobject-2.0.0.dylib", "libgobject-2.0-0.dll"},
	GIRepository: {"libgirepository-1.0.so.1", "libgirepository-1.0.1.dylib", "libgirepository-1.0-1.dll"},
}

func getLibraryFileFor(name LibraryName, goos string) string {
	files := libraryFiles[name]
	switch goos {
	case "darwin":
		return files.darwin
	case "windows":
		return files.windows
	default:
		return files.linux
	}
}

// errUnknownLibrary builds the lookup error for an unrecognized name.
func errUnknownLibrary(name LibraryName) error {
	return errorc.With(gerrors.ErrLookup,
		errorc.String(gerrors.FieldLibrary, string(name)),
		errorc.String(gerrors.FieldCause, "unknown library name"),
	)
}

// Loader resolves library names to loaded libraries. *Resolver implements it.
type Loader interface {
	Resolve(name LibraryName) (Library, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(name LibraryName) (Library, error)

// Resolve calls f(name).
func (f LoaderFunc) Resolve(name LibraryName) (Library, error) { return f(name) }

// Resolver loads each recognized library at most once and hands out the
// same Library for every later request. Libraries are never unloaded.
type Resolver struct {
	mu     sync.Mutex
	config *Config
	libs   map[LibraryName]*dynamicLibrary
	open   func(path string) (uintptr, error)
	sym    func(handle uintptr, symbol string) (uintptr, error)
}

// NewResolver returns a Resolver using cfg for path overrides. A nil cfg
// means no overrides.
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Resolver{
		config: cfg,
		libs:   make(map[LibraryName]*dynamicLibrary),
		open: func(path string) (uintptr, error) {
			return dlopenLibrary(path, RTLD_NOW|RTLD_GLOBAL)
		},
		sym: dlsymLibrary,
	}
}

// Resolve returns the loaded library for name, loading it on first use.
func (r *Resolver) Resolve(name LibraryName) (Library, error) {
	if !name.Known() {
		return nil, errUnknownLibrary(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if lib, ok := r.libs[name]; ok {
		return lib, nil
	}

	var errs []error
	for _, path := range r.searchPaths(name) {
		handle, err := r.open(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		Debugf("loaded %s from %s", name, path)
		lib := &dynamicLibrary{name: name, path: path, handle: handle, sym: r.sym}
		r.libs[name] = lib
		return lib, nil
	}

	return nil, errorc.With(gerrors.ErrLookup,
		errorc.String(gerrors.FieldLibrary, string(name)),
		errorc.String(gerrors.FieldCause, errors.Join(errs...).Error()),
	)
}

// searchPaths lists candidate files for name. An override is used alone;
// otherwise the platform filename is tried bare (system search path) and
// in a few well-known prefixes.
func (r *Resolver) searchPaths(name LibraryName) []string {
	if path, ok := r.config.LibraryPath(name); ok {
		return []string{path}
	}

	file := getLibraryFileFor(name, runtime.GOOS)
	paths := []string{file}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			filepath.Join("/opt/homebrew/lib", file),
			filepath.Join("/usr/local/lib", file),
		)
	case "windows":
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), file))
		}
	}
	return paths
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
	defaultErr      error
)

// DefaultResolver returns the process-wide Resolver configured from the
// environment (see ConfigFromEnv).
func DefaultResolver() (*Resolver, error) {
	defaultOnce.Do(func() {
		cfg, err := ConfigFromEnv()
		if err != nil {
			defaultErr = err
			return
		}
		SetDebug(cfg.Debug)
		defaultResolver = NewResolver(cfg)
	})
	return defaultResolver, defaultErr
}

// DefaultLoader resolves through the process-wide Resolver.
var DefaultLoader Loader = LoaderFunc(Resolve)

// Resolve resolves name with the process-wide Resolver.
func Resolve(name LibraryName) (Library, error) {
	r, err := DefaultResolver()
	if err != nil {
		return nil, err
	}
	return r.Resolve(name)
}
