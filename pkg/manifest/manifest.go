// Package manifest reads binding declarations from YAML.
//
// A manifest lists enum and flags types and the declarations of one or more
// libraries:
//
//	enums:
//	  - name: GIInfoType
//	    entries:
//	      - {name: invalid, value: 0}
//	      - {name: function, value: 1}
//	declarations:
//	  - library: girepository-1.0
//	    base: GIBaseInfo
//	    pointer: GIBaseInfoPtr
//	    prefix: g_base_info_
//	    release: unref
//	    methods:
//	      - {name: get_name, return: string, args: ["*GIBaseInfoPtr"]}
//	      - {name: get_type, return: "enum:GIInfoType", args: ["*GIBaseInfoPtr"]}
//
// Descriptors are a kind name ("void", "int32", "string", "pointer", ...),
// "*Name" for a pointer to a declared type, or "enum:Name" / "flags:Name"
// for a declared enum or flags type.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/thesyncim/libgobind/internal/ffi"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

// Manifest is the decoded form of a manifest file.
type Manifest struct {
	Enums        []Enum        `yaml:"enums"`
	Declarations []Declaration `yaml:"declarations"`
}

// Enum declares an enum or flags type.
type Enum struct {
	Name string `yaml:"name"`
	// Kind is "enum" (default) or "flags".
	Kind    string  `yaml:"kind"`
	Entries []Entry `yaml:"entries"`
	// Methods are declared but unimplemented value methods.
	Methods []string `yaml:"methods"`
}

type Entry struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

// Declaration mirrors binding.Declaration with type names instead of types.
type Declaration struct {
	Library string   `yaml:"library"`
	Base    string   `yaml:"base"`
	Pointer string   `yaml:"pointer"`
	Prefix  string   `yaml:"prefix"`
	Release string   `yaml:"release"`
	Methods []Method `yaml:"methods"`
}

type Method struct {
	Name   string   `yaml:"name"`
	Return string   `yaml:"return"`
	Args   []string `yaml:"args"`
	// Transfer is the ownership transfer of the result: "nothing"
	// (default), "container" or "everything".
	Transfer string `yaml:"transfer"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorc.With(gerrors.ErrConfig,
			errorc.String(gerrors.FieldPath, path),
			errorc.String(gerrors.FieldCause, err.Error()),
		)
	}
	return Parse(data, path)
}

// Parse decodes and validates manifest data. source names the data in errors.
func Parse(data []byte, source string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errorc.With(gerrors.ErrConfig,
			errorc.String(gerrors.FieldPath, source),
			errorc.String(gerrors.FieldCause, err.Error()),
		)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &m, nil
}

// Validate checks type names, libraries, descriptors and transfer modes.
func (m *Manifest) Validate() error {
	names := make(map[string]string)
	define := func(name, what string) error {
		if name == "" {
			return configErr(what, "missing name")
		}
		if prev, ok := names[name]; ok {
			return configErr(name, "already declared as "+prev)
		}
		names[name] = what
		return nil
	}

	for _, e := range m.Enums {
		if _, err := e.kind(); err != nil {
			return err
		}
		if err := define(e.Name, "enum"); err != nil {
			return err
		}
	}
	for _, d := range m.Declarations {
		if !ffi.LibraryName(d.Library).Known() {
			return errorc.With(gerrors.ErrLookup,
				errorc.String(gerrors.FieldLibrary, d.Library),
				errorc.String(gerrors.FieldCause, "unknown library name"),
			)
		}
		if err := define(d.Base, "type"); err != nil {
			return err
		}
		if err := define(d.Pointer, "type"); err != nil {
			return err
		}
	}

	for _, d := range m.Declarations {
		for _, meth := range d.Methods {
			if meth.Name == "" {
				return configErr(d.Prefix, "method without a name")
			}
			descs := append([]string{meth.Return}, meth.Args...)
			for _, s := range descs {
				desc, err := ParseDescriptor(s)
				if err != nil {
					return fmt.Errorf("%s%s: %w", d.Prefix, meth.Name, err)
				}
				if err := desc.check(names); err != nil {
					return fmt.Errorf("%s%s: %w", d.Prefix, meth.Name, err)
				}
			}
			if _, err := ownership.ParseTransfer(meth.Transfer); err != nil {
				return fmt.Errorf("%s%s: %w", d.Prefix, meth.Name, err)
			}
		}
	}
	return nil
}

// IsFlags reports whether e declares a flags type.
func (e Enum) IsFlags() bool {
	k, _ := e.kind()
	return k == "flags"
}

func (e Enum) kind() (string, error) {
	switch e.Kind {
	case "", "enum":
		return "enum", nil
	case "flags":
		return "flags", nil
	default:
		return "", configErr(e.Name, fmt.Sprintf("unknown enum kind %q", e.Kind))
	}
}

// Descriptor is a parsed descriptor string. At most one of Target and Enum
// is set.
type Descriptor struct {
	Kind ffi.Kind
	// Target names the pointed-to type of "*Name".
	Target string
	// Enum names the type of "enum:Name" or "flags:Name".
	Enum string
}

// ParseDescriptor parses a descriptor string. Names are not checked against
// any manifest. An empty string is void.
func ParseDescriptor(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Descriptor{Kind: ffi.Void}, nil
	case strings.HasPrefix(s, "*"):
		name := strings.TrimSpace(s[1:])
		if name == "" {
			return Descriptor{}, typeErr(s)
		}
		return Descriptor{Kind: ffi.Pointer, Target: name}, nil
	case strings.HasPrefix(s, "enum:"), strings.HasPrefix(s, "flags:"):
		kind, name, _ := strings.Cut(s, ":")
		if name == "" {
			return Descriptor{}, typeErr(s)
		}
		k := ffi.Int32
		if kind == "flags" {
			k = ffi.Uint32
		}
		return Descriptor{Kind: k, Enum: name}, nil
	case s == "opaque":
		return Descriptor{Kind: ffi.Pointer}, nil
	}
	k, err := ffi.ParseKind(s)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: k}, nil
}

func (d Descriptor) String() string {
	switch {
	case d.Target != "":
		return "*" + d.Target
	case d.Enum != "" && d.Kind == ffi.Uint32:
		return "flags:" + d.Enum
	case d.Enum != "":
		return "enum:" + d.Enum
	default:
		return d.Kind.String()
	}
}

func (d Descriptor) check(names map[string]string) error {
	switch {
	case d.Target != "":
		if names[d.Target] != "type" {
			return configErr(d.Target, "pointer to undeclared type")
		}
	case d.Enum != "":
		if names[d.Enum] != "enum" {
			return configErr(d.Enum, "undeclared enum")
		}
	}
	return nil
}

func configErr(name, cause string) error {
	return errorc.With(gerrors.ErrConfig,
		errorc.String(gerrors.FieldType, name),
		errorc.String(gerrors.FieldCause, cause),
	)
}

func typeErr(s string) error {
	return errorc.With(gerrors.ErrType,
		errorc.String(gerrors.FieldValue, s),
		errorc.String(gerrors.FieldCause, "malformed descriptor"),
	)
}
