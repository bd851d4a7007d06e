package main

import (
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/thesyncim/libgobind/internal/ffi"
	"github.com/thesyncim/libgobind/pkg/manifest"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

const (
	bindingPath = "github.com/thesyncim/libgobind/pkg/binding"
	enumPath    = "github.com/thesyncim/libgobind/pkg/enum"
)

// kindIdents names the binding descriptor variable of each scalar kind.
var kindIdents = map[ffi.Kind]string{
	ffi.Void:    "Void",
	ffi.Bool:    "Bool",
	ffi.Int8:    "Int8",
	ffi.Int16:   "Int16",
	ffi.Int32:   "Int32",
	ffi.Int64:   "Int64",
	ffi.Uint8:   "Uint8",
	ffi.Uint16:  "Uint16",
	ffi.Uint32:  "Uint32",
	ffi.Uint64:  "Uint64",
	ffi.Float32: "Float32",
	ffi.Float64: "Float64",
	ffi.String:  "String",
	ffi.Pointer: "Opaque",
}

var libraryIdents = map[ffi.LibraryName]string{
	ffi.GLib:         "GLib",
	ffi.GObject:      "GObject",
	ffi.GIRepository: "GIRepository",
}

// generate renders m as Go source in package pkg: one variable per enum and
// exposed type, and a Declare function queueing every declaration on a
// Registry. m must be valid.
func generate(m *manifest.Manifest, pkg, source string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by gobind-gen from " + source + ". DO NOT EDIT.")
	f.ImportName(bindingPath, "binding")
	f.ImportName(enumPath, "enum")

	if len(m.Enums) > 0 {
		f.Var().DefsFunc(func(g *jen.Group) {
			for _, e := range m.Enums {
				g.Id(goIdent(e.Name)).Op("=").Add(enumExpr(e))
			}
		})
	}
	if len(m.Declarations) > 0 {
		f.Var().DefsFunc(func(g *jen.Group) {
			for _, d := range m.Declarations {
				g.Id(goIdent(d.Base)).Op("=").Qual(bindingPath, "NewType").Call(jen.Lit(d.Base))
				g.Id(goIdent(d.Pointer)).Op("=").Qual(bindingPath, "NewType").Call(jen.Lit(d.Pointer))
			}
		})
	}

	f.Comment("Declare queues the declarations of " + source + " on reg.")
	f.Func().Id("Declare").
		Params(jen.Id("reg").Op("*").Qual(bindingPath, "Registry")).
		Error().
		Block(jen.Return(jen.Qual("errors", "Join").CallFunc(func(g *jen.Group) {
			for _, d := range m.Declarations {
				g.Line().Id("reg").Dot("Declare").Call(declarationExpr(d))
			}
			g.Line()
		})))
	return f
}

func enumExpr(e manifest.Enum) jen.Code {
	ctor := "NewEnum"
	if e.IsFlags() {
		ctor = "NewFlags"
	}
	entries := jen.Index().Qual(enumPath, "Entry").ValuesFunc(func(g *jen.Group) {
		for _, en := range e.Entries {
			g.Line().Values(jen.Dict{
				jen.Id("Name"):  jen.Lit(en.Name),
				jen.Id("Value"): jen.Lit(int(en.Value)),
			})
		}
		g.Line()
	})
	args := []jen.Code{jen.Lit(e.Name), entries, jen.Nil()}
	if len(e.Methods) > 0 {
		methods := make([]jen.Code, len(e.Methods))
		for i, name := range e.Methods {
			methods[i] = jen.Lit(name)
		}
		args = append(args, jen.Qual(enumPath, "WithMethods").Call(methods...))
	}
	return jen.Qual(enumPath, ctor).Call(args...)
}

func declarationExpr(d manifest.Declaration) jen.Code {
	dict := jen.Dict{
		jen.Id("Library"): jen.Qual(bindingPath, libraryIdents[ffi.LibraryName(d.Library)]),
		jen.Id("Base"):    jen.Id(goIdent(d.Base)),
		jen.Id("Pointer"): jen.Id(goIdent(d.Pointer)),
		jen.Id("Prefix"):  jen.Lit(d.Prefix),
	}
	if d.Release != "" {
		dict[jen.Id("Release")] = jen.Lit(d.Release)
	}
	if len(d.Methods) > 0 {
		dict[jen.Id("Methods")] = jen.Index().Qual(bindingPath, "MethodSpec").ValuesFunc(func(g *jen.Group) {
			for _, meth := range d.Methods {
				g.Line().Add(methodExpr(meth))
			}
			g.Line()
		})
	}
	return jen.Qual(bindingPath, "Declaration").Values(dict)
}

func methodExpr(meth manifest.Method) jen.Code {
	args := []jen.Code{jen.Lit(meth.Name), descExpr(meth.Return)}
	for _, a := range meth.Args {
		args = append(args, descExpr(a))
	}
	call := jen.Qual(bindingPath, "Method").Call(args...)
	if t, _ := ownership.ParseTransfer(meth.Transfer); t.OwnsResult() {
		call = call.Dot("Owned").Call()
	}
	return call
}

func descExpr(s string) jen.Code {
	d, _ := manifest.ParseDescriptor(s)
	switch {
	case d.Target != "":
		return jen.Qual(bindingPath, "PointerTo").Call(jen.Id(goIdent(d.Target)))
	case d.Enum != "":
		return jen.Qual(bindingPath, "EnumOf").Call(jen.Id(goIdent(d.Enum)))
	default:
		return jen.Qual(bindingPath, kindIdents[d.Kind])
	}
}

// goIdent turns a type name into an exported Go identifier.
func goIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			if i == 0 {
				r = unicode.ToUpper(r)
			}
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('T')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
