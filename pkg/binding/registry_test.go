package binding

import (
	"errors"
	"testing"

	"github.com/thesyncim/libgobind/internal/testutil"
	gerrors "github.com/thesyncim/libgobind/pkg/errors"
	"github.com/thesyncim/libgobind/pkg/ownership"
)

func TestInstallAllDrainsOnce(t *testing.T) {
	lib := testutil.NewLibrary(GObject)
	loader := testutil.NewLoader(lib)
	reg := NewRegistry(loader)

	if reg.Installed() {
		t.Fatal("new registry reports installed")
	}
	if err := reg.InstallAll(); err != nil {
		t.Fatalf("InstallAll on empty registry: %v", err)
	}

	ptr := NewType("GObjectPtr")
	err := reg.Declare(Declaration{
		Library: GObject,
		Base:    NewType("GObject"),
		Pointer: ptr,
		Prefix:  "g_object_",
		Methods: []MethodSpec{Method("ref", PointerTo(ptr), PointerTo(ptr))},
	})
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if reg.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", reg.Pending())
	}

	for i := 0; i < 3; i++ {
		if err := reg.InstallAll(); err != nil {
			t.Fatalf("InstallAll #%d: %v", i, err)
		}
	}
	if reg.Pending() != 0 || !reg.Installed() {
		t.Errorf("after InstallAll: pending=%d installed=%v", reg.Pending(), reg.Installed())
	}
	if got := ptr.Members(); len(got) != 1 || got[0] != "ref" {
		t.Errorf("members = %v, want [ref]", got)
	}
	if loader.Resolves() != 0 {
		t.Errorf("installation resolved %d libraries", loader.Resolves())
	}
}

func TestInstallAllLateDeclarations(t *testing.T) {
	reg := NewRegistry(testutil.NewLoader())
	if err := reg.InstallAll(); err != nil {
		t.Fatal(err)
	}

	ptr := NewType("GValuePtr")
	_ = reg.Declare(Declaration{
		Library: GObject,
		Base:    NewType("GValue"),
		Pointer: ptr,
		Prefix:  "g_value_",
		Methods: []MethodSpec{Method("get_int", Int32, PointerTo(ptr))},
	})
	if err := reg.InstallAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok := ptr.Member("int"); !ok {
		t.Errorf("late declaration not installed: %v", ptr.Members())
	}
}

func TestDeclareRejectsIncompleteDeclarations(t *testing.T) {
	reg := NewRegistry(testutil.NewLoader())

	if err := reg.Declare(Declaration{Library: GObject, Base: NewType("A")}); !errors.Is(err, gerrors.ErrConfig) {
		t.Errorf("missing pointer type error = %v, want ErrConfig", err)
	}
	err := reg.Declare(Declaration{Library: "gtk-3.0", Base: NewType("A"), Pointer: NewType("APtr")})
	if !errors.Is(err, gerrors.ErrLookup) {
		t.Errorf("unknown library error = %v, want ErrLookup", err)
	}
	if reg.Pending() != 0 {
		t.Errorf("rejected declarations were queued")
	}
}

func TestDeclareCopiesMethods(t *testing.T) {
	reg := NewRegistry(testutil.NewLoader())
	ptr := NewType("GListPtr")
	methods := []MethodSpec{Method("length", Uint32, PointerTo(ptr))}
	_ = reg.Declare(Declaration{Library: GLib, Base: NewType("GList"), Pointer: ptr, Prefix: "g_list_", Methods: methods})

	methods[0].Name = "changed"
	if err := reg.InstallAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok := ptr.Member("length"); !ok {
		t.Errorf("members = %v, want length", ptr.Members())
	}
}

func TestDuplicateMembers(t *testing.T) {
	reg := NewRegistry(testutil.NewLoader())
	ptr := NewType("GIFieldInfoPtr")
	self := PointerTo(ptr)
	_ = reg.Declare(Declaration{
		Library: GIRepository,
		Base:    NewType("GIFieldInfo"),
		Pointer: ptr,
		Prefix:  "g_field_info_",
		Methods: []MethodSpec{
			Method("get_size", Int32, self),
			// "size" is taken by the property above, so this becomes "size_".
			Method("size", Int32, self),
			Method("get_offset", Int32, self),
			Method("get_offset", Int32, self),
			Method("set_offset", Void, self, Int32),
			Method("set_offset", Void, self, Int32),
			Method("get_flags", Int32, self),
		},
	})

	err := reg.InstallAll()
	if !errors.Is(err, gerrors.ErrDuplicateMember) {
		t.Fatalf("InstallAll error = %v, want ErrDuplicateMember", err)
	}
	for _, name := range []string{"size", "size_", "offset", "offset_", "set_offset", "flags"} {
		if _, ok := ptr.Member(name); !ok {
			t.Errorf("member %q not installed (members %v)", name, ptr.Members())
		}
	}
}

func TestReentrantResolution(t *testing.T) {
	lib := testutil.NewLibrary(GIRepository).
		Define("g_base_info_get_name", func(p uintptr) string { return "GObject" })

	ptr := NewType("GIBaseInfoPtr")
	obj := ptr.New(infoAddr, ownership.Borrowed)

	var innerErr error
	loader := LoaderFunc(func(name LibraryName) (Library, error) {
		_, innerErr = obj.Get("name")
		return lib, nil
	})
	reg := NewRegistry(loader)
	_ = reg.Declare(Declaration{
		Library: GIRepository,
		Base:    NewType("GIBaseInfo"),
		Pointer: ptr,
		Prefix:  "g_base_info_",
		Methods: []MethodSpec{Method("get_name", String, PointerTo(ptr))},
	})
	if err := reg.InstallAll(); err != nil {
		t.Fatal(err)
	}

	name, err := obj.Get("name")
	if err != nil || name != "GObject" {
		t.Fatalf("Get(name) = %v, %v", name, err)
	}
	if !errors.Is(innerErr, gerrors.ErrResolving) {
		t.Errorf("re-entrant Get error = %v, want ErrResolving", innerErr)
	}
}

func TestMethodSpecHelpers(t *testing.T) {
	ptr := NewType("GIBaseInfoPtr")
	spec := Method("ref", PointerTo(ptr), PointerTo(ptr))
	if spec.OwnsResult {
		t.Fatal("Method() should not transfer ownership")
	}
	owned := spec.Owned()
	if !owned.OwnsResult || spec.OwnsResult {
		t.Errorf("Owned() = %v, original = %v", owned.OwnsResult, spec.OwnsResult)
	}
	if !cacheable(Method("get_name", String, PointerTo(ptr))) {
		t.Error("string getter should be cacheable")
	}
	if cacheable(Method("get_info", Opaque, PointerTo(ptr))) {
		t.Error("pointer getter should not be cacheable")
	}
	if cacheable(Method("ref_sink", Void, PointerTo(ptr))) {
		t.Error("void method should not be cacheable")
	}
}

func TestDescriptors(t *testing.T) {
	a := NewType("A")
	if !PointerTo(a).Equal(PointerTo(a)) {
		t.Error("PointerTo(a) != PointerTo(a)")
	}
	if PointerTo(a).Equal(PointerTo(NewType("A"))) {
		t.Error("pointers to distinct types compare equal")
	}
	if PointerTo(a).Equal(Opaque) || !Scalar(Opaque.Kind()).Equal(Opaque) {
		t.Error("opaque descriptor mismatch")
	}
	if s := PointerTo(a).String(); s != "*A" {
		t.Errorf("String() = %q", s)
	}
	if String.IsPointer() || !Opaque.IsPointer() || !Void.IsVoid() {
		t.Error("pointer/void classification wrong")
	}
}
