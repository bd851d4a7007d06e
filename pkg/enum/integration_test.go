package enum

import (
	"testing"

	"github.com/thesyncim/libgobind/internal/ffi"
)

// nativeGType calls a *_get_type function of the installed gobject-2.0 and
// skips the test when the library or the symbol is missing.
func nativeGType(t *testing.T, symbol string) uint64 {
	t.Helper()
	lib, err := ffi.Resolve(ffi.GObject)
	if err != nil {
		t.Skipf("gobject not available: %v", err)
	}
	getType, err := lib.Bind(symbol, ffi.Signature{Return: ffi.Uint64})
	if err != nil {
		t.Skipf("%s not available: %v", symbol, err)
	}
	res, err := getType()
	if err != nil {
		t.Fatalf("%s: %v", symbol, err)
	}
	return res.(uint64)
}

func TestNativeFlagsMetadata(t *testing.T) {
	meta := NewClassMetadata(nativeGType(t, "g_binding_flags_get_type"), nil)

	names, err := meta.LookupValue(KindFlags, 1)
	if err != nil {
		t.Fatalf("LookupValue: %v", err)
	}
	if names.Name != "G_BINDING_BIDIRECTIONAL" || names.Nick != "bidirectional" {
		t.Errorf("LookupValue(1) = %+v", names)
	}

	flags := NewFlags("GBindingFlags", []Entry{{0, "default"}, {1, "bidirectional"}, {2, "sync_create"}}, meta)
	nick, err := flags.MustMember("SYNC_CREATE").FirstValueNick()
	if err != nil || nick != "sync-create" {
		t.Errorf("FirstValueNick() = %q, %v", nick, err)
	}
}

func TestNativeEnumMetadata(t *testing.T) {
	meta := NewClassMetadata(nativeGType(t, "g_unicode_type_get_type"), nil)

	names, err := meta.LookupValue(KindEnum, 0)
	if err != nil {
		t.Fatalf("LookupValue: %v", err)
	}
	if names.Name != "G_UNICODE_CONTROL" || names.Nick != "control" {
		t.Errorf("LookupValue(0) = %+v", names)
	}
	if _, err := meta.LookupValue(KindEnum, 10000); err == nil {
		t.Error("LookupValue for an unknown value succeeded")
	}
}
