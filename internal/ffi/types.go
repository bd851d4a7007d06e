package ffi

import "unsafe"

// GoString copies a NUL-terminated C string at ptr into a Go string.
// Returns "" for NULL.
func GoString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// CString allocates a NUL-terminated copy of s. Bound functions use it for
// String arguments. The caller keeps the returned slice alive for as long
// as the C code needs it.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	b[len(s)] = 0
	return b
}
