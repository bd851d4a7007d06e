//go:build windows

package ffi

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// RTLD flags are not used on Windows but are defined for compatibility.
const (
	RTLD_NOW    = 0
	RTLD_GLOBAL = 0
)

func dlopenLibrary(path string, flags int) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, fmt.Errorf("LoadLibrary(%s) failed: %w", path, err)
	}
	return uintptr(handle), nil
}

func dlsymLibrary(handle uintptr, name string) (uintptr, error) {
	addr, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, fmt.Errorf("GetProcAddress(%s) failed: %w", name, err)
	}
	return addr, nil
}
