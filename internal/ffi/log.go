package ffi

import (
	"log"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// SetDebug turns debug logging on or off.
func SetDebug(on bool) { debugEnabled.Store(on) }

// DebugEnabled reports whether debug logging is on.
func DebugEnabled() bool { return debugEnabled.Load() }

// Debugf logs through the standard logger when debug logging is on.
func Debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf("[libgobind] "+format, args...)
}
