package utils

import (
	"log"
	"runtime/debug"
)

// GoSafe runs fn in a new goroutine and recovers panics so a single bad task
// cannot take down the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
