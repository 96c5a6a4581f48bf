// Package safego starts goroutines whose panics are written to the application log.
package safego

import (
	"log"
	"runtime/debug"
	"sync"
)

// Go runs fn on a new goroutine. The curses UI owns the terminal and swallows anything
// printed to stdout/stderr, so a panic is first captured in logger together with its
// stack and then re-raised to crash the process as usual.
func Go(logger *log.Logger, name string, fn func()) {
	go func() {
		if r := capture(logger, name, fn); r != nil {
			panic(r)
		}
	}()
}

// GoWG is Go bracketed by wg.Add(1) and wg.Done().
func GoWG(wg *sync.WaitGroup, logger *log.Logger, name string, fn func()) {
	wg.Add(1)
	Go(logger, name, func() {
		defer wg.Done()
		fn()
	})
}

// capture runs fn and returns the recovered panic value, if any, after logging it.
func capture(logger *log.Logger, name string, fn func()) (recovered any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
			recovered = r
		}
	}()
	fn()
	return nil
}
