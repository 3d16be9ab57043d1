// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, logs panics
// so that background work does not crash the process silently, and runs
// periodic housekeeping loops that stop with their context.
package pkgroutine
