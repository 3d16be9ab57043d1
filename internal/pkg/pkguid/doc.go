// Package pkguid provides helpers for generating unique identifiers.
//
// Callers depend on the StringID interface instead of a concrete strategy so
// tests can plug in deterministic generators. Dataset ids and request
// correlation ids are both produced here.
package pkguid
