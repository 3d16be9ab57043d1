// Package pkgvalidator validates request structs using `validate` struct tags.
//
// Violations are returned as pkgerror validation errors so the router maps
// them to 422 responses with a readable detail message.
package pkgvalidator
