package pkguid

// StringID generates unique string identifiers.
type StringID interface {
	// Generate generates a unique identifier as a string.
	Generate() string
}

// Static always returns the same value. It is meant for tests and for
// callers that need a predictable id.
type Static string

// Generate returns the static value.
func (s Static) Generate() string {
	return string(s)
}
