// Package pkgconfig provides a small abstraction for reading configuration values.
//
// Values come from a YAML file and can be overridden by environment variables
// prefixed with GOANALYZER_ (dots in keys become underscores, so
// history.dsn is GOANALYZER_HISTORY_DSN). Business code depends on the Config
// interface and does not care where values come from.
package pkgconfig
