package config

import "fmt"

// Source identifies the configuration layer a value came from.
type Source string

// Source layers, in ascending precedence.
const (
	SourceDefaults Source = "defaults"
	SourceFile     Source = "file"
	SourceEnv      Source = "env"
	SourceFlags    Source = "flags"
)

// SourceNotFoundError is returned when a config file path was given
// explicitly (flag or TRIBOFERRIN_CONFIG) but no file exists there.
// A missing file at the default path is not an error.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// ParseError is returned when a source's raw content cannot be decoded
// into the target field's type, or cannot be parsed at all.
type ParseError struct {
	Source Source // layer that produced the raw value
	Field  string // config key, when it could be determined
	Value  string // raw value, when known
	Err    error
}

func (e *ParseError) Error() string {
	msg := string(e.Source)
	if e.Field != "" {
		msg += fmt.Sprintf(": cannot parse %q", e.Field)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (raw value %q)", e.Value)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is returned when a successfully parsed value violates
// a domain invariant on the merged configuration.
type ValidationError struct {
	Field      string
	Value      any
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %q = %v: %s", e.Field, e.Value, e.Constraint)
}
