// Package hoisterrors provides structured, errors.Is/errors.As-friendly
// error types for the kinds of failure hoist.Run can actually produce
// (§7 of the design): a parse failure or an I/O failure during on-demand
// discriminator-mapping file loading. Every other condition the engine
// encounters — unresolved references, malformed schema content, missing
// files — is a soft failure and is never represented as an error.
package hoisterrors

import "errors"

// Sentinel errors for use with errors.Is.
var (
	// ErrParse indicates a file loaded on demand could not be parsed as
	// YAML or JSON.
	ErrParse = errors.New("parse error")

	// ErrIO indicates a directory-scan failure during the
	// discriminator-mapping resolver's fallback basename search, or a
	// read failure on a file it loads on demand.
	ErrIO = errors.New("io error")
)

// ParseError represents a failure to parse a file loaded on demand by the
// discriminator-mapping resolver.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Message describes the parsing failure.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IOError represents a failure to scan the working directory during the
// discriminator-mapping resolver's fallback basename search, or to read a
// file it loads on demand.
type IOError struct {
	// Path is the file or directory involved.
	Path string
	// Message describes the failure.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *IOError) Error() string {
	msg := "io error"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *IOError) Unwrap() error { return e.Cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewParseError wraps cause as a *ParseError for path.
func NewParseError(path, message string, cause error) error {
	return &ParseError{Path: path, Message: message, Cause: cause}
}

// NewIOError wraps cause as an *IOError for path.
func NewIOError(path, message string, cause error) error {
	return &IOError{Path: path, Message: message, Cause: cause}
}
