package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("manifest parse error")

	// ErrKeyNotFound is returned when a profile does not exist.
	ErrKeyNotFound = errors.New("key not found")
)

// ParseError reports a manifest document that could not be turned into a
// Manifest.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return "parse manifest: " + e.Err.Error()
	}
	return fmt.Sprintf("parse manifest %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MissingFieldError reports a mandatory field absent from the document.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// FormatError reports a field whose value has the wrong shape.
type FormatError struct {
	Field string
	Line  int
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%q (line %d): %s", e.Field, e.Line, e.Msg)
	}
	return fmt.Sprintf("%q: %s", e.Field, e.Msg)
}

// UnknownKeyError reports a key that is not part of a profile.
type UnknownKeyError struct {
	Profile string
	Key     string
	Line    int
}

func (e *UnknownKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("profile %q: unknown key %q (line %d)", e.Profile, e.Key, e.Line)
	}
	return fmt.Sprintf("profile %q: unknown key %q", e.Profile, e.Key)
}
