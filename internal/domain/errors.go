package domain

import (
	"errors"
	"fmt"
)

// Reasons carried by ValidationError.
var (
	ErrOutOfRange     = errors.New("out of range")
	ErrNotANumber     = errors.New("not a number")
	ErrDuplicate      = errors.New("duplicate")
	ErrUnknownZone    = errors.New("unknown zone")
	ErrEmptySelection = errors.New("nothing selected")
	ErrWrongPhase     = errors.New("not allowed in current phase")
	ErrNotAssigned    = errors.New("package is not assigned")
	ErrNothingLoaded  = errors.New("no package is assigned")
)

// ValidationError rejects an intent before any state changes.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// LoadError reports that persisted state could not be read.
// The organizer keeps running with default values.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("load state: %v", e.Err)
	}
	return fmt.Sprintf("load state: key %q: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveErrorKind distinguishes storage write failures.
type SaveErrorKind int

const (
	SaveOther SaveErrorKind = iota
	SaveQuotaExceeded
)

func (k SaveErrorKind) String() string {
	if k == SaveQuotaExceeded {
		return "quota_exceeded"
	}
	return "other"
}

// SaveError reports that state could not be written. In-memory state stays correct.
type SaveError struct {
	Kind SaveErrorKind
	Key  string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save state (%s): key %q: %v", e.Kind, e.Key, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ImportErrorKind distinguishes import failures.
type ImportErrorKind int

const (
	ImportParseFailure ImportErrorKind = iota
	ImportMalformedDocument
)

func (k ImportErrorKind) String() string {
	if k == ImportMalformedDocument {
		return "malformed_document"
	}
	return "parse_failure"
}

// ImportError reports a rejected import document. Prior state is left untouched.
type ImportError struct {
	Kind ImportErrorKind
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import (%s): %v", e.Kind, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
