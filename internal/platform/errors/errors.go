package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionClosed   = errors.New("session closed")
)

// LoadKind classifies document load failures.
type LoadKind string

const (
	LoadMissingURL LoadKind = "missing_url"
	LoadNetwork    LoadKind = "network"
	LoadStatus     LoadKind = "status"
	LoadMalformed  LoadKind = "malformed"
	LoadCanceled   LoadKind = "canceled"
)

// LoadError is shown to the reader; Message is already human readable.
type LoadError struct {
	Kind    LoadKind
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	return "failed to load pdf: " + e.Message
}

func (e *LoadError) Unwrap() error { return e.Cause }

func NewLoadError(kind LoadKind, cause error, format string, args ...any) *LoadError {
	return &LoadError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// PersistenceError wraps a failed engagement or progress write. It is logged,
// never shown to the reader.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// IsLoadError reports whether err carries a LoadError and returns it.
func IsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
