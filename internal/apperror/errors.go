package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so transports can map it without inspecting messages.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindStateConflict Kind = "state_conflict"
	KindEligibility   Kind = "eligibility"
	KindDependency    Kind = "dependency"
)

// Error is the typed error returned by services and repositories.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil && e.Kind == KindDependency {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Draw outcome sentinels. Match them with errors.Is.
var (
	ErrAlreadyCompleted       = &Error{Kind: KindStateConflict, Message: "draw has already been completed for this giveaway"}
	ErrTooEarly               = &Error{Kind: KindStateConflict, Message: "draw date has not been reached yet"}
	ErrNoEligibleParticipants = &Error{Kind: KindEligibility, Message: "no eligible participants found"}
)

func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Newf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to err. A nil err yields nil.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func Validation(op, format string, args ...interface{}) error {
	return Newf(KindValidation, op, format, args...)
}

func NotFound(op, format string, args ...interface{}) error {
	return Newf(KindNotFound, op, format, args...)
}

func Conflict(op, format string, args ...interface{}) error {
	return Newf(KindStateConflict, op, format, args...)
}

func Ineligible(op, format string, args ...interface{}) error {
	return Newf(KindEligibility, op, format, args...)
}

// Dependency wraps a failure of an external collaborator (database, directory, broker).
// Errors that already carry a kind are returned unchanged.
func Dependency(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return &Error{Kind: KindDependency, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err: the outermost *Error message when
// present, otherwise err.Error().
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
