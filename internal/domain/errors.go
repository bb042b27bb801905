package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a call carries no caller identity.
	ErrUnauthenticated = errors.New("sign in required")
	// ErrInvalidArgument is returned for malformed requests.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is the kind shared by every missing-record error.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when the caller does not own the record.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = &kindError{kind: ErrNotFound, msg: "quiz not found"}
	// ErrAttemptNotFound indicates no attempt exists for the id.
	ErrAttemptNotFound = &kindError{kind: ErrNotFound, msg: "attempt not found"}
	// ErrProfileNotFound indicates no profile exists for the caller.
	ErrProfileNotFound = &kindError{kind: ErrNotFound, msg: "profile not found"}
)

// Wire codes surfaced to callers.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodeInvalidArgument  = "invalid-argument"
	CodeNotFound         = "not-found"
	CodePermissionDenied = "permission-denied"
	CodeInternal         = "internal"
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Code maps an error to its wire code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	default:
		return CodeInternal
	}
}

// KindForCode is the inverse of Code, used by clients decoding wire errors.
func KindForCode(code string) error {
	switch code {
	case CodeUnauthenticated:
		return ErrUnauthenticated
	case CodeInvalidArgument:
		return ErrInvalidArgument
	case CodeNotFound:
		return ErrNotFound
	case CodePermissionDenied:
		return ErrPermissionDenied
	default:
		return nil
	}
}
