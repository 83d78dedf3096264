package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUpstream
	KindMalformedResponse
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "UpstreamError"
	case KindMalformedResponse:
		return "MalformedResponseError"
	case KindValidation:
		return "ValidationError"
	default:
		return "InternalError"
	}
}

// Error is the single error type handed across package boundaries. Every
// failure in the pipeline is one of the kinds above.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	cause   error
	traced  error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Stack returns the frames captured when the error was created.
func (e *Error) Stack() string {
	st, ok := e.traced.(interface{ StackTrace() pkgerrors.StackTrace })
	if !ok {
		return ""
	}
	return fmt.Sprintf("%+v", st.StackTrace())
}

func Upstream(op string, status int, message string, cause error) *Error {
	return newError(KindUpstream, op, status, message, cause)
}

func Malformed(op string, message string, cause error) *Error {
	return newError(KindMalformedResponse, op, 0, message, cause)
}

func Validation(op string, message string) *Error {
	return newError(KindValidation, op, 0, message, nil)
}

func Internal(op string, message string, cause error) *Error {
	return newError(KindInternal, op, 0, message, cause)
}

// From converts any error into the taxonomy. Errors that already belong to it
// are returned as they are.
func From(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Upstream(op, 0, fmt.Sprintf("upstream call timed out: %v", err), err)
	}

	if errors.Is(err, context.Canceled) {
		return Upstream(op, 0, fmt.Sprintf("upstream call canceled: %v", err), err)
	}

	return Internal(op, err.Error(), err)
}

// Annotate prefixes the message of err while keeping its kind and status.
func Annotate(err error, prefix string) *Error {
	e := From("", err)
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = prefix + ": " + e.Message

	return &cpy
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusCode maps an error to the status returned to the browser. Only
// validation failures are distinguished.
func StatusCode(err error) int {
	if KindOf(err) == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func Stack(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stack()
	}
	return ""
}

func newError(kind Kind, op string, status int, message string, cause error) *Error {
	traced := pkgerrors.WithStack(cause)
	if traced == nil {
		traced = pkgerrors.New(message)
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Status:  status,
		Message: message,
		cause:   cause,
		traced:  traced,
	}
}
