package client

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrUploadFailure         = errors.New("upload failure")
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	ErrTransport             = errors.New("transport failure")
	ErrUnauthorized          = errors.New("unauthorized")
)

// Error is the error type returned by every operation of this module.
type Error struct {
	Kind    error
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// GRPCStatus lets servers built on grpc return client errors unchanged.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(codeFor(e.Kind), e.Error())
}

func codeFor(kind error) codes.Code {
	switch kind {
	case ErrInvalidArgument:
		return codes.InvalidArgument
	case ErrUploadFailure:
		return codes.Unavailable
	case ErrRemoteOperationFailed:
		return codes.Aborted
	case ErrUnauthorized:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}

// Error constructors
func NewError(kind error, op, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

func InvalidArgumentf(op, format string, args ...any) error {
	return NewError(ErrInvalidArgument, op, fmt.Sprintf(format, args...), nil)
}

func UploadFailure(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) && e.Kind == ErrUploadFailure {
		return cause
	}
	return NewError(ErrUploadFailure, op, "", cause)
}

// RemoteErrors folds the messages of a failed GraphQL response into one
// error, one message per line, in response order.
func RemoteErrors(op string, messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	msg := "failed due to following error:\n" + strings.Join(messages, "\n")
	return NewError(ErrRemoteOperationFailed, op, msg, nil)
}

// KindOf returns the error kind carried by err, or nil.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
