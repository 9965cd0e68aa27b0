// Package apperr classifies the errors returned to API clients.
//
// Every error that leaves a resolver is an *Error. Its Kind decides the
// "code" extension in the GraphQL error envelope; Internal errors hide their
// cause from the client.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the classification of an Error.
type Kind int

const (
	// Internal represents failures of the store or other infrastructure.
	Internal Kind = iota
	// NotFound represents a lookup by id or unique key that matched nothing.
	NotFound
	// Unauthorized represents a missing or invalid bearer token.
	Unauthorized
	// Validation represents bad client input, including failed logins.
	Validation
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Validation:
		return "validation"
	default:
		return "internal"
	}
}

// Code returns the GraphQL extension code for k.
func (k Kind) Code() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case Unauthorized:
		return "UNAUTHENTICATED"
	case Validation:
		return "BAD_USER_INPUT"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

const internalMessage = "internal server error"

// Error is a classified error.
type Error struct {
	Kind    Kind
	Message string
	// Key is the id or unique key a NotFound lookup used.
	Key string
	Err error
}

// Error implements the error interface. Internal errors never expose their
// cause here; use Unwrap or Cause for logging.
func (e *Error) Error() string {
	if e.Kind == Internal {
		return internalMessage
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is read by graphql-go when building the error envelope.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Kind.Code()}
	if e.Key != "" {
		ext["key"] = e.Key
	}
	return ext
}

// NewNotFound returns a NotFound error for the entity looked up by key.
func NewNotFound(entity, field, key string) *Error {
	return &Error{
		Kind:    NotFound,
		Message: fmt.Sprintf("%s with %s %s not found", entity, field, key),
		Key:     key,
	}
}

// NewUnauthorized returns an Unauthorized error.
func NewUnauthorized(msg string) *Error {
	return &Error{Kind: Unauthorized, Message: msg}
}

// NewValidation returns a Validation error.
func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err as Internal. The operation is recorded for logs.
// A nil err yields nil; an err that is already classified is returned as is.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: Internal, Message: op, Err: errors.Wrap(err, op)}
}

// KindOf returns the Kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err is classified as k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Cause returns the innermost error, for logging.
func Cause(err error) error {
	var ae *Error
	if errors.As(err, &ae) && ae.Err != nil {
		return ae.Err
	}
	return err
}
