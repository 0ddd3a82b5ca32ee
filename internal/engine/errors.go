package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so handlers can pick a status code
// without parsing messages.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInvalidArgument     Kind = "invalid_argument"
	KindInsufficientSeats   Kind = "insufficient_seats"
	KindInvalidState        Kind = "invalid_state"
	KindAlreadyExists       Kind = "already_exists"
	KindSignatureInvalid    Kind = "signature_invalid"
	KindOrderMismatch       Kind = "order_mismatch"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindInternal            Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Message: msg} }
func InvalidArgument(msg string) error   { return &Error{Kind: KindInvalidArgument, Message: msg} }
func InsufficientSeats(msg string) error { return &Error{Kind: KindInsufficientSeats, Message: msg} }
func InvalidState(msg string) error      { return &Error{Kind: KindInvalidState, Message: msg} }
func AlreadyExists(msg string) error     { return &Error{Kind: KindAlreadyExists, Message: msg} }
func SignatureInvalid(msg string) error  { return &Error{Kind: KindSignatureInvalid, Message: msg} }
func OrderMismatch(msg string) error     { return &Error{Kind: KindOrderMismatch, Message: msg} }

// ProviderUnavailable marks a transient upstream failure; callers may retry.
func ProviderUnavailable(msg string, cause error) error {
	return &Error{Kind: KindProviderUnavailable, Message: msg, cause: cause}
}

// Internal wraps a storage or other unexpected failure. The cause is kept for
// logs; handlers only surface the message.
func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// KindOf extracts the Kind from err, or KindInternal for anything the engine
// did not classify.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err. Unclassified errors get
// a generic message so storage detail never leaks to clients.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Retryable reports whether the caller may safely retry the operation.
func Retryable(err error) bool {
	return KindOf(err) == KindProviderUnavailable
}
