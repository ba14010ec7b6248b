package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can branch on the kind instead of
// the concrete error value.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindCancelled
	KindProvider
	KindConfiguration
	KindMalformedResponse
	KindInvalidStructure
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindCancelled:
		return "cancelled"
	case KindProvider:
		return "provider"
	case KindConfiguration:
		return "configuration"
	case KindMalformedResponse:
		return "malformed_response"
	case KindInvalidStructure:
		return "invalid_structure"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. errors.Is(err, ErrProvider) holds for any
// *Error whose Kind is KindProvider.
var (
	ErrCancelled         = &Error{Kind: KindCancelled, Err: errors.New("request cancelled")}
	ErrProvider          = &Error{Kind: KindProvider, Err: errors.New("provider request failed")}
	ErrConfiguration     = &Error{Kind: KindConfiguration, Err: errors.New("generation capability not configured")}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse, Err: errors.New("no valid JSON object in response")}
	ErrInvalidStructure  = &Error{Kind: KindInvalidStructure, Err: errors.New("invalid itinerary structure")}
	ErrValidation        = &Error{Kind: KindValidation, Err: errors.New("validation failed")}
)

// Error is the tagged error used across the domain packages.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that produced it.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a kinded error from a format string.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
