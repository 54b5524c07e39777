package persona

import (
	"errors"
	"fmt"
)

const malformedResponseMessage = "Failed to parse verification response"

// ErrorKind tags the ways a verification attempt can go wrong.
type ErrorKind int

const (
	// KindTransport is a network failure talking to the verifier.
	KindTransport ErrorKind = iota + 1
	// KindMalformed is a verifier response that could not be understood.
	KindMalformed
	// KindRejected means the verifier refused the assertion.
	KindRejected
	// KindApplication is an error returned by the identity callback.
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	case KindRejected:
		return "rejected"
	case KindApplication:
		return "application"
	case 0:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type produced while authenticating a request.
// Reason is set for KindRejected, Err for KindTransport and KindApplication.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformed:
		return malformedResponseMessage
	case KindRejected:
		return e.Reason
	}
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func malformedError(err error) *Error {
	return &Error{Kind: KindMalformed, Err: err}
}

func rejectedError(reason string) *Error {
	return &Error{Kind: KindRejected, Reason: reason}
}

func applicationError(err error) *Error {
	return &Error{Kind: KindApplication, Err: err}
}

// KindOf returns the kind of a persona error anywhere in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// IsRejected reports whether the verifier actively rejected the assertion,
// as opposed to being unreachable or returning garbage.
func IsRejected(err error) bool {
	return KindOf(err) == KindRejected
}

// ConfigError is returned by New when the strategy cannot be constructed.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

var (
	ErrMissingCallback = &ConfigError{msg: "persona: authentication strategy requires a verify callback"}
	ErrMissingAudience = &ConfigError{msg: "persona: authentication strategy requires an audience option"}
)
