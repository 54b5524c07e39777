package persona

import (
	"context"
	"net/http"

	"persona-auth/internal/auth"
)

// IdentityForm selects which verified fields reach the identity callback.
type IdentityForm int

const (
	EmailOnly IdentityForm = iota + 1
	EmailAndIssuer
)

// RequestMode selects whether the incoming request is handed to the
// identity callback.
type RequestMode int

const (
	WithoutRequest RequestMode = iota + 1
	WithRequest
)

// Callback maps a verified identity to an application user. It is one of
// EmailFunc, EmailIssuerFunc, RequestEmailFunc or RequestEmailIssuerFunc.
//
// Every variant returns (user, info, err). A non-nil err fails the attempt
// with an error, a nil (or false) user declines it, anything else is the
// authenticated user. A nil info is reported as absent.
type Callback interface {
	form() IdentityForm
	mode() RequestMode
	call(r *http.Request, email, issuer string) (any, auth.Info, error)
}

type EmailFunc func(ctx context.Context, email string) (any, auth.Info, error)

type EmailIssuerFunc func(ctx context.Context, email, issuer string) (any, auth.Info, error)

type RequestEmailFunc func(r *http.Request, email string) (any, auth.Info, error)

type RequestEmailIssuerFunc func(r *http.Request, email, issuer string) (any, auth.Info, error)

func (f EmailFunc) form() IdentityForm { return EmailOnly }
func (f EmailFunc) mode() RequestMode  { return WithoutRequest }
func (f EmailFunc) call(r *http.Request, email, _ string) (any, auth.Info, error) {
	return f(r.Context(), email)
}

func (f EmailIssuerFunc) form() IdentityForm { return EmailAndIssuer }
func (f EmailIssuerFunc) mode() RequestMode  { return WithoutRequest }
func (f EmailIssuerFunc) call(r *http.Request, email, issuer string) (any, auth.Info, error) {
	return f(r.Context(), email, issuer)
}

func (f RequestEmailFunc) form() IdentityForm { return EmailOnly }
func (f RequestEmailFunc) mode() RequestMode  { return WithRequest }
func (f RequestEmailFunc) call(r *http.Request, email, _ string) (any, auth.Info, error) {
	return f(r, email)
}

func (f RequestEmailIssuerFunc) form() IdentityForm { return EmailAndIssuer }
func (f RequestEmailIssuerFunc) mode() RequestMode  { return WithRequest }
func (f RequestEmailIssuerFunc) call(r *http.Request, email, issuer string) (any, auth.Info, error) {
	return f(r, email, issuer)
}

// isNilFunc guards against a typed nil func stored in the interface.
func isNilFunc(cb Callback) bool {
	switch f := cb.(type) {
	case nil:
		return true
	case EmailFunc:
		return f == nil
	case EmailIssuerFunc:
		return f == nil
	case RequestEmailFunc:
		return f == nil
	case RequestEmailIssuerFunc:
		return f == nil
	}
	return false
}

func declined(user any) bool {
	if user == nil {
		return true
	}
	b, ok := user.(bool)
	return ok && !b
}
