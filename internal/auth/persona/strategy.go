package persona

import (
	"encoding/json"
	"mime"
	"net/http"

	"persona-auth/internal/auth"
	"persona-auth/internal/logger"
)

const strategyName = "persona"

const (
	assertionField          = "assertion"
	missingAssertionMessage = "Missing assertion"
)

// Options configures a Strategy. Only Audience is required.
type Options struct {
	// Audience is the relying party origin, e.g. "https://www.example.com".
	Audience string

	// VerifierEndpoint overrides DefaultVerifierEndpoint.
	VerifierEndpoint string

	// PassReqToCallback must be set when the callback is a
	// RequestEmailFunc or RequestEmailIssuerFunc.
	PassReqToCallback bool

	// Transport sends the verification request. Defaults to http.DefaultClient.
	Transport Doer
}

// Strategy authenticates requests carrying a Persona assertion.
// It is immutable after New and safe for concurrent use.
type Strategy struct {
	audience string
	verifier *Verifier
	callback Callback
	form     IdentityForm
	mode     RequestMode
}

// New builds a Strategy. It fails if the callback or audience is missing,
// or if the callback variant disagrees with PassReqToCallback.
func New(opts Options, cb Callback) (*Strategy, error) {
	if isNilFunc(cb) {
		return nil, ErrMissingCallback
	}
	if opts.Audience == "" {
		return nil, ErrMissingAudience
	}

	mode := WithoutRequest
	if opts.PassReqToCallback {
		mode = WithRequest
	}
	if cb.mode() != mode {
		return nil, &ConfigError{
			msg: "persona: verify callback does not match the passReqToCallback option",
		}
	}

	return &Strategy{
		audience: opts.Audience,
		verifier: NewVerifier(opts.VerifierEndpoint, opts.Transport),
		callback: cb,
		form:     cb.form(),
		mode:     mode,
	}, nil
}

// Name returns the identifier used by the registry.
func (s *Strategy) Name() string {
	return strategyName
}

// Audience returns the configured relying party origin.
func (s *Strategy) Audience() string {
	return s.audience
}

// IdentityForm returns which verified fields the callback receives.
func (s *Strategy) IdentityForm() IdentityForm {
	return s.form
}

// RequestMode returns whether the callback receives the request.
func (s *Strategy) RequestMode() RequestMode {
	return s.mode
}

// Authenticate runs one authentication attempt and returns its outcome.
func (s *Strategy) Authenticate(r *http.Request) auth.Outcome {
	assertion := assertionFromRequest(r)
	if assertion == "" {
		return auth.Fail(auth.Info{"message": missingAssertionMessage}, http.StatusBadRequest)
	}

	res, err := s.verifier.Verify(r.Context(), assertion, s.audience)
	if err != nil {
		return auth.Error(err)
	}

	if res.Status != StatusVerified {
		logger.Info("persona assertion rejected", map[string]any{
			"audience": s.audience,
			"reason":   res.Reason,
		})
		return auth.Error(rejectedError(res.Reason))
	}

	logger.Info("persona assertion verified", map[string]any{
		"issuer":      res.Issuer,
		"audience":    res.Audience,
		"expiry_unix": res.Expires.Unix(),
	})

	user, info, err := s.callback.call(r, res.Email, res.Issuer)
	if err != nil {
		return auth.Error(applicationError(err))
	}
	if declined(user) {
		return auth.Fail(info, 0)
	}
	return auth.Success(user, info)
}

// assertionFromRequest reads the assertion from a JSON or form encoded
// body. It returns "" when there is no usable body or no assertion.
func assertionFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}

	// already parsed by the host
	if r.PostForm != nil {
		return r.PostForm.Get(assertionField)
	}

	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ""
		}
		assertion, _ := body[assertionField].(string)
		return assertion
	}

	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostForm.Get(assertionField)
}
