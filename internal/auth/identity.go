package auth

// Identity represents a verified external identity as reported by a
// remote verifier. It contains facts only, no decisions.
type Identity struct {
	Provider string // strategy that verified the identity, e.g. "persona"
	Email    string // email address the assertion proved ownership of
	Issuer   string // identity provider that signed the assertion
	Audience string // relying party origin the assertion was scoped to
}
