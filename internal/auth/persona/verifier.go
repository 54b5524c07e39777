package persona

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"persona-auth/internal/logger"
)

// DefaultVerifierEndpoint is the public Persona remote verification service.
const DefaultVerifierEndpoint = "https://verifier.login.persona.org/verify"

const statusOkay = "okay"

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Status is the verifier's answer for an assertion.
type Status int

const (
	StatusVerified Status = iota + 1
	StatusRejected
)

// Result is a parsed verifier response. Email, Audience, Expires and Issuer
// are set when Status is StatusVerified, Reason when it is StatusRejected.
type Result struct {
	Status Status

	Email    string
	Audience string
	Expires  time.Time
	Issuer   string

	Reason string
}

type verifierResponse struct {
	Status   string      `json:"status"`
	Email    string      `json:"email"`
	Audience string      `json:"audience"`
	Expires  json.Number `json:"expires"`
	Issuer   string      `json:"issuer"`
	Reason   string      `json:"reason"`
}

// Verifier posts assertions to a remote verification endpoint.
// It performs one round-trip per call and never retries.
type Verifier struct {
	endpoint  string
	transport Doer
}

// NewVerifier returns a verifier for endpoint. An empty endpoint selects
// DefaultVerifierEndpoint and a nil transport selects http.DefaultClient.
func NewVerifier(endpoint string, transport Doer) *Verifier {
	if endpoint == "" {
		endpoint = DefaultVerifierEndpoint
	}
	if transport == nil {
		transport = http.DefaultClient
	}
	return &Verifier{
		endpoint:  endpoint,
		transport: transport,
	}
}

// Endpoint returns the URL assertions are posted to.
func (v *Verifier) Endpoint() string {
	return v.endpoint
}

// Verify asks the remote verifier whether assertion is valid for audience.
//
// Transport failures are returned as KindTransport errors wrapping the
// original error, unparseable responses as KindMalformed. A rejection by
// the verifier is not an error at this layer: it is a Result with
// StatusRejected.
func (v *Verifier) Verify(
	ctx context.Context,
	assertion string,
	audience string,
) (*Result, error) {

	body := encodeVerificationBody(assertion, audience)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		v.endpoint,
		strings.NewReader(body),
	)
	if err != nil {
		return nil, transportError(err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.ContentLength = int64(len(body))

	resp, err := v.transport.Do(req)
	if err != nil {
		logger.Debug("persona verifier unreachable", map[string]any{
			"endpoint": v.endpoint,
			"error":    err.Error(),
		})
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	return parseVerifierResponse(data)
}

// encodeVerificationBody builds the form body. Field order is part of the
// wire format: assertion, then audience.
func encodeVerificationBody(assertion, audience string) string {
	return "assertion=" + url.QueryEscape(assertion) +
		"&audience=" + url.QueryEscape(audience)
}

func parseVerifierResponse(data []byte) (*Result, error) {
	var payload verifierResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, malformedError(err)
	}

	switch payload.Status {
	case "":
		return nil, malformedError(nil)
	case statusOkay:
		expires, err := parseExpires(payload.Expires)
		if err != nil {
			return nil, malformedError(err)
		}
		return &Result{
			Status:   StatusVerified,
			Email:    payload.Email,
			Audience: payload.Audience,
			Expires:  expires,
			Issuer:   payload.Issuer,
		}, nil
	default:
		return &Result{
			Status: StatusRejected,
			Reason: payload.Reason,
		}, nil
	}
}

// parseExpires converts the verifier's millisecond timestamp.
func parseExpires(n json.Number) (time.Time, error) {
	if n == "" {
		return time.Time{}, nil
	}
	if ms, err := n.Int64(); err == nil {
		return time.UnixMilli(ms), nil
	}
	f, err := n.Float64()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(f)), nil
}
