package persona

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"
	"time"

	"persona-auth/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	requests []*http.Request
	bodies   []string
	respond  func(req *http.Request) (*http.Response, error)
}

func (t *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	t.requests = append(t.requests, req)
	t.bodies = append(t.bodies, string(body))
	return t.respond(req)
}

func jsonResponse(body string) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

func TestVerifyRequestIsByteExact(t *testing.T) {
	transport := &recordingTransport{
		respond: jsonResponse(`{"status":"failure","reason":"need assertion and audience"}`),
	}
	v := NewVerifier("", transport)

	_, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, DefaultVerifierEndpoint, req.URL.String())
	assert.Equal(t, "https", req.URL.Scheme)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "70", req.Header.Get("Content-Length"))
	assert.Equal(t, int64(70), req.ContentLength)
	assert.Equal(t,
		"assertion=secret-assertion-data&audience=https%3A%2F%2Fwww.example.com",
		transport.bodies[0],
	)
}

func TestVerifyEscapesAssertion(t *testing.T) {
	transport := &recordingTransport{
		respond: jsonResponse(`{"status":"failure","reason":"invalid"}`),
	}
	v := NewVerifier("https://verifier.example.org/verify", transport)

	_, err := v.Verify(context.Background(), "a+b/c=d&e", "https://www.example.com:8443")
	require.NoError(t, err)

	body := transport.bodies[0]
	assert.Equal(t, "assertion=a%2Bb%2Fc%3Dd%26e&audience=https%3A%2F%2Fwww.example.com%3A8443", body)
	assert.Equal(t, int64(len(body)), transport.requests[0].ContentLength)
	assert.Equal(t, "https://verifier.example.org/verify", transport.requests[0].URL.String())
}

func TestVerifyOkay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "okay",
			"email": "jared@example.com",
			"audience": "https://www.example.com",
			"expires": 1322683911562,
			"issuer": "login.persona.org"
		}`))
	}))
	defer server.Close()

	v := NewVerifier(server.URL, server.Client())

	res, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
	require.NoError(t, err)

	assert.Equal(t, StatusVerified, res.Status)
	assert.Equal(t, "jared@example.com", res.Email)
	assert.Equal(t, "https://www.example.com", res.Audience)
	assert.Equal(t, "login.persona.org", res.Issuer)
	assert.Equal(t, time.UnixMilli(1322683911562), res.Expires)
	assert.Empty(t, res.Reason)
}

func TestVerifyOkayIsNotRevalidated(t *testing.T) {
	transport := &recordingTransport{
		respond: jsonResponse(`{"status":"okay","email":"jared@example.com","audience":"https://other.example.net","expires":1000,"issuer":"example.com"}`),
	}
	v := NewVerifier("", transport)

	res, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
	require.NoError(t, err)

	assert.Equal(t, StatusVerified, res.Status)
	assert.Equal(t, "https://other.example.net", res.Audience)
	assert.Equal(t, time.UnixMilli(1000), res.Expires)
}

func TestVerifyRejected(t *testing.T) {
	reasons := []string{
		"need assertion and audience",
		"audience mismatch: domain mismatch",
		"assertion has expired",
	}

	for _, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			transport := &recordingTransport{
				respond: jsonResponse(`{"status":"failure","reason":"` + reason + `"}`),
			}
			v := NewVerifier("", transport)

			res, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
			require.NoError(t, err)

			assert.Equal(t, StatusRejected, res.Status)
			assert.Equal(t, reason, res.Reason)
			assert.Empty(t, res.Email)
		})
	}
}

func TestVerifyMalformed(t *testing.T) {
	bodies := map[string]string{
		"not json":       "<html>Bad Gateway</html>",
		"truncated":      `{"status":"okay","email":`,
		"empty":          "",
		"missing status": `{"email":"jared@example.com"}`,
		"array":          `["okay"]`,
		"null":           "null",
		"bad expires":    `{"status":"okay","expires":"soon"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			transport := &recordingTransport{respond: jsonResponse(body)}
			v := NewVerifier("", transport)

			res, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
			require.Error(t, err)
			assert.Nil(t, res)

			assert.Equal(t, "Failed to parse verification response", err.Error())
			assert.Equal(t, KindMalformed, KindOf(err))
		})
	}
}

func TestVerifyTransportErrorIsPreserved(t *testing.T) {
	connErr := &netError{msg: "connect ECONNREFUSED", errno: syscall.ECONNREFUSED}
	transport := &recordingTransport{
		respond: func(*http.Request) (*http.Response, error) {
			return nil, connErr
		},
	}
	v := NewVerifier("", transport)

	res, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
	require.Error(t, err)
	assert.Nil(t, res)

	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "connect ECONNREFUSED", err.Error())
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)

	var ne *netError
	require.ErrorAs(t, err, &ne)
	assert.Same(t, connErr, ne)
	assert.Len(t, transport.requests, 1)
}

func TestVerifyTransportErrorIsNotLoggedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger.Init("info")
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.Init("debug") })

	transport := &recordingTransport{
		respond: func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connect ECONNREFUSED")
		},
	}

	_, err := NewVerifier("", transport).Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
	require.Error(t, err)
	assert.NotContains(t, buf.String(), "persona verifier unreachable")
}

func TestVerifyUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	v := NewVerifier(url, server.Client())

	_, err := v.Verify(context.Background(), "secret-assertion-data", "https://www.example.com")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.False(t, IsRejected(err))
}

func TestVerifyHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	v := NewVerifier(server.URL, server.Client())

	_, err := v.Verify(ctx, "secret-assertion-data", "https://www.example.com")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

type netError struct {
	msg   string
	errno syscall.Errno
}

func (e *netError) Error() string { return e.msg }
func (e *netError) Unwrap() error { return e.errno }
