package persona

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connect ECONNREFUSED 127.0.0.1:443")

	assert.Equal(t, "connect ECONNREFUSED 127.0.0.1:443", transportError(cause).Error())
	assert.Equal(t, "Failed to parse verification response", malformedError(errors.New("invalid character")).Error())
	assert.Equal(t, "assertion has expired", rejectedError("assertion has expired").Error())
	assert.Equal(t, "no such user", applicationError(errors.New("no such user")).Error())
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("login: %w", rejectedError("audience mismatch: domain mismatch"))

	assert.Equal(t, KindRejected, KindOf(err))
	assert.True(t, IsRejected(err))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.False(t, IsRejected(transportError(errors.New("timeout"))))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "malformed", KindMalformed.String())
	assert.Equal(t, "rejected", KindRejected.String())
	assert.Equal(t, "application", KindApplication.String())
}

func TestUnknownKindString(t *testing.T) {
	assert.Equal(t, "unknown", KindOf(errors.New("plain")).String())
}
