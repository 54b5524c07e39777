package persona

import "net/http"

const (
	verifierUnavailableMessage = "verifier unavailable"
	authenticationErrorMessage = "authentication error"
)

// StatusForError maps an authentication error to an HTTP status.
// Rejections are the client's fault, verifier trouble is a bad gateway,
// everything else is internal.
func StatusForError(err error) int {
	switch KindOf(err) {
	case KindRejected:
		return http.StatusUnauthorized
	case KindTransport, KindMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be shown to the client for err.
// Only the verifier's rejection reason and the fixed malformed message pass
// through; transport and application detail stays in the logs.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindRejected, KindMalformed:
		return err.Error()
	case KindTransport:
		return verifierUnavailableMessage
	default:
		return authenticationErrorMessage
	}
}
