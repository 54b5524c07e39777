package resolver

import (
	"context"
	"errors"

	"persona-auth/internal/auth"
)

var ErrNilIdentity = errors.New("identity is nil")

// Resolver determines which internal user a verified identity belongs to.
// It is the ONLY place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.Identity,
	) (userID string, err error)
}
