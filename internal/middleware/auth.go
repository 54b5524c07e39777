package middleware

import (
	"context"
	"errors"
	"net/http"

	"persona-auth/internal/auth"
	"persona-auth/internal/auth/persona"
	"persona-auth/internal/logger"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (any, bool) {
	user := ctx.Value(userKey)
	return user, user != nil
}

// AuthMiddleware authenticates every request with a single strategy.
type AuthMiddleware struct {
	Strategy auth.Strategy
}

func NewAuthMiddleware(strategy auth.Strategy) *AuthMiddleware {
	return &AuthMiddleware{Strategy: strategy}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		outcome := a.Strategy.Authenticate(r)

		switch outcome.Kind {
		case auth.OutcomeSuccess:
			ctx := context.WithValue(r.Context(), userKey, outcome.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		case auth.OutcomeFail:
			status := outcome.Status
			if status == 0 {
				status = http.StatusUnauthorized
			}
			http.Error(w, "unauthorized", status)
		default:
			err := outcome.Err
			if err == nil {
				err = errors.New("invalid authentication outcome")
			}
			status := persona.StatusForError(err)
			if status >= http.StatusInternalServerError {
				logger.Error("authentication error", map[string]any{
					"error": err.Error(),
					"kind":  persona.KindOf(err).String(),
				})
			}
			http.Error(w, persona.PublicMessage(err), status)
		}
	})
}
