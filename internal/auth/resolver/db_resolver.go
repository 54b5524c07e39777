package resolver

import (
	"context"
	"database/sql"
	"errors"

	"persona-auth/internal/auth"
	"persona-auth/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves identities using the database.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", ErrNilIdentity
	}

	// 1. Known identity (provider + issuer + email)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		UPDATE public.identities
		SET last_verified_at = NOW()
		WHERE provider = $1
		  AND issuer = $2
		  AND LOWER(email) = LOWER($3)
		RETURNING user_id
	`,
		identity.Provider,
		identity.Issuer,
		identity.Email,
	).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// 2. Existing user with the same email, new issuer
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM public.users
		WHERE LOWER(email) = LOWER($1)
	`,
		identity.Email,
	).Scan(&userID)

	if errors.Is(err, sql.ErrNoRows) {
		// 3. New user
		userID = uuid.New()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO public.users (id, email)
			VALUES ($1, $2)
		`,
			userID,
			identity.Email,
		)
	}

	if err != nil {
		return "", err
	}

	// 4. Identity mapping
	_, err = tx.ExecContext(ctx, `
		INSERT INTO public.identities (user_id, provider, issuer, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, issuer, email) DO NOTHING
	`,
		userID,
		identity.Provider,
		identity.Issuer,
		identity.Email,
	)

	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return userID.String(), nil
}
