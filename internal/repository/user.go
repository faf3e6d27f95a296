package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-shop/storefront-api/internal/domain/order"
)

const (
	findUserIDByEmailSQL = `SELECT id FROM users WHERE email = $1`

	upsertUserSQL = `INSERT INTO users (name, email, role, user_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			user_type = EXCLUDED.user_type
		RETURNING id`
)

var _ order.UserResolver = (*UserRepository)(nil)

// UserRepository provides the identity lookups the order workflow and the
// dashboard need. Account management itself lives in the identity service.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// ResolveByEmail returns the user ID for an email address, or 0 when no
// account matches. Guest checkouts proceed with a zero user ID.
func (r *UserRepository) ResolveByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, findUserIDByEmailSQL, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("resolving user by email: %w", err)
	}
	return id, nil
}

// Upsert inserts or refreshes an account keyed by email and returns its ID.
// Used by the seed tooling.
func (r *UserRepository) Upsert(ctx context.Context, name, email, role, userType string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, upsertUserSQL, name, email, role, userType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", email, err)
	}
	return id, nil
}
