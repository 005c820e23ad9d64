package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/auth"
)

var _ auth.Blacklist = (*BlacklistRepository)(nil)

// Revoke inserts the jti into the blacklist. The primary key makes the
// insert race-safe: whichever concurrent revocation loses the conflict gets
// ErrInvalidToken, which is what single-use refresh semantics need.
func (r *BlacklistRepository) Revoke(ctx context.Context, jti uuid.UUID, expiresAt time.Time) error {
	tag, err := r.queryer().Exec(ctx, `
INSERT INTO token_blacklist (jti, expires_at)
VALUES ($1, $2)
ON CONFLICT (jti) DO NOTHING
`, jti, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrInvalidToken
	}

	// Expired rows can never match a live token again, so pruning here is
	// safe and keeps the table from growing unbounded without a job runner.
	if _, err := r.queryer().Exec(ctx,
		`DELETE FROM token_blacklist WHERE expires_at < now()`); err != nil {
		return fmt.Errorf("prune blacklist: %w", err)
	}
	return nil
}

func (r *BlacklistRepository) IsRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	var revoked bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return revoked, nil
}

func (r *BlacklistRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
