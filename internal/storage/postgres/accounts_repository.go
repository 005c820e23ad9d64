package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosplay-angola/server/internal/domain/accounts"
)

var _ accounts.Repository = (*AccountRepository)(nil)

const accountColumns = `id, username, email, password_hash, first_name, last_name,
       is_staff, is_superuser, last_login, created_at`

func (r *AccountRepository) Create(ctx context.Context, params accounts.CreateParams) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO accounts (username, email, password_hash, first_name, last_name, is_staff, is_superuser)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+accountColumns,
		params.Username,
		strings.ToLower(params.Email),
		params.PasswordHash,
		params.FirstName,
		params.LastName,
		params.IsStaff,
		params.IsSuperuser,
	)

	account, err := scanAccount(row)
	if err != nil {
		switch {
		case violatesUnique(err, "accounts_username_key"):
			return nil, accounts.ErrUsernameTaken
		case violatesUnique(err, "accounts_email_key"):
			return nil, accounts.ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return getAccount(row, "get account")
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return getAccount(row, "get account by username")
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.ToLower(email))
	return getAccount(row, "get account by email")
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE accounts SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanAccount(row pgx.Row) (*accounts.Account, error) {
	var account accounts.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.IsStaff,
		&account.IsSuperuser,
		&account.LastLogin,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func getAccount(row pgx.Row, op string) (*accounts.Account, error) {
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}
