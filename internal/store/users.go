// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/foliolab/folio/internal/model"
)

const userColumns = "id, email, name, password_hash, role, created_at, updated_at, last_login_at"

// CreateUserParams are the fields for a new user. PasswordHash must
// already be hashed; the store never sees plaintext passwords.
type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	Role         string
}

// UpdateUserParams are the editable fields of a user. Nil pointers leave
// the stored value untouched.
type UpdateUserParams struct {
	Email        *string
	Name         *string
	PasswordHash *string
	Role         *string
}

// HasUsers reports whether any user accounts exist. Gates the one-time
// setup endpoint.
func (s *Store) HasUsers(ctx context.Context) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	return n > 0, nil
}

// CreateUser inserts a user account. Emails are stored lowercased and are
// unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	now := time.Now().UTC()
	email := strings.ToLower(strings.TrimSpace(params.Email))

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		email, params.Name, params.PasswordHash, params.Role, now)
	if err != nil {
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("reading user id: %w", err)
	}

	return model.User{
		ID:           id,
		Email:        email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    now,
	}, nil
}

// GetUser returns one user by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByEmail looks a user up case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial update to a user account.
func (s *Store) UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (model.User, error) {
	existing, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if params.Email != nil {
		existing.Email = strings.ToLower(strings.TrimSpace(*params.Email))
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.PasswordHash != nil {
		existing.PasswordHash = *params.PasswordHash
	}
	if params.Role != nil {
		existing.Role = *params.Role
	}

	now := time.Now().UTC()
	existing.UpdatedAt = sql.NullTime{Time: now, Valid: true}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, password_hash = ?, role = ?, updated_at = ?
		 WHERE id = ?`,
		existing.Email, existing.Name, existing.PasswordHash, existing.Role, now, id)
	if err != nil {
		return model.User{}, fmt.Errorf("updating user: %w", err)
	}

	return existing, nil
}

// DeleteUser removes a user account. Returns sql.ErrNoRows when absent.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchLastLogin records a login timestamp for the user.
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
