package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

// GetUserByEmail returns nil, nil when no user has the address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := s.q(`SELECT id, email, password_hash, role, created_at FROM users WHERE LOWER(email) = LOWER(?)`)

	var user models.User
	if err := s.DB.GetContext(ctx, &user, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser stores an already hashed password.
func (s *Store) CreateUser(ctx context.Context, email, hashedPassword, role string) error {
	if role == "" {
		role = models.RoleUser
	}
	query := s.q(`INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, query, strings.TrimSpace(email), hashedPassword, role, s.now())
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", email, ErrDuplicate)
	}
	return err
}

func (s *Store) SetUserRole(ctx context.Context, email, role string) error {
	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE users SET role = ? WHERE LOWER(email) = LOWER(?)`), role, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	return checkAffected(res)
}
