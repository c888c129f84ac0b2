package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afterclass/lessons-api/internal/domain"
)

type CredentialStore struct{ DB *pgxpool.Pool }

func NewCredentialStore(db *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{DB: db}
}

func (s *CredentialStore) PasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, `SELECT password_hash FROM users WHERE username=$1`, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("select user: %w", err)
	}
	return hash, nil
}
