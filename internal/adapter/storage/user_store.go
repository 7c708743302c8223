// internal/adapter/storage/user_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"convosense/internal/domain/analysis"
)

// UserStore implements storage for account records
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore creates a new user store
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{
		db: db,
	}
}

// Upsert inserts or updates a user record keyed by uid
func (s *UserStore) Upsert(ctx context.Context, user analysis.User) error {
	query := `
		INSERT INTO users (
			uid, email, display_name, updated_at
		) VALUES (
			$1, $2, $3, $4
		)
		ON CONFLICT (uid) DO UPDATE
		SET
			email = $2,
			display_name = $3,
			updated_at = $4
	`

	updatedAt := user.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		ctx,
		query,
		user.UID,
		user.Email,
		user.DisplayName,
		updatedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// Get retrieves a user record by uid
func (s *UserStore) Get(ctx context.Context, uid string) (*analysis.User, error) {
	query := `
		SELECT uid, email, display_name, updated_at
		FROM users
		WHERE uid = $1
	`

	var user analysis.User
	err := s.db.QueryRow(ctx, query, uid).Scan(
		&user.UID,
		&user.Email,
		&user.DisplayName,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analysis.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &user, nil
}
