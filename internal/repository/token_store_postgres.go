package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresTokenStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenStore returns a Postgres-backed implementation using the
// client_storage table.
func NewPostgresTokenStore(pool *pgxpool.Pool) TokenStore {
	return &postgresTokenStore{pool: pool}
}

func (s *postgresTokenStore) Get(ctx context.Context) (string, bool, error) {
	const query = `SELECT value FROM client_storage WHERE key=$1`

	var token string
	if err := s.pool.QueryRow(ctx, query, TokenKey).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get token: %w", err)
	}
	return token, true, nil
}

func (s *postgresTokenStore) Set(ctx context.Context, token string) error {
	const query = `
        INSERT INTO client_storage (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	if _, err := s.pool.Exec(ctx, query, TokenKey, token); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

func (s *postgresTokenStore) Clear(ctx context.Context) error {
	const query = `DELETE FROM client_storage WHERE key=$1`

	if _, err := s.pool.Exec(ctx, query, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
