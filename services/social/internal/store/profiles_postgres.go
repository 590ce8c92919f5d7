package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileStore persists profiles in Postgres.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileStore(pool *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{pool: pool}
}

const profileColumns = `id, username, name, interests, created_at, updated_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Username, &p.Name, &p.Interests, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return p, err
}

func (s *PostgresProfileStore) Get(ctx context.Context, userID string) (Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(s.pool.QueryRow(ctx, q, userID))
}

func (s *PostgresProfileStore) Create(ctx context.Context, p Profile) (Profile, error) {
	interests := p.Interests
	if interests == nil {
		interests = DefaultInterests
	}
	// DO UPDATE with a no-op keeps RETURNING populated when the row already exists.
	const q = `INSERT INTO profiles (id, username, name, interests)
	           VALUES ($1, $2, $3, $4)
	           ON CONFLICT (id) DO UPDATE SET id = profiles.id
	           RETURNING ` + profileColumns
	return scanProfile(s.pool.QueryRow(ctx, q, p.UserID, p.Username, p.Name, interests))
}

func (s *PostgresProfileStore) UpdateName(ctx context.Context, userID string, name *string) (Profile, error) {
	const q = `UPDATE profiles SET name = $2, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + profileColumns
	return scanProfile(s.pool.QueryRow(ctx, q, userID, name))
}

func (s *PostgresProfileStore) UpdateInterests(ctx context.Context, userID string, interests []string) (Profile, error) {
	if interests == nil {
		interests = []string{}
	}
	const q = `UPDATE profiles SET interests = $2, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + profileColumns
	return scanProfile(s.pool.QueryRow(ctx, q, userID, interests))
}
