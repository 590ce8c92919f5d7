package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWatchlistStore persists watchlist entries in Postgres.
type PostgresWatchlistStore struct {
	pool *pgxpool.Pool
}

func NewPostgresWatchlistStore(pool *pgxpool.Pool) *PostgresWatchlistStore {
	return &PostgresWatchlistStore{pool: pool}
}

func (s *PostgresWatchlistStore) Add(ctx context.Context, e WatchlistEntry) (WatchlistEntry, error) {
	const q = `INSERT INTO watchlist (id, user_id, movie_id, title, poster_path)
	           VALUES ($1, $2, $3, $4, $5)
	           ON CONFLICT (user_id, movie_id) DO UPDATE SET
	             title = EXCLUDED.title,
	             poster_path = EXCLUDED.poster_path
	           RETURNING id::text, user_id, movie_id, title, poster_path, created_at`
	var out WatchlistEntry
	err := s.pool.QueryRow(ctx, q, uuid.NewString(), e.UserID, e.MovieID, e.Title, e.PosterPath).Scan(
		&out.ID, &out.UserID, &out.MovieID, &out.Title, &out.PosterPath, &out.CreatedAt)
	return out, err
}

func (s *PostgresWatchlistStore) Remove(ctx context.Context, userID string, movieID int64) error {
	const q = `DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2`
	_, err := s.pool.Exec(ctx, q, userID, movieID)
	return err
}

func (s *PostgresWatchlistStore) List(ctx context.Context, userID string) ([]WatchlistEntry, error) {
	const q = `SELECT id::text, user_id, movie_id, title, poster_path, created_at
	           FROM watchlist
	           WHERE user_id = $1
	           ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []WatchlistEntry{}
	for rows.Next() {
		var e WatchlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MovieID, &e.Title, &e.PosterPath, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresWatchlistStore) Contains(ctx context.Context, userID string, movieID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND movie_id = $2)`
	var ok bool
	err := s.pool.QueryRow(ctx, q, userID, movieID).Scan(&ok)
	return ok, err
}
