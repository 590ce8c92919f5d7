package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReviewStore persists reviews in the user_reviews table.
type PostgresReviewStore struct {
	pool *pgxpool.Pool
}

func NewPostgresReviewStore(pool *pgxpool.Pool) *PostgresReviewStore {
	return &PostgresReviewStore{pool: pool}
}

func (s *PostgresReviewStore) Upsert(ctx context.Context, r Review) (Review, bool, error) {
	// xmax is zero only for a freshly inserted tuple.
	const q = `WITH up AS (
	             INSERT INTO user_reviews (id, user_id, movie_id, rating, content)
	             VALUES ($1, $2, $3, $4, $5)
	             ON CONFLICT (user_id, movie_id) DO UPDATE SET
	               rating = EXCLUDED.rating,
	               content = EXCLUDED.content,
	               updated_at = now()
	             RETURNING id, user_id, movie_id, rating, content, created_at, updated_at, (xmax = 0) AS inserted
	           )
	           SELECT up.id::text, up.user_id, up.movie_id, up.rating, up.content, p.username,
	                  up.created_at, up.updated_at, up.inserted
	           FROM up LEFT JOIN profiles p ON p.id = up.user_id`
	var out Review
	var inserted bool
	err := s.pool.QueryRow(ctx, q, uuid.NewString(), r.UserID, r.MovieID, r.Rating, r.Content).Scan(
		&out.ID, &out.UserID, &out.MovieID, &out.Rating, &out.Content, &out.Username,
		&out.CreatedAt, &out.UpdatedAt, &inserted)
	if err != nil {
		return Review{}, false, err
	}
	return out, inserted, nil
}

func (s *PostgresReviewStore) ListByMovie(ctx context.Context, movieID int64) ([]Review, error) {
	const q = `SELECT r.id::text, r.user_id, r.movie_id, r.rating, r.content, p.username,
	                  r.created_at, r.updated_at
	           FROM user_reviews r
	           LEFT JOIN profiles p ON p.id = r.user_id
	           WHERE r.movie_id = $1
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := s.pool.Query(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Rating, &r.Content, &r.Username,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresReviewStore) Get(ctx context.Context, userID string, movieID int64) (Review, error) {
	const q = `SELECT r.id::text, r.user_id, r.movie_id, r.rating, r.content, p.username,
	                  r.created_at, r.updated_at
	           FROM user_reviews r
	           LEFT JOIN profiles p ON p.id = r.user_id
	           WHERE r.user_id = $1 AND r.movie_id = $2`
	var r Review
	err := s.pool.QueryRow(ctx, q, userID, movieID).Scan(&r.ID, &r.UserID, &r.MovieID, &r.Rating,
		&r.Content, &r.Username, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return r, err
}
