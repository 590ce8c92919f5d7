package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type reviewKey struct {
	userID  string
	movieID int64
}

// InMemoryReviewStore is a development-only in-memory implementation.
type InMemoryReviewStore struct {
	mu       sync.RWMutex
	reviews  map[reviewKey]Review
	profiles *InMemoryProfileStore
}

// NewInMemoryReviewStore creates a store. profiles may be nil; it supplies usernames.
func NewInMemoryReviewStore(profiles *InMemoryProfileStore) *InMemoryReviewStore {
	return &InMemoryReviewStore{reviews: make(map[reviewKey]Review), profiles: profiles}
}

func (s *InMemoryReviewStore) Upsert(_ context.Context, r Review) (Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reviewKey{r.UserID, r.MovieID}
	now := time.Now().UTC()
	existing, ok := s.reviews[key]
	if ok {
		existing.Rating = r.Rating
		existing.Content = r.Content
		existing.UpdatedAt = now
		s.reviews[key] = existing
		return s.withUsername(existing), false, nil
	}
	r.ID = uuid.NewString()
	r.CreatedAt, r.UpdatedAt = now, now
	r.Username = nil
	s.reviews[key] = r
	return s.withUsername(r), true, nil
}

func (s *InMemoryReviewStore) ListByMovie(_ context.Context, movieID int64) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Review{}
	for k, r := range s.reviews {
		if k.movieID == movieID {
			out = append(out, s.withUsername(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemoryReviewStore) Get(_ context.Context, userID string, movieID int64) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[reviewKey{userID, movieID}]
	if !ok {
		return Review{}, ErrNotFound
	}
	return s.withUsername(r), nil
}

func (s *InMemoryReviewStore) withUsername(r Review) Review {
	r.Username = s.profiles.username(r.UserID)
	return r
}
