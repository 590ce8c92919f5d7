package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryWatchlistStore is a development-only in-memory implementation.
type InMemoryWatchlistStore struct {
	mu      sync.RWMutex
	entries map[string]map[int64]WatchlistEntry // user_id -> movie_id -> entry
}

func NewInMemoryWatchlistStore() *InMemoryWatchlistStore {
	return &InMemoryWatchlistStore{entries: make(map[string]map[int64]WatchlistEntry)}
}

func (s *InMemoryWatchlistStore) Add(_ context.Context, e WatchlistEntry) (WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[e.UserID] == nil {
		s.entries[e.UserID] = make(map[int64]WatchlistEntry)
	}
	if existing, ok := s.entries[e.UserID][e.MovieID]; ok {
		existing.Title = e.Title
		existing.PosterPath = e.PosterPath
		s.entries[e.UserID][e.MovieID] = existing
		return existing, nil
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	s.entries[e.UserID][e.MovieID] = e
	return e, nil
}

func (s *InMemoryWatchlistStore) Remove(_ context.Context, userID string, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[userID], movieID)
	return nil
}

func (s *InMemoryWatchlistStore) List(_ context.Context, userID string) ([]WatchlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]WatchlistEntry, 0, len(s.entries[userID]))
	for _, e := range s.entries[userID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemoryWatchlistStore) Contains(_ context.Context, userID string, movieID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[userID][movieID]
	return ok, nil
}
