package store

import (
	"context"
	"sync"
	"time"
)

// InMemoryProfileStore is a development-only in-memory implementation.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile // user_id -> profile
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[string]Profile)}
}

func (s *InMemoryProfileStore) Get(_ context.Context, userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return cloneProfile(p), nil
}

func (s *InMemoryProfileStore) Create(_ context.Context, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[p.UserID]; ok {
		return cloneProfile(existing), nil
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Interests == nil {
		p.Interests = append([]string(nil), DefaultInterests...)
	}
	s.profiles[p.UserID] = cloneProfile(p)
	return cloneProfile(p), nil
}

func (s *InMemoryProfileStore) UpdateName(_ context.Context, userID string, name *string) (Profile, error) {
	return s.update(userID, func(p *Profile) { p.Name = name })
}

func (s *InMemoryProfileStore) UpdateInterests(_ context.Context, userID string, interests []string) (Profile, error) {
	return s.update(userID, func(p *Profile) { p.Interests = append([]string{}, interests...) })
}

func (s *InMemoryProfileStore) update(userID string, fn func(*Profile)) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = time.Now().UTC()
	s.profiles[userID] = p
	return cloneProfile(p), nil
}

// username is used by the in-memory review store to emulate the profiles join.
func (s *InMemoryProfileStore) username(userID string) *string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[userID].Username
}

func cloneProfile(p Profile) Profile {
	p.Interests = append([]string{}, p.Interests...)
	return p
}
