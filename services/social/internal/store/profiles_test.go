package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func strp(s string) *string { return &s }

func TestInMemoryProfileStore_GetMissing(t *testing.T) {
	s := NewInMemoryProfileStore()
	if _, err := s.Get(context.Background(), "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryProfileStore_CreateDefaults(t *testing.T) {
	s := NewInMemoryProfileStore()
	ctx := context.Background()

	p, err := s.Create(ctx, Profile{UserID: "user-a", Username: strp("ana")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(p.Interests) != 4 || p.Interests[0] != "Action" || p.Interests[3] != "Sci-Fi" {
		t.Fatalf("expected default interests, got %v", p.Interests)
	}
	if p.Name != nil {
		t.Fatalf("expected nil name, got %q", *p.Name)
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	// Mutating the returned slice must not leak into the store.
	p.Interests[0] = "Horror"
	again, _ := s.Get(ctx, "user-a")
	if again.Interests[0] != "Action" {
		t.Fatalf("store state leaked: %v", again.Interests)
	}
}

func TestInMemoryProfileStore_CreateIsIdempotent(t *testing.T) {
	s := NewInMemoryProfileStore()
	ctx := context.Background()

	_, _ = s.Create(ctx, Profile{UserID: "user-a", Username: strp("ana")})
	_, _ = s.UpdateName(ctx, "user-a", strp("Ana Lima"))

	p, err := s.Create(ctx, Profile{UserID: "user-a", Username: strp("other")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name == nil || *p.Name != "Ana Lima" || *p.Username != "ana" {
		t.Fatalf("second create must return the existing profile, got %+v", p)
	}
}

func TestInMemoryProfileStore_Updates(t *testing.T) {
	s := NewInMemoryProfileStore()
	ctx := context.Background()

	if _, err := s.UpdateName(ctx, "ghost", strp("x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = s.Create(ctx, Profile{UserID: "user-a"})
	p, err := s.UpdateInterests(ctx, "user-a", []string{"Horror"})
	if err != nil {
		t.Fatalf("update interests: %v", err)
	}
	if len(p.Interests) != 1 || p.Interests[0] != "Horror" {
		t.Fatalf("unexpected interests %v", p.Interests)
	}

	p, err = s.UpdateName(ctx, "user-a", nil)
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if p.Name != nil {
		t.Fatal("expected name cleared")
	}
}

func TestMissingColumns(t *testing.T) {
	missing := MissingColumns([]string{"id", "USERNAME", "created_at"}, RequiredProfileColumns)
	want := []string{"interests", "name", "updated_at"}
	if len(missing) != len(want) {
		t.Fatalf("expected %v, got %v", want, missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, missing)
		}
	}
	if got := MissingColumns(RequiredProfileColumns, RequiredProfileColumns); len(got) != 0 {
		t.Fatalf("expected none missing, got %v", got)
	}
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"profiles", "user_reviews", "watchlist"} {
		if !strings.Contains(Schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("schema does not create %s", table)
		}
	}
}

// TestStoreInterfaces ensures both implementations satisfy the interfaces.
func TestStoreInterfaces(t *testing.T) {
	var _ ProfileStore = (*InMemoryProfileStore)(nil)
	var _ ProfileStore = (*PostgresProfileStore)(nil)
	var _ ReviewStore = (*InMemoryReviewStore)(nil)
	var _ ReviewStore = (*PostgresReviewStore)(nil)
	var _ WatchlistStore = (*InMemoryWatchlistStore)(nil)
	var _ WatchlistStore = (*PostgresWatchlistStore)(nil)
}
