package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

func ptr[T any](v T) *T { return &v }

func TestMergeReviews(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	local := []backend.Review{
		{ID: "l2", Rating: 5, Content: ptr("great"), Username: ptr("ana"), CreatedAt: at},
		{ID: "l1", Rating: 3, CreatedAt: at},
	}
	external := []tmdb.Review{
		{ID: "e1", Author: "critic", Content: "fine", AuthorDetails: tmdb.AuthorDetails{Rating: ptr(7.0)}},
		{ID: "e2", Content: "meh"},
		{ID: "e1", Author: "critic", Content: "fine"},
	}

	got := MergeReviews(local, external)
	require.Len(t, got, 5)

	assert.Equal(t, SourceLocal, got[0].Source)
	assert.Equal(t, "ana", got[0].Author)
	assert.Equal(t, 5.0, *got[0].Rating)
	assert.Equal(t, "great", got[0].Content)
	assert.Equal(t, "2024-05-01T12:00:00Z", got[0].CreatedAt)

	assert.Equal(t, AnonymousUser, got[1].Author)
	assert.Empty(t, got[1].Content)

	assert.Equal(t, SourceExternal, got[2].Source)
	assert.Equal(t, 3.5, *got[2].Rating)
	assert.Nil(t, got[3].Rating)
	assert.Equal(t, AnonymousUser, got[3].Author)
	assert.Equal(t, "e1", got[4].ID)
}

func TestMergeReviews_Empty(t *testing.T) {
	got := MergeReviews(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLocalRatings(t *testing.T) {
	assert.Equal(t, []int{4, 2}, LocalRatings([]backend.Review{{Rating: 4}, {Rating: 2}}))
}
