package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Options{BaseURL: server.URL})
}

func TestProfile_ForwardsToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/profiles/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user_id":"u1","username":"ana","name":null,"interests":["Action"]}`))
	}))

	p, err := client.Profile(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	require.NotNil(t, p.Username)
	assert.Equal(t, "ana", *p.Username)
	assert.Nil(t, p.Name)
}

func TestReviews_PublicAndEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reviews/550", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"reviews":null}`))
	}))

	reviews, err := client.Reviews(context.Background(), 550)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestMyReview_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, found, err := client.MyReview(context.Background(), "tok", 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertReview_Body(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(4), body["rating"])
		assert.Nil(t, body["content"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"review":{"id":"r1","rating":4,"movie_id":7},"created":true}`))
	}))

	r, created, err := client.UpsertReview(context.Background(), "tok", 7, 4, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r1", r.ID)
}

func TestAddToWatchlist(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/watchlist/550", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"Fight Club","poster_path":"/p.jpg"}`, string(b))
		_, _ = w.Write([]byte(`{"id":"w1","movie_id":550,"title":"Fight Club","poster_path":"/p.jpg"}`))
	}))

	poster := "/p.jpg"
	e, err := client.AddToWatchlist(context.Background(), "tok", 550, "Fight Club", &poster)
	require.NoError(t, err)
	assert.Equal(t, "w1", e.ID)
}

func TestRemoveFromWatchlist_NoContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, client.RemoveFromWatchlist(context.Background(), "tok", 3))
}

func TestServerError_IsRequestFailed(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Watchlist(context.Background(), "tok")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUnreachable_IsRequestFailed(t *testing.T) {
	client := New(Options{BaseURL: "http://127.0.0.1:1"})
	_, err := client.InWatchlist(context.Background(), "tok", 1)
	require.ErrorIs(t, err, ErrRequestFailed)
}
