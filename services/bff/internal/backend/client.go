// Package backend is the bff's HTTP client for the social service, which owns
// profiles, reviews and watchlist rows. Calls act on behalf of the caller by
// forwarding their bearer token.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/httpserver"
)

const maxBodyBytes = 2 << 20

var (
	// ErrRequestFailed wraps transport errors and non-2xx answers other than 404.
	ErrRequestFailed = errors.New("backend: request failed")
	// ErrNotFound is the one status the client distinguishes.
	ErrNotFound = errors.New("backend: not found")
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		log:     opts.Logger,
	}
}

func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/v1/profiles/me", token, nil, &p)
	return p, err
}

func (c *Client) UpdateName(ctx context.Context, token string, name *string) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodPatch, "/v1/profiles/me/name", token, map[string]any{"name": name}, &p)
	return p, err
}

func (c *Client) UpdateInterests(ctx context.Context, token string, interests []string) (Profile, error) {
	if interests == nil {
		interests = []string{}
	}
	var p Profile
	err := c.do(ctx, http.MethodPut, "/v1/profiles/me/interests", token, map[string]any{"interests": interests}, &p)
	return p, err
}

// Reviews lists a movie's local reviews newest first. No identity is needed.
func (c *Client) Reviews(ctx context.Context, movieID int64) ([]Review, error) {
	var env reviewsEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/reviews/"+itoa(movieID), "", nil, &env); err != nil {
		return nil, err
	}
	if env.Reviews == nil {
		env.Reviews = []Review{}
	}
	return env.Reviews, nil
}

// MyReview returns the caller's review of a movie; found is false when none exists.
func (c *Client) MyReview(ctx context.Context, token string, movieID int64) (Review, bool, error) {
	var r Review
	err := c.do(ctx, http.MethodGet, "/v1/reviews/"+itoa(movieID)+"/mine", token, nil, &r)
	if errors.Is(err, ErrNotFound) {
		return Review{}, false, nil
	}
	if err != nil {
		return Review{}, false, err
	}
	return r, true, nil
}

// UpsertReview writes the caller's review. created reports a first submission.
func (c *Client) UpsertReview(ctx context.Context, token string, movieID int64, rating int, content *string) (Review, bool, error) {
	var env upsertReviewEnvelope
	body := map[string]any{"rating": rating, "content": content}
	if err := c.do(ctx, http.MethodPut, "/v1/reviews/"+itoa(movieID), token, body, &env); err != nil {
		return Review{}, false, err
	}
	return env.Review, env.Created, nil
}

func (c *Client) Watchlist(ctx context.Context, token string) ([]WatchlistEntry, error) {
	var env watchlistEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/watchlist", token, nil, &env); err != nil {
		return nil, err
	}
	if env.Entries == nil {
		env.Entries = []WatchlistEntry{}
	}
	return env.Entries, nil
}

func (c *Client) InWatchlist(ctx context.Context, token string, movieID int64) (bool, error) {
	var env containsEnvelope
	err := c.do(ctx, http.MethodGet, "/v1/watchlist/"+itoa(movieID), token, nil, &env)
	return env.InWatchlist, err
}

func (c *Client) AddToWatchlist(ctx context.Context, token string, movieID int64, title string, posterPath *string) (WatchlistEntry, error) {
	var e WatchlistEntry
	body := map[string]any{"title": title, "poster_path": posterPath}
	err := c.do(ctx, http.MethodPut, "/v1/watchlist/"+itoa(movieID), token, body, &e)
	return e, err
}

func (c *Client) RemoveFromWatchlist(ctx context.Context, token string, movieID int64) error {
	return c.do(ctx, http.MethodDelete, "/v1/watchlist/"+itoa(movieID), token, nil, nil)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// do sends one request. body and dst may be nil. No retries.
func (c *Client) do(ctx context.Context, method, path, token string, body, dst any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := httpserver.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Debug("backend error body", zap.String("path", path), zap.ByteString("body", msg))
		return fmt.Errorf("%s %s: %w: status %d", method, path, ErrRequestFailed, resp.StatusCode)
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%s %s: %w: decode: %v", method, path, ErrRequestFailed, err)
	}
	return nil
}
