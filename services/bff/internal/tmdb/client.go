// Package tmdb is a read-only client for the TMDb v3 REST API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	maxBodyBytes    = 4 << 20
)

var (
	// ErrFetchFailed wraps transport errors and non-2xx answers.
	ErrFetchFailed = errors.New("tmdb: fetch failed")
	// ErrMalformedPayload is returned when a response does not match the expected schema.
	ErrMalformedPayload = errors.New("tmdb: malformed payload")
	// ErrNotFound is a 404 for a single resource. It also matches ErrFetchFailed.
	ErrNotFound = errors.New("tmdb: not found")
	// ErrNotConfigured means no API key was supplied. Public operations map it to empty results.
	ErrNotConfigured = errors.New("tmdb: api key not configured")
)

// Window selects the trending period.
type Window string

const (
	WindowDay  Window = "day"
	WindowWeek Window = "week"
)

type Options struct {
	APIKey     string
	BaseURL    string
	Language   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
	log      *zap.Logger
}

// New creates a client. A missing API key is logged once; the client then
// answers every call with empty results and never touches the network.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   strings.TrimSpace(opts.APIKey),
		language: opts.Language,
		http:     opts.HTTPClient,
		log:      opts.Logger,
	}
	if c.apiKey == "" {
		c.log.Warn("TMDB_API_KEY is not set; catalog results will be empty")
	}
	return c
}

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) PopularMovies(ctx context.Context, page int) (MoviePage, error) {
	return c.moviePage(ctx, "fetch popular movies", "/movie/popular", pageParams(page))
}

func (c *Client) TrendingMovies(ctx context.Context, window Window, page int) (MoviePage, error) {
	if window != WindowWeek {
		window = WindowDay
	}
	return c.moviePage(ctx, "fetch trending movies", "/trending/movie/"+string(window), pageParams(page))
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (MoviePage, error) {
	return c.moviePage(ctx, "fetch top rated movies", "/movie/top_rated", pageParams(page))
}

// SearchMovies runs a title search. Adult titles are excluded.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "0")
	return c.moviePage(ctx, "search movies", "/search/movie", params)
}

// MovieDetails returns the full record. With no API key it returns a zero Movie.
func (c *Client) MovieDetails(ctx context.Context, id int64) (Movie, error) {
	var m Movie
	err := c.get(ctx, "fetch movie details", fmt.Sprintf("/movie/%d", id), nil, &m)
	if errors.Is(err, ErrNotConfigured) {
		return Movie{}, nil
	}
	return m, err
}

func (c *Client) MovieCredits(ctx context.Context, id int64) (Credits, error) {
	var cr Credits
	err := c.get(ctx, "fetch movie credits", fmt.Sprintf("/movie/%d/credits", id), nil, &cr)
	if errors.Is(err, ErrNotConfigured) {
		return Credits{ID: id, Cast: []Credit{}, Crew: []Credit{}}, nil
	}
	return cr, err
}

func (c *Client) MovieReviews(ctx context.Context, id int64, page int) (ReviewPage, error) {
	var rp ReviewPage
	err := c.get(ctx, "fetch movie reviews", fmt.Sprintf("/movie/%d/reviews", id), pageParams(page), &rp)
	if errors.Is(err, ErrNotConfigured) {
		return ReviewPage{ID: id, Page: 1, Results: []Review{}}, nil
	}
	return rp, err
}

func (c *Client) MovieImages(ctx context.Context, id int64) (Images, error) {
	var im Images
	err := c.get(ctx, "fetch movie images", fmt.Sprintf("/movie/%d/images", id), nil, &im)
	if errors.Is(err, ErrNotConfigured) {
		return Images{ID: id, Backdrops: []Image{}, Posters: []Image{}}, nil
	}
	return im, err
}

func (c *Client) moviePage(ctx context.Context, op, path string, params url.Values) (MoviePage, error) {
	var p MoviePage
	err := c.get(ctx, op, path, params, &p)
	if errors.Is(err, ErrNotConfigured) {
		return MoviePage{Page: 1, Results: []Movie{}}, nil
	}
	return p, err
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// get performs one GET, decodes into dst and validates it.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, dst validator) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", op, err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, ErrFetchFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%s: %w: status %d", op, ErrFetchFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedPayload, err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedPayload, err)
	}
	return nil
}
