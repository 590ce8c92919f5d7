package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/cache"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

var errUpstream = errors.New("upstream down")

type stubCatalog struct {
	popular    tmdb.MoviePage
	trending   tmdb.MoviePage
	search     tmdb.MoviePage
	movie      tmdb.Movie
	credits    tmdb.Credits
	reviews    tmdb.ReviewPage
	images     tmdb.Images
	stats      tmdb.Stats
	err        error
	creditsErr error

	mu      sync.Mutex
	calls   int
	windows []tmdb.Window
}

func (s *stubCatalog) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *stubCatalog) PopularMovies(context.Context, int) (tmdb.MoviePage, error) {
	s.hit()
	return s.popular, s.err
}

func (s *stubCatalog) TrendingMovies(_ context.Context, w tmdb.Window, _ int) (tmdb.MoviePage, error) {
	s.hit()
	s.mu.Lock()
	s.windows = append(s.windows, w)
	s.mu.Unlock()
	return s.trending, s.err
}

func (s *stubCatalog) SearchMovies(context.Context, string, int) (tmdb.MoviePage, error) {
	s.hit()
	return s.search, s.err
}

func (s *stubCatalog) MovieDetails(context.Context, int64) (tmdb.Movie, error) {
	s.hit()
	return s.movie, s.err
}

func (s *stubCatalog) MovieCredits(context.Context, int64) (tmdb.Credits, error) {
	s.hit()
	if s.creditsErr != nil {
		return tmdb.Credits{}, s.creditsErr
	}
	return s.credits, s.err
}

func (s *stubCatalog) MovieReviews(context.Context, int64, int) (tmdb.ReviewPage, error) {
	s.hit()
	return s.reviews, s.err
}

func (s *stubCatalog) MovieImages(context.Context, int64) (tmdb.Images, error) {
	s.hit()
	return s.images, s.err
}

func (s *stubCatalog) Stats(context.Context) tmdb.Stats {
	s.hit()
	return s.stats
}

type stubVideos struct {
	id    string
	found bool
	err   error
	query string
}

func (s *stubVideos) SearchVideo(_ context.Context, q string, _ int) (string, bool, error) {
	s.query = q
	return s.id, s.found, s.err
}

type stubBackend struct {
	profile   backend.Profile
	reviews   []backend.Review
	watchlist []backend.WatchlistEntry
	in        bool
	created   bool
	mine      *backend.Review
	mineErr   error
	err       error

	mu     sync.Mutex
	calls  int
	tokens []string
	added  []string
}

func (s *stubBackend) hit(token string) {
	s.mu.Lock()
	s.calls++
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()
}

func (s *stubBackend) Profile(_ context.Context, token string) (backend.Profile, error) {
	s.hit(token)
	return s.profile, s.err
}

func (s *stubBackend) UpdateName(_ context.Context, token string, name *string) (backend.Profile, error) {
	s.hit(token)
	p := s.profile
	p.Name = name
	return p, s.err
}

func (s *stubBackend) UpdateInterests(_ context.Context, token string, interests []string) (backend.Profile, error) {
	s.hit(token)
	p := s.profile
	p.Interests = interests
	return p, s.err
}

func (s *stubBackend) Reviews(context.Context, int64) ([]backend.Review, error) {
	s.hit("")
	return s.reviews, s.err
}

func (s *stubBackend) MyReview(_ context.Context, token string, _ int64) (backend.Review, bool, error) {
	s.hit(token)
	if s.mineErr != nil || s.mine == nil {
		return backend.Review{}, false, s.mineErr
	}
	return *s.mine, true, nil
}

func (s *stubBackend) UpsertReview(_ context.Context, token string, movieID int64, rating int, content *string) (backend.Review, bool, error) {
	s.hit(token)
	return backend.Review{ID: "r1", MovieID: movieID, Rating: rating, Content: content}, s.created, s.err
}

func (s *stubBackend) Watchlist(_ context.Context, token string) ([]backend.WatchlistEntry, error) {
	s.hit(token)
	return s.watchlist, s.err
}

func (s *stubBackend) InWatchlist(_ context.Context, token string, _ int64) (bool, error) {
	s.hit(token)
	return s.in, s.err
}

func (s *stubBackend) AddToWatchlist(_ context.Context, token string, movieID int64, title string, posterPath *string) (backend.WatchlistEntry, error) {
	s.hit(token)
	s.mu.Lock()
	s.added = append(s.added, title)
	s.mu.Unlock()
	return backend.WatchlistEntry{ID: "w1", MovieID: movieID, Title: title, PosterPath: posterPath, CreatedAt: time.Now()}, s.err
}

func (s *stubBackend) RemoveFromWatchlist(_ context.Context, token string, _ int64) error {
	s.hit(token)
	return s.err
}

type recordingEvents struct {
	mu       sync.Mutex
	subjects []string
	props    []map[string]any
}

func (e *recordingEvents) Publish(subject, _, _ string, props map[string]any) {
	e.mu.Lock()
	e.subjects = append(e.subjects, subject)
	e.props = append(e.props, props)
	e.mu.Unlock()
}

// setupReq builds a request with chi URL params and, when userID is set, a
// signed-in session.
func setupReq(method, url, body string, params map[string]string, userID string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, rdr)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		s, _ := auth.Anonymous().SignIn("tok-"+userID, &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}, Email: userID + "@example.org"})
		ctx = auth.WithSession(auth.WithUserID(ctx, userID), s)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

type notificationBody struct {
	Notification struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Variant     string `json:"variant"`
	} `json:"notification"`
}

func newDeps(c *stubCatalog, b *stubBackend, ev *recordingEvents) Deps {
	d := Deps{Catalog: c, Videos: &stubVideos{}, Backend: b, Cache: cache.NewTTLCache(time.Minute)}
	if ev != nil {
		d.Events = ev
	}
	return d
}

func TestHome_FeaturesFirstPopular(t *testing.T) {
	c := &stubCatalog{popular: tmdb.MoviePage{Results: []tmdb.Movie{
		{ID: 1, Title: "One", VoteAverage: 7.37, PosterPath: "/one.jpg"},
		{ID: 2, Title: "Two"},
	}}}
	h := Home(newDeps(c, &stubBackend{}, nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/home", "", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp homeResponse
	decodeBody(t, rr, &resp)
	if resp.Hero == nil || resp.Hero.ID != 1 || resp.Hero.Rating != 3.7 {
		t.Fatalf("unexpected hero: %+v", resp.Hero)
	}
	if resp.Hero.Backdrop != "https://image.tmdb.org/t/p/w500/one.jpg" {
		t.Fatalf("backdrop should fall back to poster, got %q", resp.Hero.Backdrop)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d", resp.Count)
	}

	// second request is served from cache
	h.ServeHTTP(httptest.NewRecorder(), setupReq(http.MethodGet, "/v1/home", "", nil, ""))
	if c.calls != 1 {
		t.Fatalf("expected 1 catalog call, got %d", c.calls)
	}
}

func TestHome_DegradesOnFailure(t *testing.T) {
	c := &stubCatalog{err: errUpstream}
	rr := httptest.NewRecorder()
	Home(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/home", "", nil, ""))

	var resp homeResponse
	decodeBody(t, rr, &resp)
	if rr.Code != http.StatusOK || !resp.Degraded || resp.Hero != nil || resp.Movies == nil {
		t.Fatalf("unexpected response %d %+v", rr.Code, resp)
	}
}

func TestTrending_UsesDayWindow(t *testing.T) {
	c := &stubCatalog{trending: tmdb.MoviePage{Results: []tmdb.Movie{{ID: 9, Title: "Nine"}}}}
	rr := httptest.NewRecorder()
	Trending(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/trending", "", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(c.windows) != 1 || c.windows[0] != tmdb.WindowDay {
		t.Fatalf("windows = %v", c.windows)
	}
}

func TestStats_Estimated(t *testing.T) {
	c := &stubCatalog{stats: tmdb.FallbackStats}
	rr := httptest.NewRecorder()
	Stats(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/stats", "", nil, ""))

	var resp tmdb.Stats
	decodeBody(t, rr, &resp)
	if !resp.Estimated || resp.TotalMovies != 850 {
		t.Fatalf("unexpected stats %+v", resp)
	}
}

func TestSearch_BlankQuerySkipsCatalog(t *testing.T) {
	c := &stubCatalog{}
	rr := httptest.NewRecorder()
	Search(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/search?q=%20", "", nil, ""))

	if rr.Code != http.StatusOK || c.calls != 0 {
		t.Fatalf("code=%d calls=%d", rr.Code, c.calls)
	}
}

func TestSearch_PublishesEvent(t *testing.T) {
	c := &stubCatalog{search: tmdb.MoviePage{Results: []tmdb.Movie{{ID: 5, Title: "Heat"}}}}
	ev := &recordingEvents{}
	rr := httptest.NewRecorder()
	Search(newDeps(c, &stubBackend{}, ev)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/search?q=heat", "", nil, ""))

	var resp searchResponse
	decodeBody(t, rr, &resp)
	if len(resp.Results) != 1 || resp.Query != "heat" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(ev.subjects) != 1 || ev.subjects[0] != analytics.SubjectSearchPerformed {
		t.Fatalf("events = %v", ev.subjects)
	}
	if ev.props[0]["results_count"] != 1 || ev.props[0]["live"] != false {
		t.Fatalf("props = %v", ev.props[0])
	}
}

func detailCatalog() *stubCatalog {
	return &stubCatalog{
		movie: tmdb.Movie{ID: 550, Title: "Fight Club", VoteAverage: 8.0, VoteCount: 0, Runtime: 139},
		credits: tmdb.Credits{
			Cast: []tmdb.Credit{{ID: 1, Name: "Ed", Character: "Narrator"}},
			Crew: []tmdb.Credit{{ID: 2, Name: "Jeff", Job: "Director of Photography", Department: "Camera"}},
		},
		reviews: tmdb.ReviewPage{Results: []tmdb.Review{{ID: "e1", Author: "critic"}}},
		images:  tmdb.Images{Backdrops: []tmdb.Image{}, Posters: []tmdb.Image{}},
	}
}

func TestMovieDetail_OK(t *testing.T) {
	c := detailCatalog()
	content := "great"
	own := backend.Review{ID: "l1", UserID: "u1", Rating: 3, Content: &content}
	b := &stubBackend{in: true, mine: &own, reviews: []backend.Review{
		own,
		{ID: "l2", UserID: "u2", Rating: 5},
	}}
	ev := &recordingEvents{}
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(c, b, ev)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/550", "", map[string]string{"movie_id": "550"}, "u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Hero struct {
			Rating  float64 `json:"rating"`
			Runtime string  `json:"runtime"`
		} `json:"hero"`
		CastAndCrew []struct {
			Role string `json:"role"`
		} `json:"cast_and_crew"`
		Reviews     []struct{ Source string } `json:"reviews"`
		MyReview    *struct{ Rating int }     `json:"my_review"`
		InWatchlist *bool                     `json:"in_watchlist"`
	}
	decodeBody(t, rr, &resp)

	if resp.Hero.Rating != 4.0 || resp.Hero.Runtime != "2h 19m" {
		t.Fatalf("hero = %+v", resp.Hero)
	}
	if len(resp.CastAndCrew) != 2 || resp.CastAndCrew[1].Role != "cinematographer" {
		t.Fatalf("cast and crew = %+v", resp.CastAndCrew)
	}
	if len(resp.Reviews) != 3 || resp.Reviews[0].Source != "local" || resp.Reviews[2].Source != "external" {
		t.Fatalf("reviews = %+v", resp.Reviews)
	}
	if resp.MyReview == nil || resp.MyReview.Rating != 3 {
		t.Fatalf("my review = %+v", resp.MyReview)
	}
	if resp.InWatchlist == nil || !*resp.InWatchlist {
		t.Fatal("expected in_watchlist=true")
	}
	if len(ev.subjects) != 1 || ev.subjects[0] != analytics.SubjectMovieViewed {
		t.Fatalf("events = %v", ev.subjects)
	}
}

func TestMovieDetail_FailureWithoutLastView(t *testing.T) {
	c := detailCatalog()
	c.creditsErr = errUpstream
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/550", "", map[string]string{"movie_id": "550"}, ""))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Reviews     []any `json:"reviews"`
		CastAndCrew []any `json:"cast_and_crew"`
	}
	decodeBody(t, rr, &resp)
	if resp.Error.Code != "UPSTREAM_UNAVAILABLE" || resp.Reviews == nil || resp.CastAndCrew == nil {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestMovieDetail_FailureServesLastView(t *testing.T) {
	c := detailCatalog()
	deps := newDeps(c, &stubBackend{}, nil)
	h := MovieDetail(deps)
	req := func() *http.Request {
		return setupReq(http.MethodGet, "/v1/movies/550", "", map[string]string{"movie_id": "550"}, "")
	}

	h.ServeHTTP(httptest.NewRecorder(), req())

	c.creditsErr = errUpstream
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Stale bool `json:"stale"`
		Hero  struct {
			Title string `json:"title"`
		} `json:"hero"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Stale || resp.Hero.Title != "Fight Club" {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestMovieDetail_NotFoundWhenCatalogEmpty(t *testing.T) {
	c := &stubCatalog{}
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/1", "", map[string]string{"movie_id": "1"}, ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestMovieDetail_BadID(t *testing.T) {
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(&stubCatalog{}, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/abc", "", map[string]string{"movie_id": "abc"}, ""))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTrailer(t *testing.T) {
	c := &stubCatalog{movie: tmdb.Movie{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15"}}
	v := &stubVideos{id: "abc123", found: true}
	deps := newDeps(c, &stubBackend{}, nil)
	deps.Videos = v

	rr := httptest.NewRecorder()
	Trailer(deps).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/550/trailer", "", map[string]string{"movie_id": "550"}, ""))

	var resp trailerResponse
	decodeBody(t, rr, &resp)
	if !resp.Found || resp.EmbedURL != "https://www.youtube.com/embed/abc123?autoplay=1" {
		t.Fatalf("unexpected trailer %+v", resp)
	}
	if v.query != "Fight Club 1999 official trailer" {
		t.Fatalf("query = %q", v.query)
	}
}

func TestTrailer_NotFound(t *testing.T) {
	c := &stubCatalog{movie: tmdb.Movie{ID: 1, Title: "Obscure"}}
	deps := newDeps(c, &stubBackend{}, nil)
	rr := httptest.NewRecorder()
	Trailer(deps).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/1/trailer", "", map[string]string{"movie_id": "1"}, ""))

	var resp trailerResponse
	decodeBody(t, rr, &resp)
	if rr.Code != http.StatusOK || resp.Found || resp.EmbedURL != "" {
		t.Fatalf("unexpected trailer %d %+v", rr.Code, resp)
	}
}

func TestMovieDetail_UnknownMovieIs404(t *testing.T) {
	c := detailCatalog()
	c.err = fmt.Errorf("fetch movie details: %w: %w", tmdb.ErrNotFound, tmdb.ErrFetchFailed)
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(c, &stubBackend{}, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/999999999", "", map[string]string{"movie_id": "999999999"}, ""))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, rr, &resp)
	if resp.Error.Code != "MOVIE_NOT_FOUND" {
		t.Fatalf("code = %q", resp.Error.Code)
	}
}

func TestTrailer_UnknownMovieIs404(t *testing.T) {
	c := &stubCatalog{err: fmt.Errorf("fetch movie details: %w", tmdb.ErrNotFound)}
	v := &stubVideos{}
	deps := newDeps(c, &stubBackend{}, nil)
	deps.Videos = v

	rr := httptest.NewRecorder()
	Trailer(deps).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/999999999/trailer", "", map[string]string{"movie_id": "999999999"}, ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if v.query != "" {
		t.Fatalf("video search should not run, got query %q", v.query)
	}
}

func TestMovieDetail_OwnReviewFromBackend(t *testing.T) {
	content := "rewatched"
	b := &stubBackend{mine: &backend.Review{ID: "l9", UserID: "u1", Rating: 4, Content: &content}}
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(detailCatalog(), b, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/550", "", map[string]string{"movie_id": "550"}, "u1"))

	var resp struct {
		MyReview *struct {
			Rating  int    `json:"rating"`
			Content string `json:"content"`
		} `json:"my_review"`
	}
	decodeBody(t, rr, &resp)
	if resp.MyReview == nil || resp.MyReview.Rating != 4 || resp.MyReview.Content != "rewatched" {
		t.Fatalf("my review = %+v", resp.MyReview)
	}
}

func TestMovieDetail_OwnReviewLookupFailureUsesList(t *testing.T) {
	b := &stubBackend{mineErr: errUpstream, reviews: []backend.Review{{ID: "l1", UserID: "u1", Rating: 2}}}
	rr := httptest.NewRecorder()
	MovieDetail(newDeps(detailCatalog(), b, nil)).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/550", "", map[string]string{"movie_id": "550"}, "u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		MyReview *struct{ Rating int } `json:"my_review"`
	}
	decodeBody(t, rr, &resp)
	if resp.MyReview == nil || resp.MyReview.Rating != 2 {
		t.Fatalf("my review = %+v", resp.MyReview)
	}
}

func TestSignedIn_ExpiredSessionIsSignedOut(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	expired := auth.Session{State: auth.StateSignedIn, UserID: "u1", Token: "tok-u1", ExpiresAt: time.Now().Add(-time.Minute)}
	req = req.WithContext(auth.WithSession(req.Context(), expired))

	s, ok := signedIn(req)
	if ok || s.State != auth.StateSignedOut || s.Token != "" {
		t.Fatalf("expected signed out session, got ok=%v %+v", ok, s)
	}

	live := expired
	live.ExpiresAt = time.Now().Add(time.Hour)
	req = req.WithContext(auth.WithSession(req.Context(), live))
	if _, ok := signedIn(req); !ok {
		t.Fatal("expected unexpired session to be signed in")
	}
}
