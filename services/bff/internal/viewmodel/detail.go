package viewmodel

import (
	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

const (
	SidebarCastLen = 10
	GalleryLen     = 12
)

// Hero is the top block of the movie detail page.
type Hero struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Overview      string   `json:"overview"`
	Rating        float64  `json:"rating"`
	CatalogRating float64  `json:"catalog_rating"`
	VoteCount     int      `json:"vote_count"`
	Year          int      `json:"year,omitempty"`
	Runtime       string   `json:"runtime,omitempty"`
	Genres        []string `json:"genres"`
	Director      string   `json:"director,omitempty"`
	Cast          []string `json:"cast"`
	Poster        string   `json:"poster,omitempty"`
	Backdrop      string   `json:"backdrop,omitempty"`
	Budget        int64    `json:"budget,omitempty"`
	Revenue       int64    `json:"revenue,omitempty"`
}

type Gallery struct {
	Backdrops []string `json:"backdrops"`
	Posters   []string `json:"posters"`
}

// Detail is the whole movie detail page.
type Detail struct {
	Hero        Hero         `json:"hero"`
	CastAndCrew []Member     `json:"cast_and_crew"`
	CastCount   int          `json:"cast_count"`
	CrewCount   int          `json:"crew_count"`
	SidebarCast []Member     `json:"sidebar_cast"`
	Reviews     []ReviewItem `json:"reviews"`
	ReviewCount int          `json:"review_count"`
	Gallery     Gallery      `json:"gallery"`
	MyReview    *MyReview    `json:"my_review,omitempty"`
	InWatchlist *bool        `json:"in_watchlist,omitempty"`
	Stale       bool         `json:"stale,omitempty"`
}

// MyReview pre-fills the review form for a caller who already reviewed the movie.
type MyReview struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// DetailInput is everything fetched for one detail view.
type DetailInput struct {
	Movie    tmdb.Movie
	Credits  tmdb.Credits
	External []tmdb.Review
	Images   tmdb.Images
	Local    []backend.Review
	Rules    []RoleRule
}

// BuildDetail assembles the page. The blended rating is recomputed from the
// given local reviews every time.
func BuildDetail(in DetailInput) Detail {
	m := in.Movie
	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}

	members := CastAndCrew(in.Credits, in.Rules)
	castCount, crewCount := CountRoles(members)

	sidebar := make([]Member, 0, SidebarCastLen)
	for _, mem := range members {
		if mem.Role != RoleActor || len(sidebar) == SidebarCastLen {
			break
		}
		sidebar = append(sidebar, mem)
	}

	reviews := MergeReviews(in.Local, in.External)

	return Detail{
		Hero: Hero{
			ID:            m.ID,
			Title:         m.Title,
			Overview:      m.Overview,
			Rating:        Round1(BlendedRating(m.VoteAverage, m.VoteCount, LocalRatings(in.Local))),
			CatalogRating: m.VoteAverage,
			VoteCount:     m.VoteCount,
			Year:          ReleaseYear(m.ReleaseDate),
			Runtime:       FormatRuntime(m.Runtime),
			Genres:        genres,
			Director:      DirectorName(in.Credits.Crew),
			Cast:          TopCast(in.Credits.Cast, HeroCastLen),
			Poster:        tmdb.ImageURL(m.PosterPath, tmdb.SizeW500),
			Backdrop:      tmdb.ImageURL(m.BackdropPath, tmdb.SizeOriginal),
			Budget:        m.Budget,
			Revenue:       m.Revenue,
		},
		CastAndCrew: members,
		CastCount:   castCount,
		CrewCount:   crewCount,
		SidebarCast: sidebar,
		Reviews:     reviews,
		ReviewCount: len(reviews),
		Gallery: Gallery{
			Backdrops: imageURLs(in.Images.Backdrops, tmdb.SizeW500),
			Posters:   imageURLs(in.Images.Posters, tmdb.SizeW342),
		},
	}
}

// WithMyReview attaches the caller's own review from local, if any.
func (d Detail) WithMyReview(userID string, local []backend.Review) Detail {
	if userID == "" {
		return d
	}
	for _, r := range local {
		if r.UserID == userID {
			return d.WithReview(r)
		}
	}
	return d
}

// WithReview pre-fills the review form from r.
func (d Detail) WithReview(r backend.Review) Detail {
	mine := MyReview{Rating: r.Rating}
	if r.Content != nil {
		mine.Content = *r.Content
	}
	d.MyReview = &mine
	return d
}

func imageURLs(images []tmdb.Image, size tmdb.Size) []string {
	out := make([]string, 0, GalleryLen)
	for _, im := range images {
		if len(out) == GalleryLen {
			break
		}
		if u := tmdb.ImageURL(im.FilePath, size); u != "" {
			out = append(out, u)
		}
	}
	return out
}
