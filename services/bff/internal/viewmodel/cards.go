package viewmodel

import "github.com/example/movie-platform/services/bff/internal/tmdb"

// MovieCard is the compact movie shape used by grids, search results and the hero.
type MovieCard struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Year   int     `json:"year,omitempty"`
	Rating float64 `json:"rating"`
	// CatalogRating is the catalog's own 0-10 average.
	CatalogRating float64 `json:"catalog_rating"`
	Overview      string  `json:"overview,omitempty"`
	Poster        string  `json:"poster,omitempty"`
	Backdrop      string  `json:"backdrop,omitempty"`
}

// Card converts a catalog movie. Rating is on the 0-5 scale, one decimal.
// A missing backdrop falls back to the poster.
func Card(m tmdb.Movie) MovieCard {
	backdrop := tmdb.ImageURL(m.BackdropPath, tmdb.SizeW500)
	if backdrop == "" {
		backdrop = tmdb.ImageURL(m.PosterPath, tmdb.SizeW500)
	}
	return MovieCard{
		ID:            m.ID,
		Title:         m.Title,
		Year:          ReleaseYear(m.ReleaseDate),
		Rating:        Round1(m.VoteAverage / 2),
		CatalogRating: m.VoteAverage,
		Overview:      m.Overview,
		Poster:        tmdb.ImageURL(m.PosterPath, tmdb.SizeW500),
		Backdrop:      backdrop,
	}
}

func Cards(movies []tmdb.Movie) []MovieCard {
	out := make([]MovieCard, 0, len(movies))
	for _, m := range movies {
		out = append(out, Card(m))
	}
	return out
}
