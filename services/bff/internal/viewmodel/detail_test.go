package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

func detailInput() DetailInput {
	return DetailInput{
		Movie: tmdb.Movie{
			ID: 550, Title: "Fight Club", VoteAverage: 8.0, VoteCount: 2000, Runtime: 139,
			ReleaseDate: "1999-10-15", Genres: []tmdb.Genre{{ID: 18, Name: "Drama"}},
			PosterPath: "/p.jpg", BackdropPath: "/b.jpg",
		},
		Credits: tmdb.Credits{
			Cast: []tmdb.Credit{{ID: 1, Name: "Ed", Character: "Narrator"}, {ID: 2, Name: "Brad", Character: "Tyler"}},
			Crew: []tmdb.Credit{
				{ID: 10, Name: "Jeff", Job: "Director of Photography", Department: "Camera"},
				{ID: 11, Name: "David", Job: "Director", Department: "Directing"},
				{ID: 12, Name: "Grip", Job: "Key Grip", Department: "Crew"},
			},
		},
		External: []tmdb.Review{{ID: "e1", Author: "critic", Content: "ok"}},
		Images:   tmdb.Images{Backdrops: []tmdb.Image{{FilePath: "/g1.jpg"}, {FilePath: ""}}, Posters: []tmdb.Image{}},
		Local:    []backend.Review{{ID: "l1", UserID: "u1", Rating: 5, Content: ptr("yes")}},
	}
}

func TestBuildDetail(t *testing.T) {
	d := BuildDetail(detailInput())

	assert.Equal(t, "Fight Club", d.Hero.Title)
	assert.Equal(t, 4.0, d.Hero.Rating)
	assert.Equal(t, 8.0, d.Hero.CatalogRating)
	assert.Equal(t, "2h 19m", d.Hero.Runtime)
	assert.Equal(t, 1999, d.Hero.Year)
	assert.Equal(t, []string{"Drama"}, d.Hero.Genres)
	assert.Equal(t, "David", d.Hero.Director)
	assert.Equal(t, []string{"Ed", "Brad"}, d.Hero.Cast)

	assert.Equal(t, 2, d.CastCount)
	assert.Equal(t, 2, d.CrewCount)
	require.Len(t, d.SidebarCast, 2)

	require.Len(t, d.Reviews, 2)
	assert.Equal(t, SourceLocal, d.Reviews[0].Source)
	assert.Equal(t, 2, d.ReviewCount)

	assert.Equal(t, []string{"https://image.tmdb.org/t/p/w500/g1.jpg"}, d.Gallery.Backdrops)
	assert.NotNil(t, d.Gallery.Posters)
	assert.Nil(t, d.MyReview)
}

func TestBuildDetail_RatingTracksLocalReviews(t *testing.T) {
	in := detailInput()
	in.Movie.VoteCount = 0
	in.Local = []backend.Review{{Rating: 3}, {Rating: 4}, {Rating: 5}}
	assert.Equal(t, 4.0, BuildDetail(in).Hero.Rating)

	in.Local = nil
	assert.Equal(t, 4.0, BuildDetail(in).Hero.Rating)
}

func TestWithMyReview(t *testing.T) {
	in := detailInput()
	d := BuildDetail(in).WithMyReview("u1", in.Local)
	require.NotNil(t, d.MyReview)
	assert.Equal(t, 5, d.MyReview.Rating)
	assert.Equal(t, "yes", d.MyReview.Content)

	assert.Nil(t, BuildDetail(in).WithMyReview("", in.Local).MyReview)
	assert.Nil(t, BuildDetail(in).WithMyReview("u2", in.Local).MyReview)
}
