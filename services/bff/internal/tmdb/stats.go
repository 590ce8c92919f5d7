package tmdb

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stats is a rough size estimate of the catalog derived from three list samples.
// It is never an exact count; Estimated is always true.
type Stats struct {
	TotalMovies   int     `json:"total_movies"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	Estimated     bool    `json:"estimated"`
}

const (
	moviesPerSampleItem = 1000
	reviewsPerMovie     = 15
)

// FallbackStats is returned whenever sampling fails.
var FallbackStats = Stats{TotalMovies: 850, AverageRating: 4.8, TotalReviews: 15000, Estimated: true}

// Stats samples popular, top rated and weekly trending lists in parallel and
// extrapolates. Any failure yields FallbackStats.
func (c *Client) Stats(ctx context.Context) Stats {
	if !c.Configured() {
		return FallbackStats
	}

	var popular, topRated, trending MoviePage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		popular, err = c.PopularMovies(gctx, 1)
		return err
	})
	g.Go(func() (err error) {
		topRated, err = c.TopRatedMovies(gctx, 1)
		return err
	})
	g.Go(func() (err error) {
		trending, err = c.TrendingMovies(gctx, WindowWeek, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("catalog stats sampling failed, using fallback", zap.Error(err))
		return FallbackStats
	}
	if len(topRated.Results) == 0 {
		return FallbackStats
	}

	sample := max(len(popular.Results), len(topRated.Results), len(trending.Results))
	total := sample * moviesPerSampleItem

	var sum float64
	for _, m := range topRated.Results {
		sum += m.VoteAverage
	}
	avg5 := sum / float64(len(topRated.Results)) / 2

	return Stats{
		TotalMovies:   total,
		AverageRating: math.Round(avg5*10) / 10,
		TotalReviews:  total * reviewsPerMovie,
		Estimated:     true,
	}
}
