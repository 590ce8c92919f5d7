package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlendedRating_NoLocalReviewsIsCatalogAverage(t *testing.T) {
	for _, count := range []int{0, 10, 999, 1000, 5000, 1_000_000} {
		assert.Equal(t, 3.6, BlendedRating(7.2, count, nil), "count=%d", count)
	}
	assert.Equal(t, 3.6, BlendedRating(7.2, 1000, []int{}))
}

func TestBlendedRating_CapsCatalogWeight(t *testing.T) {
	got := BlendedRating(8.0, 2000, []int{5})
	assert.InDelta(t, (4.0*1000+5)/1001, got, 1e-12)
	assert.InDelta(t, 4.001, got, 1e-3)
	assert.Equal(t, BlendedRating(8.0, 1000, []int{5}), got)
}

func TestBlendedRating_ZeroVotesIsLocalMean(t *testing.T) {
	assert.InDelta(t, 4.0, BlendedRating(8.0, 0, []int{3, 4, 5}), 1e-12)
	assert.InDelta(t, 1.0, BlendedRating(9.0, 0, []int{1}), 1e-12)
}

func TestBlendedRating_SmallCatalogWeight(t *testing.T) {
	got := BlendedRating(6.0, 2, []int{5, 5})
	assert.InDelta(t, (3.0*2+5*2)/4.0, got, 1e-12)
}
