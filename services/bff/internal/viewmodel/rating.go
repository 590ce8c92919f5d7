// Package viewmodel turns catalog and backend payloads into what the pages
// render: blended ratings, classified cast and crew, merged reviews.
package viewmodel

// CatalogWeightCap bounds how much the catalog's vote count can outweigh local reviews.
const CatalogWeightCap = 1000

// BlendedRating mixes the catalog average (0-10, rescaled to 0-5) with local
// 1-5 ratings. The catalog counts as min(voteCount, CatalogWeightCap) votes.
func BlendedRating(voteAverage float64, voteCount int, local []int) float64 {
	catalogAvg5 := voteAverage / 2
	if len(local) == 0 {
		return catalogAvg5
	}

	weight := voteCount
	if weight > CatalogWeightCap {
		weight = CatalogWeightCap
	}
	if weight < 0 {
		weight = 0
	}

	var sum int
	for _, r := range local {
		sum += r
	}
	n := float64(len(local))
	mean := float64(sum) / n
	return (catalogAvg5*float64(weight) + mean*n) / (float64(weight) + n)
}
