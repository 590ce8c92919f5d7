package tmdb

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Size is an image size token understood by the image CDN.
type Size string

const (
	SizeW185     Size = "w185"
	SizeW342     Size = "w342"
	SizeW500     Size = "w500"
	SizeOriginal Size = "original"
)

// ImageURL builds a CDN URL for path. Empty path yields "". Unknown sizes use w342.
func ImageURL(path string, size Size) string {
	if path == "" {
		return ""
	}
	switch size {
	case SizeW185, SizeW342, SizeW500, SizeOriginal:
	default:
		size = SizeW342
	}
	return imageBaseURL + string(size) + path
}
