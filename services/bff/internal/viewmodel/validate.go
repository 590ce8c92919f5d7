package viewmodel

import (
	"errors"
	"strings"
)

var (
	ErrRatingRequired   = errors.New("rating required")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
)

// ValidateReview checks a review before it is sent anywhere and returns the
// trimmed content, nil when blank.
func ValidateReview(rating int, content string) (*string, error) {
	if rating == 0 {
		return nil, ErrRatingRequired
	}
	if rating < 1 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	return &content, nil
}
