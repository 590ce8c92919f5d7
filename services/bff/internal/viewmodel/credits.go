package viewmodel

import (
	"strings"

	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

const (
	MaxCast     = 30
	HeroCastLen = 5
)

// Member is one row of the cast and crew section.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

// CastAndCrew lists the first MaxCast cast entries as actors followed by the
// crew entries that rules classify. Unmatched crew is dropped.
func CastAndCrew(credits tmdb.Credits, rules []RoleRule) []Member {
	if rules == nil {
		rules = DefaultRoleRules
	}
	cast := credits.Cast
	if len(cast) > MaxCast {
		cast = cast[:MaxCast]
	}

	out := make([]Member, 0, len(cast)+len(credits.Crew))
	for _, c := range cast {
		out = append(out, Member{
			ID:    c.ID,
			Name:  c.Name,
			Role:  RoleActor,
			Label: c.Character,
			Image: tmdb.ImageURL(c.ProfilePath, tmdb.SizeW185),
		})
	}
	for _, c := range credits.Crew {
		role, ok := Classify(rules, c.Job, c.Department)
		if !ok {
			continue
		}
		label := c.Job
		if label == "" {
			label = c.Department
		}
		out = append(out, Member{
			ID:    c.ID,
			Name:  c.Name,
			Role:  role,
			Label: label,
			Image: tmdb.ImageURL(c.ProfilePath, tmdb.SizeW185),
		})
	}
	return out
}

// DirectorName is the first crew member whose job is exactly "director".
func DirectorName(crew []tmdb.Credit) string {
	for _, c := range crew {
		if strings.EqualFold(strings.TrimSpace(c.Job), "director") {
			return c.Name
		}
	}
	return ""
}

// TopCast returns the names of the first n cast members.
func TopCast(cast []tmdb.Credit, n int) []string {
	if n > len(cast) {
		n = len(cast)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, 0, n)
	for _, c := range cast[:n] {
		out = append(out, c.Name)
	}
	return out
}

// CountRoles reports how many members are actors and how many are crew.
func CountRoles(members []Member) (cast, crew int) {
	for _, m := range members {
		if m.Role == RoleActor {
			cast++
		} else {
			crew++
		}
	}
	return cast, crew
}
