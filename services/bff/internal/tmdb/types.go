package tmdb

import (
	"errors"
	"fmt"
)

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is a catalog snapshot. List endpoints leave the detail-only fields zero.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
	GenreIDs     []int64 `json:"genre_ids,omitempty"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Budget       int64   `json:"budget,omitempty"`
	Revenue      int64   `json:"revenue,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
}

type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Credit is one cast or crew entry. Cast rows carry Character, crew rows Job and Department.
type Credit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	Job         string `json:"job,omitempty"`
	Department  string `json:"department,omitempty"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order,omitempty"`
}

type Credits struct {
	ID   int64    `json:"id"`
	Cast []Credit `json:"cast"`
	Crew []Credit `json:"crew"`
}

type AuthorDetails struct {
	Name       string   `json:"name"`
	Username   string   `json:"username"`
	AvatarPath string   `json:"avatar_path"`
	Rating     *float64 `json:"rating"`
}

// Review is a third-party review as published by the catalog.
type Review struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	AuthorDetails AuthorDetails `json:"author_details"`
	Content       string        `json:"content"`
	CreatedAt     string        `json:"created_at"`
	URL           string        `json:"url"`
}

type ReviewPage struct {
	ID           int64    `json:"id"`
	Page         int      `json:"page"`
	Results      []Review `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Language    *string `json:"iso_639_1"`
}

type Images struct {
	ID        int64   `json:"id"`
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
}

// validator is implemented by every payload decoded from the catalog.
type validator interface {
	Validate() error
}

func validVote(v float64) bool { return v >= 0 && v <= 10 }

// Validate rejects list items without ids or with out of range votes.
func (p *MoviePage) Validate() error {
	for i := range p.Results {
		m := p.Results[i]
		if m.ID <= 0 {
			return fmt.Errorf("results[%d]: missing id", i)
		}
		if !validVote(m.VoteAverage) {
			return fmt.Errorf("results[%d]: vote_average %v out of range", i, m.VoteAverage)
		}
	}
	if p.Results == nil {
		p.Results = []Movie{}
	}
	return nil
}

func (m *Movie) Validate() error {
	if m.ID <= 0 {
		return errors.New("missing id")
	}
	if m.Title == "" {
		return errors.New("missing title")
	}
	if !validVote(m.VoteAverage) {
		return fmt.Errorf("vote_average %v out of range", m.VoteAverage)
	}
	if m.VoteCount < 0 || m.Runtime < 0 {
		return errors.New("negative counter")
	}
	return nil
}

func (c *Credits) Validate() error {
	for i, e := range c.Cast {
		if e.ID <= 0 {
			return fmt.Errorf("cast[%d]: missing id", i)
		}
	}
	for i, e := range c.Crew {
		if e.ID <= 0 {
			return fmt.Errorf("crew[%d]: missing id", i)
		}
	}
	if c.Cast == nil {
		c.Cast = []Credit{}
	}
	if c.Crew == nil {
		c.Crew = []Credit{}
	}
	return nil
}

func (p *ReviewPage) Validate() error {
	for i, r := range p.Results {
		if r.ID == "" {
			return fmt.Errorf("results[%d]: missing id", i)
		}
		if r.AuthorDetails.Rating != nil && !validVote(*r.AuthorDetails.Rating) {
			return fmt.Errorf("results[%d]: rating %v out of range", i, *r.AuthorDetails.Rating)
		}
	}
	if p.Results == nil {
		p.Results = []Review{}
	}
	return nil
}

func (im *Images) Validate() error {
	for i, b := range im.Backdrops {
		if b.FilePath == "" {
			return fmt.Errorf("backdrops[%d]: missing file_path", i)
		}
	}
	for i, p := range im.Posters {
		if p.FilePath == "" {
			return fmt.Errorf("posters[%d]: missing file_path", i)
		}
	}
	if im.Backdrops == nil {
		im.Backdrops = []Image{}
	}
	if im.Posters == nil {
		im.Posters = []Image{}
	}
	return nil
}
