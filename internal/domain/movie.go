package domain

import (
	"strings"
	"time"
)

// Movie represents the canonical catalog entry. AverageRating and ReviewCount are
// derived from the movie's reviews and only ever written by the rating aggregator.
type Movie struct {
	ID            string
	ExternalID    int64
	Title         string
	Synopsis      string
	Director      string
	Cast          []string
	Genres        []Genre
	ReleaseYear   int
	Duration      int
	PosterURL     string
	BackdropURL   string
	TrailerURL    string
	AverageRating float64
	ReviewCount   int
	Featured      bool
	Trending      bool
	CreatedAt     time.Time
}

// MovieCreate carries the caller-supplied fields of a new movie.
type MovieCreate struct {
	ExternalID  int64    `validate:"gte=0"`
	Title       string   `validate:"required,max=255"`
	Synopsis    string   `validate:"required"`
	Director    string   `validate:"required,max=255"`
	Cast        []string `validate:"dive,required,max=255"`
	Genres      []Genre  `validate:"required,min=1,dive,genre"`
	ReleaseYear int      `validate:"gte=1888,lte=2100"`
	Duration    int      `validate:"gte=0"`
	PosterURL   string   `validate:"max=2048"`
	BackdropURL string   `validate:"max=2048"`
	TrailerURL  string   `validate:"max=2048"`
	Featured    bool
	Trending    bool
}

// MovieUpdate is a partial update; nil fields are left untouched. Derived rating
// fields are deliberately absent.
type MovieUpdate struct {
	Title       *string  `validate:"omitempty,min=1,max=255"`
	Synopsis    *string  `validate:"omitempty,min=1"`
	Director    *string  `validate:"omitempty,min=1,max=255"`
	Cast        []string `validate:"omitempty,dive,required,max=255"`
	Genres      []Genre  `validate:"omitempty,min=1,dive,genre"`
	ReleaseYear *int     `validate:"omitempty,gte=1888,lte=2100"`
	Duration    *int     `validate:"omitempty,gte=0"`
	PosterURL   *string  `validate:"omitempty,max=2048"`
	BackdropURL *string  `validate:"omitempty,max=2048"`
	TrailerURL  *string  `validate:"omitempty,max=2048"`
	Featured    *bool
	Trending    *bool
}

// MovieSummary is the minimal movie projection attached to resolved reviews.
type MovieSummary struct {
	ID        string
	Title     string
	PosterURL string
}

// MovieFilter holds the optional, AND-combined filters of a catalog query.
type MovieFilter struct {
	Search    *string
	Genre     *Genre
	Year      *int
	MinRating *float64
}

// Summary projects the movie for display next to a review.
func (m Movie) Summary() MovieSummary {
	return MovieSummary{ID: m.ID, Title: m.Title, PosterURL: m.PosterURL}
}

// HasGenre reports whether the movie is tagged with g.
func (m Movie) HasGenre(g Genre) bool {
	for _, tag := range m.Genres {
		if tag == g {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share slices with the store.
func (m Movie) Clone() Movie {
	out := m
	out.Cast = append(make([]string, 0, len(m.Cast)), m.Cast...)
	out.Genres = append(make([]Genre, 0, len(m.Genres)), m.Genres...)
	return out
}

// Apply merges the non-nil fields of u into m.
func (u MovieUpdate) Apply(m Movie) Movie {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Synopsis != nil {
		m.Synopsis = *u.Synopsis
	}
	if u.Director != nil {
		m.Director = *u.Director
	}
	if u.Cast != nil {
		m.Cast = append([]string(nil), u.Cast...)
	}
	if u.Genres != nil {
		m.Genres = append([]Genre(nil), u.Genres...)
	}
	if u.ReleaseYear != nil {
		m.ReleaseYear = *u.ReleaseYear
	}
	if u.Duration != nil {
		m.Duration = *u.Duration
	}
	if u.PosterURL != nil {
		m.PosterURL = *u.PosterURL
	}
	if u.BackdropURL != nil {
		m.BackdropURL = *u.BackdropURL
	}
	if u.TrailerURL != nil {
		m.TrailerURL = *u.TrailerURL
	}
	if u.Featured != nil {
		m.Featured = *u.Featured
	}
	if u.Trending != nil {
		m.Trending = *u.Trending
	}
	return m
}

// Matches applies every set filter. Search is a case-insensitive substring match
// against the title, the director or any cast member.
func (f MovieFilter) Matches(m Movie) bool {
	if f.Search != nil && *f.Search != "" {
		needle := strings.ToLower(*f.Search)
		if !containsFold(m.Title, needle) && !containsFold(m.Director, needle) && !castContains(m.Cast, needle) {
			return false
		}
	}
	if f.Genre != nil && !m.HasGenre(*f.Genre) {
		return false
	}
	if f.Year != nil && m.ReleaseYear != *f.Year {
		return false
	}
	if f.MinRating != nil && m.AverageRating < *f.MinRating {
		return false
	}
	return true
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func castContains(cast []string, lowerNeedle string) bool {
	for _, name := range cast {
		if containsFold(name, lowerNeedle) {
			return true
		}
	}
	return false
}
