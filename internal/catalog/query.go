package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// SortKey selects the single active ordering of a movie query.
type SortKey string

const (
	SortTitle   SortKey = "title"
	SortYear    SortKey = "year"
	SortRating  SortKey = "rating"
	SortReviews SortKey = "reviews"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	MaxRating    = 5
)

// MovieQuery describes one catalog listing request. Zero values mean "unset":
// no search, no genre, no year, no rating floor, title order, first page, default limit.
type MovieQuery struct {
	Search    string
	Genre     string
	Year      *int
	MinRating *float64
	Sort      string
	Page      int
	Limit     int
}

// MoviePage is one page of a movie query. Total counts every match before
// pagination; Page and Limit echo the effective (clamped) values.
type MoviePage struct {
	Movies []domain.Movie
	Total  int
	Page   int
	Limit  int
}

// ParseSortKey maps raw onto a SortKey; the empty string selects SortTitle.
func ParseSortKey(raw string) (SortKey, bool) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case "":
		return SortTitle, true
	case SortTitle, SortYear, SortRating, SortReviews:
		return key, true
	default:
		return "", false
	}
}

// QueryMovies filters, sorts and paginates the catalog, in that order. Pages are
// 1-indexed; page <= 0 is clamped to 1, limit <= 0 to DefaultLimit and limits above
// MaxLimit to MaxLimit. Ties under every sort key are broken by id ascending so
// pages never overlap.
func (s *Service) QueryMovies(ctx context.Context, q MovieQuery) (MoviePage, error) {
	filter, key, err := q.compile()
	if err != nil {
		return MoviePage{}, err
	}
	page, limit := clampPage(q.Page, q.Limit)

	movies, err := s.repo.Movies.Find(ctx, filter)
	if err != nil {
		return MoviePage{}, fmt.Errorf("find movies: %w", err)
	}
	sortMovies(movies, key)

	total := len(movies)
	result := MoviePage{Movies: []domain.Movie{}, Total: total, Page: page, Limit: limit}
	if total == 0 || page-1 > (total-1)/limit {
		return result, nil
	}
	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	result.Movies = movies[start:end]
	return result, nil
}

func (q MovieQuery) compile() (domain.MovieFilter, SortKey, error) {
	var filter domain.MovieFilter

	if search := strings.TrimSpace(q.Search); search != "" {
		filter.Search = &search
	}
	if raw := strings.TrimSpace(q.Genre); raw != "" {
		genre, ok := domain.ParseGenre(raw)
		if !ok {
			return filter, "", domain.NewValidationError("genre", "must be one of "+strings.Join(genreNames(), ", "))
		}
		filter.Genre = &genre
	}
	if q.Year != nil {
		year := *q.Year
		filter.Year = &year
	}
	if q.MinRating != nil {
		floor := *q.MinRating
		if math.IsNaN(floor) || math.IsInf(floor, 0) || floor < 0 || floor > MaxRating {
			return filter, "", domain.NewValidationError("minRating", "must be between 0 and 5")
		}
		filter.MinRating = &floor
	}
	key, ok := ParseSortKey(q.Sort)
	if !ok {
		return filter, "", domain.NewValidationError("sort", "must be one of title, year, rating, reviews")
	}
	return filter, key, nil
}

func clampPage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func sortMovies(movies []domain.Movie, key SortKey) {
	var compare func(a, b domain.Movie) int
	switch key {
	case SortYear:
		compare = func(a, b domain.Movie) int { return b.ReleaseYear - a.ReleaseYear }
	case SortRating:
		compare = func(a, b domain.Movie) int { return compareFloatDesc(a.AverageRating, b.AverageRating) }
	case SortReviews:
		compare = func(a, b domain.Movie) int { return b.ReviewCount - a.ReviewCount }
	default:
		col := collate.New(language.English)
		compare = func(a, b domain.Movie) int { return col.CompareString(a.Title, b.Title) }
	}
	sort.Slice(movies, func(i, j int) bool {
		if c := compare(movies[i], movies[j]); c != 0 {
			return c < 0
		}
		return movies[i].ID < movies[j].ID
	})
}

func compareFloatDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// sortByTitle orders curation lists the same way as the default catalog query.
func sortByTitle(movies []domain.Movie) {
	sortMovies(movies, SortTitle)
}
