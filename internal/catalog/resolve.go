package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// ReviewsForMovie returns every review of movieID joined with its author and movie,
// newest first. Reviews whose user or movie no longer exists are skipped.
func (s *Service) ReviewsForMovie(ctx context.Context, movieID string) ([]domain.ReviewWithUser, error) {
	reviews, err := s.repo.Reviews.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for movie %s: %w", movieID, err)
	}
	return s.joinReviews(ctx, reviews)
}

// ReviewsForUser returns every review written by userID, resolved like ReviewsForMovie.
func (s *Service) ReviewsForUser(ctx context.Context, userID string) ([]domain.ReviewWithUser, error) {
	reviews, err := s.repo.Reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for user %s: %w", userID, err)
	}
	return s.joinReviews(ctx, reviews)
}

// WatchlistForUser returns the user's entries joined with their movies, most recently
// added first. Entries pointing at deleted movies are skipped.
func (s *Service) WatchlistForUser(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	entries, err := s.repo.Watchlist.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist for user %s: %w", userID, err)
	}
	movies := newLookup(func(id string) (domain.Movie, error) { return s.repo.Movies.Get(ctx, id) })

	items := make([]domain.WatchlistItem, 0, len(entries))
	for _, entry := range entries {
		movie, ok, err := movies.get(entry.MovieID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, domain.WatchlistItem{WatchlistEntry: entry, Movie: movie})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.After(b.AddedAt)
		}
		return a.ID < b.ID
	})
	return items, nil
}

// MovieWithReviews fetches a movie together with its resolved reviews.
func (s *Service) MovieWithReviews(ctx context.Context, movieID string) (domain.MovieWithReviews, error) {
	movie, err := s.GetMovie(ctx, movieID)
	if err != nil {
		return domain.MovieWithReviews{}, err
	}
	reviews, err := s.ReviewsForMovie(ctx, movieID)
	if err != nil {
		return domain.MovieWithReviews{}, err
	}
	return domain.MovieWithReviews{Movie: movie, Reviews: reviews}, nil
}

func (s *Service) joinReviews(ctx context.Context, reviews []domain.Review) ([]domain.ReviewWithUser, error) {
	users := newLookup(func(id string) (domain.User, error) { return s.repo.Users.Get(ctx, id) })
	movies := newLookup(func(id string) (domain.Movie, error) { return s.repo.Movies.Get(ctx, id) })

	out := make([]domain.ReviewWithUser, 0, len(reviews))
	for _, review := range reviews {
		user, ok, err := users.get(review.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		movie, ok, err := movies.get(review.MovieID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.ReviewWithUser{Review: review, User: user.Summary(), Movie: movie.Summary()})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

// lookup memoises entity fetches for the duration of one resolve call, remembering
// misses so a dangling id is looked up once.
type lookup[T any] struct {
	fetch func(id string) (T, error)
	found map[string]T
	miss  map[string]bool
}

func newLookup[T any](fetch func(id string) (T, error)) *lookup[T] {
	return &lookup[T]{fetch: fetch, found: make(map[string]T), miss: make(map[string]bool)}
}

func (l *lookup[T]) get(id string) (T, bool, error) {
	if v, ok := l.found[id]; ok {
		return v, true, nil
	}
	var zero T
	if l.miss[id] {
		return zero, false, nil
	}
	v, err := l.fetch(id)
	if errors.Is(err, repository.ErrNotFound) {
		l.miss[id] = true
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("resolve %s: %w", id, err)
	}
	l.found[id] = v
	return v, true, nil
}
