package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// ComputeRating returns the count and the mean of ratings rounded to two decimals,
// half away from zero. The rounding is done on integers so 4.125 becomes 4.13
// regardless of binary floating point.
func ComputeRating(ratings []int) domain.RatingAggregate {
	n := len(ratings)
	if n == 0 {
		return domain.RatingAggregate{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	// Ratings are positive, so integer division of (2*100*sum + n) by 2n rounds
	// the hundredths half up.
	centi := (200*sum + n) / (2 * n)
	return domain.RatingAggregate{Average: float64(centi) / 100, Count: n}
}

// recomputeRating rewrites the derived rating fields of movieID from its current
// reviews. Callers hold s.mu. Failures are absorbed: the review mutation that
// triggered the recompute has already been committed.
func (s *Service) recomputeRating(ctx context.Context, movieID string) {
	reviews, err := s.repo.Reviews.ListByMovie(ctx, movieID)
	if err != nil {
		s.absorb(ctx, fmt.Errorf("recompute rating for movie %s: list reviews: %w", movieID, err))
		return
	}
	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, r.Rating)
	}
	agg := ComputeRating(ratings)

	if _, err := s.repo.Movies.SetRating(ctx, movieID, agg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.absorb(ctx, fmt.Errorf("recompute rating for dangling movie %s: %w", movieID, err))
			return
		}
		s.absorb(ctx, fmt.Errorf("recompute rating for movie %s: %w", movieID, err))
	}
}
