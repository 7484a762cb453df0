package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// CreateReview stores a review and recomputes the movie's rating. The author and
// the movie must exist, and each user may review a movie once.
func (s *Service) CreateReview(ctx context.Context, params domain.ReviewCreate) (domain.Review, error) {
	if err := s.check(ctx, params); err != nil {
		return domain.Review{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Users.Get(ctx, params.UserID); err != nil {
		return domain.Review{}, wrapLookup("user", params.UserID, err)
	}
	if _, err := s.repo.Movies.Get(ctx, params.MovieID); err != nil {
		return domain.Review{}, wrapLookup("movie", params.MovieID, err)
	}
	existing, err := s.repo.Reviews.GetByUserAndMovie(ctx, params.UserID, params.MovieID)
	switch {
	case err == nil:
		return domain.Review{}, fmt.Errorf("user %s already reviewed movie %s as %s: %w",
			params.UserID, params.MovieID, existing.ID, domain.ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Review{}, fmt.Errorf("lookup existing review: %w", err)
	}

	review, err := s.repo.Reviews.Create(ctx, params)
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}
	s.recomputeRating(ctx, review.MovieID)
	return review, nil
}

// GetReview fetches a review by id.
func (s *Service) GetReview(ctx context.Context, id string) (domain.Review, error) {
	review, err := s.repo.Reviews.Get(ctx, id)
	if err != nil {
		return domain.Review{}, wrapLookup("review", id, err)
	}
	return review, nil
}

// UpdateReview applies a partial update on behalf of actorID, who must own the
// review. The movie's rating is recomputed when the star rating changes.
func (s *Service) UpdateReview(ctx context.Context, id, actorID string, update domain.ReviewUpdate) (domain.Review, error) {
	if err := s.check(ctx, update); err != nil {
		return domain.Review{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.ownedReview(ctx, id, actorID)
	if err != nil {
		return domain.Review{}, err
	}
	review, err := s.repo.Reviews.Update(ctx, id, update)
	if err != nil {
		return domain.Review{}, wrapLookup("review", id, err)
	}
	if review.Rating != current.Rating {
		s.recomputeRating(ctx, review.MovieID)
	}
	return review, nil
}

// DeleteReview removes a review owned by actorID and recomputes the movie's rating.
func (s *Service) DeleteReview(ctx context.Context, id, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, err := s.ownedReview(ctx, id, actorID)
	if err != nil {
		return err
	}
	ok, err := s.repo.Reviews.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	s.recomputeRating(ctx, review.MovieID)
	return nil
}

// LikeReview adds one like. Repeated calls keep counting.
func (s *Service) LikeReview(ctx context.Context, id string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, err := s.repo.Reviews.IncrementLikes(ctx, id)
	if err != nil {
		return domain.Review{}, wrapLookup("review", id, err)
	}
	return review, nil
}

func (s *Service) ownedReview(ctx context.Context, id, actorID string) (domain.Review, error) {
	review, err := s.repo.Reviews.Get(ctx, id)
	if err != nil {
		return domain.Review{}, wrapLookup("review", id, err)
	}
	if review.UserID != actorID {
		return domain.Review{}, fmt.Errorf("review %s belongs to another user: %w", id, domain.ErrForbidden)
	}
	return review, nil
}
