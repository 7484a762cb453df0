package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// CreateMovie validates params and adds the movie with zeroed rating fields.
// A non-zero external id that is already in the catalog yields domain.ErrConflict.
func (s *Service) CreateMovie(ctx context.Context, params domain.MovieCreate) (domain.Movie, error) {
	if err := s.check(ctx, params); err != nil {
		return domain.Movie{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureExternalIDFree(ctx, params.ExternalID); err != nil {
		return domain.Movie{}, err
	}
	movie, err := s.repo.Movies.Create(ctx, params)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	s.logger.Printf("catalog: created movie %s (%q)", movie.ID, movie.Title)
	return movie, nil
}

// GetMovie fetches a movie by id.
func (s *Service) GetMovie(ctx context.Context, id string) (domain.Movie, error) {
	movie, err := s.repo.Movies.Get(ctx, id)
	if err != nil {
		return domain.Movie{}, wrapLookup("movie", id, err)
	}
	return movie, nil
}

// UpdateMovie applies a partial update to the editable movie fields.
func (s *Service) UpdateMovie(ctx context.Context, id string, update domain.MovieUpdate) (domain.Movie, error) {
	if err := s.check(ctx, update); err != nil {
		return domain.Movie{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	movie, err := s.repo.Movies.Update(ctx, id, update)
	if err != nil {
		return domain.Movie{}, wrapLookup("movie", id, err)
	}
	return movie, nil
}

// DeleteMovie removes the movie. Its reviews and watchlist entries stay behind and
// are skipped by the resolver.
func (s *Service) DeleteMovie(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.repo.Movies.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete movie %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("movie %s: %w", id, domain.ErrNotFound)
	}
	s.logger.Printf("catalog: deleted movie %s", id)
	return nil
}

// FeaturedMovies lists the movies flagged as featured, in title order.
func (s *Service) FeaturedMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.flagged(ctx, repository.FlagFeatured)
}

// TrendingMovies lists the movies flagged as trending, in title order.
func (s *Service) TrendingMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.flagged(ctx, repository.FlagTrending)
}

func (s *Service) flagged(ctx context.Context, flag repository.Flag) ([]domain.Movie, error) {
	movies, err := s.repo.Movies.ListFlagged(ctx, flag)
	if err != nil {
		return nil, fmt.Errorf("list %s movies: %w", flag, err)
	}
	sortByTitle(movies)
	return movies, nil
}

// ImportMovie creates a movie from the external metadata source. The upstream call
// happens before the writer lock is taken.
func (s *Service) ImportMovie(ctx context.Context, externalID int64) (domain.Movie, error) {
	if s.metadata == nil {
		return domain.Movie{}, ErrImportDisabled
	}
	if externalID <= 0 {
		return domain.Movie{}, domain.NewValidationError("tmdbId", "must be a positive integer")
	}
	if err := s.ensureExternalIDFree(ctx, externalID); err != nil {
		return domain.Movie{}, err
	}

	params, err := s.metadata.MovieDetails(ctx, externalID)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("fetch movie %d: %w", externalID, err)
	}
	params.ExternalID = externalID
	return s.CreateMovie(ctx, params)
}

func (s *Service) ensureExternalIDFree(ctx context.Context, externalID int64) error {
	if externalID == 0 {
		return nil
	}
	existing, err := s.repo.Movies.GetByExternalID(ctx, externalID)
	switch {
	case err == nil:
		return fmt.Errorf("external id %d already imported as movie %s: %w", externalID, existing.ID, domain.ErrConflict)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup external id %d: %w", externalID, err)
	}
}
