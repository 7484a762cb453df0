package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// AddToWatchlist saves movieID on the user's watchlist. Saving the same movie twice
// yields domain.ErrConflict.
func (s *Service) AddToWatchlist(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Users.Get(ctx, userID); err != nil {
		return domain.WatchlistEntry{}, wrapLookup("user", userID, err)
	}
	if _, err := s.repo.Movies.Get(ctx, movieID); err != nil {
		return domain.WatchlistEntry{}, wrapLookup("movie", movieID, err)
	}
	_, err := s.repo.Watchlist.GetByUserAndMovie(ctx, userID, movieID)
	switch {
	case err == nil:
		return domain.WatchlistEntry{}, fmt.Errorf("movie %s is already on the watchlist: %w", movieID, domain.ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return domain.WatchlistEntry{}, fmt.Errorf("lookup watchlist entry: %w", err)
	}

	entry, err := s.repo.Watchlist.Create(ctx, userID, movieID)
	if err != nil {
		return domain.WatchlistEntry{}, fmt.Errorf("create watchlist entry: %w", err)
	}
	return entry, nil
}

// RemoveFromWatchlist drops movieID from the user's watchlist.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.repo.Watchlist.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		return wrapLookup("watchlist entry", userID+"/"+movieID, err)
	}
	ok, err := s.repo.Watchlist.Delete(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry %s: %w", entry.ID, err)
	}
	if !ok {
		return fmt.Errorf("watchlist entry %s: %w", entry.ID, domain.ErrNotFound)
	}
	return nil
}

// IsInWatchlist reports whether movieID is on the user's watchlist.
func (s *Service) IsInWatchlist(ctx context.Context, userID, movieID string) (bool, error) {
	_, err := s.repo.Watchlist.GetByUserAndMovie(ctx, userID, movieID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("lookup watchlist entry: %w", err)
	}
}
