package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/movie-reviews/internal/catalog"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

const (
	DefaultUsername = "default"
	defaultEmail    = "default@example.com"
	defaultPassword = "password"
	defaultPicture  = "https://i.pravatar.cc/150?u=default"
)

// Result counts what a seeding run created.
type Result struct {
	UsersCreated  int
	MoviesCreated int
}

// DemoMovies is the starter catalog, keyed by TMDB id.
func DemoMovies() []domain.MovieCreate {
	return []domain.MovieCreate{
		{
			ExternalID:  27205,
			Title:       "Inception",
			Synopsis:    "A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O.",
			Director:    "Christopher Nolan",
			Cast:        []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"},
			Genres:      []domain.Genre{domain.GenreAction, domain.GenreAdventure, domain.GenreScienceFiction},
			ReleaseYear: 2010,
			Duration:    148,
			PosterURL:   "/inception.jpg",
			Featured:    true,
		},
		{
			ExternalID:  278,
			Title:       "The Shawshank Redemption",
			Synopsis:    "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.",
			Director:    "Frank Darabont",
			Cast:        []string{"Tim Robbins", "Morgan Freeman", "Bob Gunton"},
			Genres:      []domain.Genre{domain.GenreDrama},
			ReleaseYear: 1994,
			Duration:    142,
			PosterURL:   "/shawshank.jpg",
			Trending:    true,
		},
		{
			ExternalID:  155,
			Title:       "The Dark Knight",
			Synopsis:    "When the menace known as the Joker emerges from his mysterious past, he wreaks havoc and chaos on the people of Gotham.",
			Director:    "Christopher Nolan",
			Cast:        []string{"Christian Bale", "Heath Ledger", "Aaron Eckhart"},
			Genres:      []domain.Genre{domain.GenreAction, domain.GenreCrime, domain.GenreDrama},
			ReleaseYear: 2008,
			Duration:    152,
			PosterURL:   "/dark_knight.jpg",
			Featured:    true,
		},
	}
}

// Run creates the default account and the demo movies that are not present yet.
// It is safe to call on every start.
func Run(ctx context.Context, svc *catalog.Service, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	var res Result

	_, err := svc.GetUserByUsername(ctx, DefaultUsername)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return res, fmt.Errorf("hash default password: %w", err)
		}
		_, err = svc.RegisterUser(ctx, domain.UserCreate{
			Username:       DefaultUsername,
			Email:          defaultEmail,
			PasswordHash:   string(hash),
			ProfilePicture: defaultPicture,
		})
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			return res, fmt.Errorf("seed default user: %w", err)
		}
		if err == nil {
			res.UsersCreated++
		}
	case err != nil:
		return res, fmt.Errorf("lookup default user: %w", err)
	}

	for _, movie := range DemoMovies() {
		_, err := svc.CreateMovie(ctx, movie)
		switch {
		case err == nil:
			res.MoviesCreated++
		case errors.Is(err, domain.ErrConflict):
		default:
			return res, fmt.Errorf("seed movie %q: %w", movie.Title, err)
		}
	}

	logger.Printf("seed: created %d user(s) and %d movie(s)", res.UsersCreated, res.MoviesCreated)
	return res, nil
}
