package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = domain.ErrNotFound

// Flag selects one of the movie curation flags.
type Flag string

const (
	FlagFeatured Flag = "featured"
	FlagTrending Flag = "trending"
)

// UserStore persists user accounts. Callers check GetByUsername/GetByEmail before
// Create or Update. The memory backend accepts duplicates; the Postgres backend
// also enforces uniqueness and reports a clash as domain.ErrConflict.
type UserStore interface {
	Create(ctx context.Context, params domain.UserCreate) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// MovieStore persists catalog entries. SetRating is the only way to write the
// derived rating fields.
type MovieStore interface {
	Create(ctx context.Context, params domain.MovieCreate) (domain.Movie, error)
	Get(ctx context.Context, id string) (domain.Movie, error)
	GetByExternalID(ctx context.Context, externalID int64) (domain.Movie, error)
	Update(ctx context.Context, id string, update domain.MovieUpdate) (domain.Movie, error)
	SetRating(ctx context.Context, id string, agg domain.RatingAggregate) (domain.Movie, error)
	Delete(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error)
	ListFlagged(ctx context.Context, flag Flag) ([]domain.Movie, error)
}

// ReviewStore persists reviews.
type ReviewStore interface {
	Create(ctx context.Context, params domain.ReviewCreate) (domain.Review, error)
	Get(ctx context.Context, id string) (domain.Review, error)
	GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.Review, error)
	Update(ctx context.Context, id string, update domain.ReviewUpdate) (domain.Review, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementLikes(ctx context.Context, id string) (domain.Review, error)
	ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
}

// WatchlistStore persists watchlist entries.
type WatchlistStore interface {
	Create(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error)
	Get(ctx context.Context, id string) (domain.WatchlistEntry, error)
	GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WatchlistEntry, error)
}

// Repository aggregates all entity stores.
type Repository struct {
	Users     UserStore
	Movies    MovieStore
	Reviews   ReviewStore
	Watchlist WatchlistStore
}

// New constructs a Postgres-backed Repository from the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:     &UsersRepository{pool: pool, newID: newUUID},
		Movies:    &MoviesRepository{pool: pool, newID: newUUID},
		Reviews:   &ReviewsRepository{pool: pool, newID: newUUID},
		Watchlist: &WatchlistRepository{pool: pool, newID: newUUID},
	}
}
