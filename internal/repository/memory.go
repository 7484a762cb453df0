package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// MemoryOptions tunes the in-memory backend. Zero values select wall-clock time
// and random UUIDs.
type MemoryOptions struct {
	Now   func() time.Time
	NewID func() string
}

type pairKey struct {
	userID  string
	movieID string
}

type idSet map[string]struct{}

func (s idSet) add(id string) { s[id] = struct{}{} }

// memoryDB is an arena of keyed tables plus secondary indexes, all guarded by a
// single lock so a record and its index entries change together.
type memoryDB struct {
	mu    sync.RWMutex
	now   func() time.Time
	newID func() string

	users     map[string]domain.User
	usernames map[string]string
	emails    map[string]string

	movies      map[string]domain.Movie
	externalIDs map[int64]string

	reviews        map[string]domain.Review
	reviewsByMovie map[string]idSet
	reviewsByUser  map[string]idSet
	reviewPairs    map[pairKey]string

	entries       map[string]domain.WatchlistEntry
	entriesByUser map[string]idSet
	entryPairs    map[pairKey]string
}

// NewMemory builds a Repository whose four stores share one in-process arena.
func NewMemory(opts MemoryOptions) *Repository {
	db := &memoryDB{
		now:            opts.Now,
		newID:          opts.NewID,
		users:          make(map[string]domain.User),
		usernames:      make(map[string]string),
		emails:         make(map[string]string),
		movies:         make(map[string]domain.Movie),
		externalIDs:    make(map[int64]string),
		reviews:        make(map[string]domain.Review),
		reviewsByMovie: make(map[string]idSet),
		reviewsByUser:  make(map[string]idSet),
		reviewPairs:    make(map[pairKey]string),
		entries:        make(map[string]domain.WatchlistEntry),
		entriesByUser:  make(map[string]idSet),
		entryPairs:     make(map[pairKey]string),
	}
	if db.now == nil {
		db.now = func() time.Time { return time.Now().UTC() }
	}
	if db.newID == nil {
		db.newID = newUUID
	}
	return &Repository{
		Users:     &memoryUsers{db: db},
		Movies:    &memoryMovies{db: db},
		Reviews:   &memoryReviews{db: db},
		Watchlist: &memoryWatchlist{db: db},
	}
}

func newUUID() string {
	return uuid.NewString()
}

// dropIndex removes key from index only while it still points at id, so a stale
// record never evicts a newer one sharing the same secondary value.
func dropIndex[K comparable](index map[K]string, key K, id string) {
	if index[key] == id {
		delete(index, key)
	}
}

func dropFromSet(index map[string]idSet, key, id string) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(index, key)
	}
}

func addToSet(index map[string]idSet, key, id string) {
	set, ok := index[key]
	if !ok {
		set = make(idSet)
		index[key] = set
	}
	set.add(id)
}

type memoryUsers struct{ db *memoryDB }

func (s *memoryUsers) Create(ctx context.Context, params domain.UserCreate) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user := domain.User{
		ID:             s.db.newID(),
		Username:       params.Username,
		Email:          params.Email,
		PasswordHash:   params.PasswordHash,
		ProfilePicture: params.ProfilePicture,
		CreatedAt:      s.db.now(),
	}
	s.db.users[user.ID] = user
	s.db.usernames[user.Username] = user.ID
	s.db.emails[user.Email] = user.ID
	return user, nil
}

func (s *memoryUsers) Get(ctx context.Context, id string) (domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	user, ok := s.db.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (s *memoryUsers) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.lookup(s.db.usernames, username)
}

func (s *memoryUsers) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.lookup(s.db.emails, email)
}

func (s *memoryUsers) lookup(index map[string]string, key string) (domain.User, error) {
	id, ok := index[key]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	user, ok := s.db.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (s *memoryUsers) Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	updated := update.Apply(current)
	if updated.Username != current.Username {
		dropIndex(s.db.usernames, current.Username, id)
		s.db.usernames[updated.Username] = id
	}
	if updated.Email != current.Email {
		dropIndex(s.db.emails, current.Email, id)
		s.db.emails[updated.Email] = id
	}
	s.db.users[id] = updated
	return updated, nil
}

func (s *memoryUsers) Delete(ctx context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return false, nil
	}
	delete(s.db.users, id)
	dropIndex(s.db.usernames, user.Username, id)
	dropIndex(s.db.emails, user.Email, id)
	return true, nil
}

type memoryMovies struct{ db *memoryDB }

func (s *memoryMovies) Create(ctx context.Context, params domain.MovieCreate) (domain.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	movie := domain.Movie{
		ID:          s.db.newID(),
		ExternalID:  params.ExternalID,
		Title:       params.Title,
		Synopsis:    params.Synopsis,
		Director:    params.Director,
		Cast:        params.Cast,
		Genres:      params.Genres,
		ReleaseYear: params.ReleaseYear,
		Duration:    params.Duration,
		PosterURL:   params.PosterURL,
		BackdropURL: params.BackdropURL,
		TrailerURL:  params.TrailerURL,
		Featured:    params.Featured,
		Trending:    params.Trending,
		CreatedAt:   s.db.now(),
	}.Clone()
	s.db.movies[movie.ID] = movie
	if movie.ExternalID != 0 {
		s.db.externalIDs[movie.ExternalID] = movie.ID
	}
	return movie.Clone(), nil
}

func (s *memoryMovies) Get(ctx context.Context, id string) (domain.Movie, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	movie, ok := s.db.movies[id]
	if !ok {
		return domain.Movie{}, ErrNotFound
	}
	return movie.Clone(), nil
}

func (s *memoryMovies) GetByExternalID(ctx context.Context, externalID int64) (domain.Movie, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	id, ok := s.db.externalIDs[externalID]
	if !ok || externalID == 0 {
		return domain.Movie{}, ErrNotFound
	}
	movie, ok := s.db.movies[id]
	if !ok {
		return domain.Movie{}, ErrNotFound
	}
	return movie.Clone(), nil
}

func (s *memoryMovies) Update(ctx context.Context, id string, update domain.MovieUpdate) (domain.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	current, ok := s.db.movies[id]
	if !ok {
		return domain.Movie{}, ErrNotFound
	}
	updated := update.Apply(current.Clone())
	s.db.movies[id] = updated
	return updated.Clone(), nil
}

func (s *memoryMovies) SetRating(ctx context.Context, id string, agg domain.RatingAggregate) (domain.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	movie, ok := s.db.movies[id]
	if !ok {
		return domain.Movie{}, ErrNotFound
	}
	// Both fields land in one map write, readers never see a mixed pair.
	movie.AverageRating = agg.Average
	movie.ReviewCount = agg.Count
	s.db.movies[id] = movie
	return movie.Clone(), nil
}

func (s *memoryMovies) Delete(ctx context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	movie, ok := s.db.movies[id]
	if !ok {
		return false, nil
	}
	delete(s.db.movies, id)
	if movie.ExternalID != 0 && s.db.externalIDs[movie.ExternalID] == id {
		delete(s.db.externalIDs, movie.ExternalID)
	}
	return true, nil
}

func (s *memoryMovies) Find(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]domain.Movie, 0)
	for _, movie := range s.db.movies {
		if filter.Matches(movie) {
			out = append(out, movie.Clone())
		}
	}
	return out, nil
}

func (s *memoryMovies) ListFlagged(ctx context.Context, flag Flag) ([]domain.Movie, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]domain.Movie, 0)
	for _, movie := range s.db.movies {
		if (flag == FlagFeatured && movie.Featured) || (flag == FlagTrending && movie.Trending) {
			out = append(out, movie.Clone())
		}
	}
	return out, nil
}

type memoryReviews struct{ db *memoryDB }

func (s *memoryReviews) Create(ctx context.Context, params domain.ReviewCreate) (domain.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.now()
	review := domain.Review{
		ID:             s.db.newID(),
		UserID:         params.UserID,
		MovieID:        params.MovieID,
		Rating:         params.Rating,
		Title:          params.Title,
		Content:        params.Content,
		SpoilerWarning: params.SpoilerWarning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.db.reviews[review.ID] = review
	addToSet(s.db.reviewsByMovie, review.MovieID, review.ID)
	addToSet(s.db.reviewsByUser, review.UserID, review.ID)
	s.db.reviewPairs[pairKey{review.UserID, review.MovieID}] = review.ID
	return review, nil
}

func (s *memoryReviews) Get(ctx context.Context, id string) (domain.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	review, ok := s.db.reviews[id]
	if !ok {
		return domain.Review{}, ErrNotFound
	}
	return review, nil
}

func (s *memoryReviews) GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	id, ok := s.db.reviewPairs[pairKey{userID, movieID}]
	if !ok {
		return domain.Review{}, ErrNotFound
	}
	return s.db.reviews[id], nil
}

func (s *memoryReviews) Update(ctx context.Context, id string, update domain.ReviewUpdate) (domain.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	current, ok := s.db.reviews[id]
	if !ok {
		return domain.Review{}, ErrNotFound
	}
	updated := update.Apply(current)
	updated.UpdatedAt = s.db.now()
	s.db.reviews[id] = updated
	return updated, nil
}

func (s *memoryReviews) Delete(ctx context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	review, ok := s.db.reviews[id]
	if !ok {
		return false, nil
	}
	delete(s.db.reviews, id)
	dropFromSet(s.db.reviewsByMovie, review.MovieID, id)
	dropFromSet(s.db.reviewsByUser, review.UserID, id)
	dropIndex(s.db.reviewPairs, pairKey{review.UserID, review.MovieID}, id)
	return true, nil
}

func (s *memoryReviews) IncrementLikes(ctx context.Context, id string) (domain.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	review, ok := s.db.reviews[id]
	if !ok {
		return domain.Review{}, ErrNotFound
	}
	review.Likes++
	s.db.reviews[id] = review
	return review, nil
}

func (s *memoryReviews) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.collect(s.db.reviewsByMovie[movieID]), nil
}

func (s *memoryReviews) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.collect(s.db.reviewsByUser[userID]), nil
}

func (s *memoryReviews) collect(ids idSet) []domain.Review {
	out := make([]domain.Review, 0, len(ids))
	for id := range ids {
		out = append(out, s.db.reviews[id])
	}
	return out
}

type memoryWatchlist struct{ db *memoryDB }

func (s *memoryWatchlist) Create(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	entry := domain.WatchlistEntry{
		ID:      s.db.newID(),
		UserID:  userID,
		MovieID: movieID,
		AddedAt: s.db.now(),
	}
	s.db.entries[entry.ID] = entry
	addToSet(s.db.entriesByUser, userID, entry.ID)
	s.db.entryPairs[pairKey{userID, movieID}] = entry.ID
	return entry, nil
}

func (s *memoryWatchlist) Get(ctx context.Context, id string) (domain.WatchlistEntry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	entry, ok := s.db.entries[id]
	if !ok {
		return domain.WatchlistEntry{}, ErrNotFound
	}
	return entry, nil
}

func (s *memoryWatchlist) GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	id, ok := s.db.entryPairs[pairKey{userID, movieID}]
	if !ok {
		return domain.WatchlistEntry{}, ErrNotFound
	}
	return s.db.entries[id], nil
}

func (s *memoryWatchlist) Delete(ctx context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	entry, ok := s.db.entries[id]
	if !ok {
		return false, nil
	}
	delete(s.db.entries, id)
	dropFromSet(s.db.entriesByUser, entry.UserID, id)
	dropIndex(s.db.entryPairs, pairKey{entry.UserID, entry.MovieID}, id)
	return true, nil
}

func (s *memoryWatchlist) ListByUser(ctx context.Context, userID string) ([]domain.WatchlistEntry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	ids := s.db.entriesByUser[userID]
	out := make([]domain.WatchlistEntry, 0, len(ids))
	for id := range ids {
		out = append(out, s.db.entries[id])
	}
	return out, nil
}
