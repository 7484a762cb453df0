package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

const longContent = "A patient, carefully shot film that rewards a second viewing more than the first."

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

type fakeMetadata struct {
	calls   int
	details domain.MovieCreate
	err     error
}

func (f *fakeMetadata) MovieDetails(_ context.Context, externalID int64) (domain.MovieCreate, error) {
	f.calls++
	if f.err != nil {
		return domain.MovieCreate{}, f.err
	}
	return f.details, nil
}

type fixture struct {
	ctx      context.Context
	svc      *Service
	repo     *repository.Repository
	reporter *recordingReporter
}

// newFixture builds a Service over the memory backend with a clock that advances
// one second per call and sequential ids, so creation order decides every tie.
func newFixture(t testing.TB, metadata MetadataSource) *fixture {
	t.Helper()
	var (
		mu    sync.Mutex
		seq   int
		clock = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	)
	repo := repository.NewMemory(repository.MemoryOptions{
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%04d", seq)
		},
	})
	reporter := &recordingReporter{}
	svc := New(repo, Options{
		Logger:   log.New(io.Discard, "", 0),
		Reporter: reporter,
		Metadata: metadata,
	})
	return &fixture{ctx: context.Background(), svc: svc, repo: repo, reporter: reporter}
}

func (f *fixture) user(t testing.TB, name string) domain.User {
	t.Helper()
	user, err := f.svc.RegisterUser(f.ctx, domain.UserCreate{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$10$hash",
	})
	if err != nil {
		t.Fatalf("RegisterUser(%s): %v", name, err)
	}
	return user
}

func (f *fixture) movie(t testing.TB, title string, year int, genres ...domain.Genre) domain.Movie {
	t.Helper()
	if len(genres) == 0 {
		genres = []domain.Genre{domain.GenreDrama}
	}
	movie, err := f.svc.CreateMovie(f.ctx, domain.MovieCreate{
		Title:       title,
		Synopsis:    "Synopsis of " + title,
		Director:    "Christopher Nolan",
		Cast:        []string{"Christian Bale"},
		Genres:      genres,
		ReleaseYear: year,
		Duration:    120,
	})
	if err != nil {
		t.Fatalf("CreateMovie(%s): %v", title, err)
	}
	return movie
}

func (f *fixture) review(t testing.TB, userID, movieID string, rating int) domain.Review {
	t.Helper()
	review, err := f.svc.CreateReview(f.ctx, domain.ReviewCreate{
		UserID:  userID,
		MovieID: movieID,
		Rating:  rating,
		Title:   "Thoughts",
		Content: longContent,
	})
	if err != nil {
		t.Fatalf("CreateReview(%d): %v", rating, err)
	}
	return review
}

func (f *fixture) ratingOf(t testing.TB, movieID string) (string, int) {
	t.Helper()
	movie, err := f.svc.GetMovie(f.ctx, movieID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	return domain.FormatAverage(movie.AverageRating, movie.ReviewCount), movie.ReviewCount
}

func TestComputeRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    domain.RatingAggregate
	}{
		{"empty", nil, domain.RatingAggregate{Average: 0, Count: 0}},
		{"single", []int{4}, domain.RatingAggregate{Average: 4, Count: 1}},
		{"half", []int{4, 5}, domain.RatingAggregate{Average: 4.5, Count: 2}},
		{"repeating thirds", []int{5, 5, 4}, domain.RatingAggregate{Average: 4.67, Count: 3}},
		{"thirds down", []int{1, 1, 2}, domain.RatingAggregate{Average: 1.33, Count: 3}},
		{"tie rounds away from zero", []int{5, 5, 5, 5, 5, 4, 2, 2}, domain.RatingAggregate{Average: 4.13, Count: 8}},
		{"all ones", []int{1, 1, 1, 1}, domain.RatingAggregate{Average: 1, Count: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRating(tt.ratings); got != tt.want {
				t.Fatalf("ComputeRating(%v) = %+v, want %+v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestRatingFollowsReviewLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	movie := f.movie(t, "Inception", 2010)

	if avg, count := f.ratingOf(t, movie.ID); avg != "0" || count != 0 {
		t.Fatalf("no reviews: (%s, %d), want (0, 0)", avg, count)
	}

	four := f.review(t, alice.ID, movie.ID, 4)
	if avg, count := f.ratingOf(t, movie.ID); avg != "4.00" || count != 1 {
		t.Fatalf("after 4: (%s, %d), want (4.00, 1)", avg, count)
	}

	f.review(t, bob.ID, movie.ID, 5)
	if avg, count := f.ratingOf(t, movie.ID); avg != "4.50" || count != 2 {
		t.Fatalf("after 5: (%s, %d), want (4.50, 2)", avg, count)
	}

	if err := f.svc.DeleteReview(f.ctx, four.ID, alice.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if avg, count := f.ratingOf(t, movie.ID); avg != "5.00" || count != 1 {
		t.Fatalf("after delete: (%s, %d), want (5.00, 1)", avg, count)
	}
}

func TestUpdateReviewRecomputesOnlyOnRatingChange(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	movie := f.movie(t, "Heat", 1995)
	review := f.review(t, alice.ID, movie.ID, 3)

	title := "Second thoughts"
	if _, err := f.svc.UpdateReview(f.ctx, review.ID, alice.ID, domain.ReviewUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdateReview(title): %v", err)
	}
	if avg, _ := f.ratingOf(t, movie.ID); avg != "3.00" {
		t.Fatalf("average after title edit = %s, want 3.00", avg)
	}

	rating := 1
	updated, err := f.svc.UpdateReview(f.ctx, review.ID, alice.ID, domain.ReviewUpdate{Rating: &rating})
	if err != nil {
		t.Fatalf("UpdateReview(rating): %v", err)
	}
	if updated.Title != title || updated.Rating != 1 {
		t.Fatalf("UpdateReview returned %+v", updated)
	}
	if avg, count := f.ratingOf(t, movie.ID); avg != "1.00" || count != 1 {
		t.Fatalf("after rating edit: (%s, %d), want (1.00, 1)", avg, count)
	}
}

func TestReviewRules(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	movie := f.movie(t, "Heat", 1995)
	review := f.review(t, alice.ID, movie.ID, 4)

	t.Run("duplicate review conflicts", func(t *testing.T) {
		_, err := f.svc.CreateReview(f.ctx, domain.ReviewCreate{
			UserID: alice.ID, MovieID: movie.ID, Rating: 2, Title: "Again", Content: longContent,
		})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
		if _, count := f.ratingOf(t, movie.ID); count != 1 {
			t.Fatalf("reviewCount = %d, want 1", count)
		}
	})

	t.Run("validation happens before any write", func(t *testing.T) {
		cases := []domain.ReviewCreate{
			{UserID: mallory.ID, MovieID: movie.ID, Rating: 0, Title: "x", Content: longContent},
			{UserID: mallory.ID, MovieID: movie.ID, Rating: 6, Title: "x", Content: longContent},
			{UserID: mallory.ID, MovieID: movie.ID, Rating: 3, Title: "x", Content: "too short"},
			{UserID: mallory.ID, MovieID: movie.ID, Rating: 3, Title: "", Content: longContent},
		}
		for _, c := range cases {
			_, err := f.svc.CreateReview(f.ctx, c)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("CreateReview(%+v) err = %v, want ValidationError", c, err)
			}
		}
		if _, count := f.ratingOf(t, movie.ID); count != 1 {
			t.Fatalf("reviewCount = %d after rejected input, want 1", count)
		}
	})

	t.Run("content length counts characters", func(t *testing.T) {
		content := strings.Repeat("é", domain.MinReviewContentLength)
		if _, err := f.svc.CreateReview(f.ctx, domain.ReviewCreate{
			UserID: mallory.ID, MovieID: movie.ID, Rating: 5, Title: "Unicode", Content: content,
		}); err != nil {
			t.Fatalf("CreateReview with %d runes: %v", domain.MinReviewContentLength, err)
		}
	})

	t.Run("validation error names the field", func(t *testing.T) {
		short := "short"
		_, err := f.svc.UpdateReview(f.ctx, review.ID, alice.ID, domain.ReviewUpdate{Content: &short})
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) || len(vErr.Fields) != 1 || vErr.Fields[0].Field != "content" {
			t.Fatalf("err = %v, want content ValidationError", err)
		}
	})

	t.Run("only the owner mutates", func(t *testing.T) {
		rating := 1
		if _, err := f.svc.UpdateReview(f.ctx, review.ID, mallory.ID, domain.ReviewUpdate{Rating: &rating}); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("UpdateReview by other user err = %v, want ErrForbidden", err)
		}
		if err := f.svc.DeleteReview(f.ctx, review.ID, mallory.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("DeleteReview by other user err = %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown references", func(t *testing.T) {
		_, err := f.svc.CreateReview(f.ctx, domain.ReviewCreate{
			UserID: "ghost", MovieID: movie.ID, Rating: 3, Title: "x", Content: longContent,
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("unknown user err = %v, want ErrNotFound", err)
		}
		_, err = f.svc.CreateReview(f.ctx, domain.ReviewCreate{
			UserID: alice.ID, MovieID: "ghost", Rating: 3, Title: "x", Content: longContent,
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("unknown movie err = %v, want ErrNotFound", err)
		}
		if err := f.svc.DeleteReview(f.ctx, "ghost", alice.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("DeleteReview(ghost) err = %v, want ErrNotFound", err)
		}
	})

	t.Run("likes keep counting", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			liked, err := f.svc.LikeReview(f.ctx, review.ID)
			if err != nil {
				t.Fatalf("LikeReview: %v", err)
			}
			if liked.Likes != i {
				t.Fatalf("likes = %d, want %d", liked.Likes, i)
			}
		}
		if _, err := f.svc.LikeReview(f.ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("LikeReview(ghost) err = %v, want ErrNotFound", err)
		}
	})
}

func TestQueryMoviesGenreYearPagination(t *testing.T) {
	f := newFixture(t, nil)
	f.movie(t, "The Dark Knight", 2008, domain.GenreDrama, domain.GenreAction)
	f.movie(t, "Oppenheimer", 2023, domain.GenreDrama, domain.GenreHistory)
	f.movie(t, "Past Lives", 2024, domain.GenreDrama, domain.GenreRomance)
	f.movie(t, "Dune", 2021, domain.GenreScienceFiction)

	first, err := f.svc.QueryMovies(f.ctx, MovieQuery{Genre: "drama", Sort: "year", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("QueryMovies page 1: %v", err)
	}
	second, err := f.svc.QueryMovies(f.ctx, MovieQuery{Genre: "drama", Sort: "year", Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("QueryMovies page 2: %v", err)
	}

	years := func(page MoviePage) []int {
		out := make([]int, 0, len(page.Movies))
		for _, m := range page.Movies {
			out = append(out, m.ReleaseYear)
		}
		return out
	}
	if got := fmt.Sprint(years(first)); got != "[2024 2023]" {
		t.Fatalf("page 1 years = %s, want [2024 2023]", got)
	}
	if got := fmt.Sprint(years(second)); got != "[2008]" {
		t.Fatalf("page 2 years = %s, want [2008]", got)
	}
	if first.Total != 3 || second.Total != 3 {
		t.Fatalf("totals = (%d, %d), want (3, 3)", first.Total, second.Total)
	}

	beyond, err := f.svc.QueryMovies(f.ctx, MovieQuery{Genre: "drama", Sort: "year", Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("QueryMovies page 3: %v", err)
	}
	if len(beyond.Movies) != 0 || beyond.Total != 3 {
		t.Fatalf("beyond last page = (%d movies, total %d), want (0, 3)", len(beyond.Movies), beyond.Total)
	}
}

func TestQueryMoviesPagesDoNotOverlap(t *testing.T) {
	f := newFixture(t, nil)
	// Identical sort keys force the id tie-break to decide page boundaries.
	for i := 0; i < 7; i++ {
		f.movie(t, "Same Title", 2000)
	}
	for _, key := range []string{"title", "year", "rating", "reviews"} {
		seen := make(map[string]bool)
		for page := 1; page <= 3; page++ {
			res, err := f.svc.QueryMovies(f.ctx, MovieQuery{Sort: key, Page: page, Limit: 3})
			if err != nil {
				t.Fatalf("QueryMovies(%s, %d): %v", key, page, err)
			}
			if res.Total != 7 {
				t.Fatalf("total = %d, want 7", res.Total)
			}
			for _, m := range res.Movies {
				if seen[m.ID] {
					t.Fatalf("sort %s: movie %s appears on two pages", key, m.ID)
				}
				seen[m.ID] = true
			}
		}
		if len(seen) != 7 {
			t.Fatalf("sort %s: pages covered %d movies, want 7", key, len(seen))
		}
	}
}

func TestQueryMoviesSortingAndFilters(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	banana := f.movie(t, "Banana", 1999)
	apple := f.movie(t, "apple", 2001)
	eclair := f.movie(t, "Éclair", 2010)

	f.review(t, alice.ID, apple.ID, 5)
	f.review(t, bob.ID, apple.ID, 3)
	f.review(t, alice.ID, banana.ID, 3)
	f.review(t, alice.ID, eclair.ID, 5)

	titles := func(page MoviePage) string {
		out := make([]string, 0, len(page.Movies))
		for _, m := range page.Movies {
			out = append(out, m.Title)
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		name  string
		query MovieQuery
		want  string
	}{
		{"default is locale-aware title", MovieQuery{}, "apple,Banana,Éclair"},
		{"year desc", MovieQuery{Sort: "year"}, "Éclair,apple,Banana"},
		{"rating desc", MovieQuery{Sort: "rating"}, "Éclair,apple,Banana"},
		{"reviews desc", MovieQuery{Sort: "reviews"}, "apple,Banana,Éclair"},
		{"min rating inclusive", MovieQuery{MinRating: floatPtr(4)}, "apple,Éclair"},
		{"min rating excludes", MovieQuery{MinRating: floatPtr(4.5)}, "Éclair"},
		{"year filter", MovieQuery{Year: intPtr(1999)}, "Banana"},
		{"search is case-insensitive", MovieQuery{Search: "nolan"}, "apple,Banana,Éclair"},
		{"search cast", MovieQuery{Search: "BALE"}, "apple,Banana,Éclair"},
		{"search miss", MovieQuery{Search: "tarantino"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.QueryMovies(f.ctx, tt.query)
			if err != nil {
				t.Fatalf("QueryMovies: %v", err)
			}
			if got := titles(res); got != tt.want {
				t.Fatalf("titles = %q, want %q", got, tt.want)
			}
			if res.Total != len(res.Movies) {
				t.Fatalf("total = %d, want %d", res.Total, len(res.Movies))
			}
		})
	}

	res, err := f.svc.QueryMovies(f.ctx, MovieQuery{Sort: "rating"})
	if err != nil {
		t.Fatalf("QueryMovies: %v", err)
	}
	for i := 1; i < len(res.Movies); i++ {
		if res.Movies[i-1].AverageRating < res.Movies[i].AverageRating {
			t.Fatalf("rating order broken at %d: %v < %v", i, res.Movies[i-1].AverageRating, res.Movies[i].AverageRating)
		}
	}
}

func TestQueryMoviesClampsAndRejects(t *testing.T) {
	f := newFixture(t, nil)
	f.movie(t, "Solo", 2018)

	res, err := f.svc.QueryMovies(f.ctx, MovieQuery{Page: -4, Limit: 0})
	if err != nil {
		t.Fatalf("QueryMovies: %v", err)
	}
	if res.Page != 1 || res.Limit != DefaultLimit || len(res.Movies) != 1 {
		t.Fatalf("clamped page = (%d, %d, %d movies)", res.Page, res.Limit, len(res.Movies))
	}
	res, err = f.svc.QueryMovies(f.ctx, MovieQuery{Limit: 1000})
	if err != nil {
		t.Fatalf("QueryMovies: %v", err)
	}
	if res.Limit != MaxLimit {
		t.Fatalf("limit = %d, want %d", res.Limit, MaxLimit)
	}

	bad := []MovieQuery{
		{Sort: "popularity"},
		{Genre: "noir"},
		{MinRating: floatPtr(-1)},
		{MinRating: floatPtr(5.5)},
		{MinRating: floatPtr(math.NaN())},
		{MinRating: floatPtr(math.Inf(1))},
		{MinRating: floatPtr(math.Inf(-1))},
	}
	for _, q := range bad {
		if _, err := f.svc.QueryMovies(f.ctx, q); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("QueryMovies(%+v) err = %v, want ErrValidation", q, err)
		}
	}
}

func TestResolverOrderAndDanglingReferences(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	keep := f.movie(t, "Keep", 2000)
	gone := f.movie(t, "Gone", 2001)

	older := f.review(t, alice.ID, keep.ID, 3)
	newer := f.review(t, bob.ID, keep.ID, 5)
	f.review(t, alice.ID, gone.ID, 4)

	reviews, err := f.svc.ReviewsForMovie(f.ctx, keep.ID)
	if err != nil {
		t.Fatalf("ReviewsForMovie: %v", err)
	}
	if len(reviews) != 2 || reviews[0].ID != newer.ID || reviews[1].ID != older.ID {
		t.Fatalf("ReviewsForMovie order = %+v", reviews)
	}
	if reviews[0].User.Username != "bob" || reviews[0].Movie.Title != "Keep" {
		t.Fatalf("projections = %+v / %+v", reviews[0].User, reviews[0].Movie)
	}

	if _, err := f.svc.AddToWatchlist(f.ctx, alice.ID, keep.ID); err != nil {
		t.Fatalf("AddToWatchlist(keep): %v", err)
	}
	if _, err := f.svc.AddToWatchlist(f.ctx, alice.ID, gone.ID); err != nil {
		t.Fatalf("AddToWatchlist(gone): %v", err)
	}
	items, err := f.svc.WatchlistForUser(f.ctx, alice.ID)
	if err != nil || len(items) != 2 || items[0].Movie.ID != gone.ID {
		t.Fatalf("WatchlistForUser = (%+v, %v), want gone first", items, err)
	}

	if err := f.svc.DeleteMovie(f.ctx, gone.ID); err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}

	mine, err := f.svc.ReviewsForUser(f.ctx, alice.ID)
	if err != nil {
		t.Fatalf("ReviewsForUser: %v", err)
	}
	if len(mine) != 1 || mine[0].MovieID != keep.ID {
		t.Fatalf("ReviewsForUser after movie delete = %+v", mine)
	}
	items, err = f.svc.WatchlistForUser(f.ctx, alice.ID)
	if err != nil || len(items) != 1 || items[0].Movie.ID != keep.ID {
		t.Fatalf("WatchlistForUser after movie delete = (%+v, %v)", items, err)
	}

	if _, err := f.repo.Users.Delete(f.ctx, bob.ID); err != nil {
		t.Fatalf("delete bob: %v", err)
	}
	withReviews, err := f.svc.MovieWithReviews(f.ctx, keep.ID)
	if err != nil {
		t.Fatalf("MovieWithReviews: %v", err)
	}
	if len(withReviews.Reviews) != 1 || withReviews.Reviews[0].ID != older.ID {
		t.Fatalf("MovieWithReviews after user delete = %+v", withReviews.Reviews)
	}
	if _, err := f.svc.MovieWithReviews(f.ctx, gone.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("MovieWithReviews(deleted) err = %v, want ErrNotFound", err)
	}
}

func TestRecomputeOnDeletedMovieIsAbsorbed(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	movie := f.movie(t, "Ephemeral", 2020)
	review := f.review(t, alice.ID, movie.ID, 4)

	if err := f.svc.DeleteMovie(f.ctx, movie.ID); err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}
	if err := f.svc.DeleteReview(f.ctx, review.ID, alice.ID); err != nil {
		t.Fatalf("DeleteReview on dangling movie: %v", err)
	}
	if f.reporter.count() != 1 {
		t.Fatalf("reported errors = %d, want 1", f.reporter.count())
	}
}

func TestWatchlistMembership(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	movie := f.movie(t, "Arrival", 2016)

	if _, err := f.svc.AddToWatchlist(f.ctx, alice.ID, movie.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := f.svc.AddToWatchlist(f.ctx, alice.ID, movie.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second add err = %v, want ErrConflict", err)
	}
	items, err := f.svc.WatchlistForUser(f.ctx, alice.ID)
	if err != nil || len(items) != 1 {
		t.Fatalf("watchlist size = (%d, %v), want 1", len(items), err)
	}

	in, err := f.svc.IsInWatchlist(f.ctx, alice.ID, movie.ID)
	if err != nil || !in {
		t.Fatalf("IsInWatchlist = (%v, %v), want true", in, err)
	}
	if err := f.svc.RemoveFromWatchlist(f.ctx, alice.ID, movie.ID); err != nil {
		t.Fatalf("RemoveFromWatchlist: %v", err)
	}
	in, err = f.svc.IsInWatchlist(f.ctx, alice.ID, movie.ID)
	if err != nil || in {
		t.Fatalf("IsInWatchlist after remove = (%v, %v), want false", in, err)
	}
	if err := f.svc.RemoveFromWatchlist(f.ctx, alice.ID, movie.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second remove err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.AddToWatchlist(f.ctx, alice.ID, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("add unknown movie err = %v, want ErrNotFound", err)
	}
}

func TestUserRegistrationAndProfile(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	dupName := domain.UserCreate{Username: "alice", Email: "new@example.com", PasswordHash: "x"}
	if _, err := f.svc.RegisterUser(f.ctx, dupName); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate username err = %v, want ErrConflict", err)
	}
	dupEmail := domain.UserCreate{Username: "carol", Email: "alice@example.com", PasswordHash: "x"}
	if _, err := f.svc.RegisterUser(f.ctx, dupEmail); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate email err = %v, want ErrConflict", err)
	}
	badEmail := domain.UserCreate{Username: "carol", Email: "not-an-email", PasswordHash: "x"}
	if _, err := f.svc.RegisterUser(f.ctx, badEmail); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("malformed email err = %v, want ErrValidation", err)
	}

	taken := "bob"
	if _, err := f.svc.UpdateProfile(f.ctx, alice.ID, domain.UserUpdate{Username: &taken}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("rename to taken username err = %v, want ErrConflict", err)
	}
	same := "alice"
	picture := "https://example.com/alice.png"
	updated, err := f.svc.UpdateProfile(f.ctx, alice.ID, domain.UserUpdate{Username: &same, ProfilePicture: &picture})
	if err != nil {
		t.Fatalf("UpdateProfile keeping own username: %v", err)
	}
	if updated.ProfilePicture != picture {
		t.Fatalf("ProfilePicture = %q", updated.ProfilePicture)
	}

	got, err := f.svc.GetUserByUsername(f.ctx, "bob")
	if err != nil || got.ID != bob.ID {
		t.Fatalf("GetUserByUsername = (%v, %v)", got.ID, err)
	}
	if _, err := f.svc.GetUser(f.ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetUser(ghost) err = %v, want ErrNotFound", err)
	}
}

func TestMovieCurationAndUpdates(t *testing.T) {
	f := newFixture(t, nil)
	zulu := f.movie(t, "Zulu", 1964)
	alpha := f.movie(t, "Alpha", 2018)
	f.movie(t, "Unflagged", 2000)

	yes := true
	for _, id := range []string{zulu.ID, alpha.ID} {
		if _, err := f.svc.UpdateMovie(f.ctx, id, domain.MovieUpdate{Featured: &yes}); err != nil {
			t.Fatalf("UpdateMovie: %v", err)
		}
	}
	if _, err := f.svc.UpdateMovie(f.ctx, zulu.ID, domain.MovieUpdate{Trending: &yes}); err != nil {
		t.Fatalf("UpdateMovie: %v", err)
	}

	featured, err := f.svc.FeaturedMovies(f.ctx)
	if err != nil || len(featured) != 2 || featured[0].Title != "Alpha" {
		t.Fatalf("FeaturedMovies = (%v, %v)", featured, err)
	}
	trending, err := f.svc.TrendingMovies(f.ctx)
	if err != nil || len(trending) != 1 || trending[0].ID != zulu.ID {
		t.Fatalf("TrendingMovies = (%v, %v)", trending, err)
	}

	if _, err := f.svc.UpdateMovie(f.ctx, zulu.ID, domain.MovieUpdate{Genres: []domain.Genre{"noir"}}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdateMovie with unknown genre err = %v, want ErrValidation", err)
	}
	if _, err := f.svc.CreateMovie(f.ctx, domain.MovieCreate{Title: "No genres", Synopsis: "s", Director: "d", ReleaseYear: 2000}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("CreateMovie without genres err = %v, want ErrValidation", err)
	}
	if err := f.svc.DeleteMovie(f.ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("DeleteMovie(ghost) err = %v, want ErrNotFound", err)
	}
}

func TestImportMovie(t *testing.T) {
	source := &fakeMetadata{details: domain.MovieCreate{
		Title:       "Inception",
		Synopsis:    "Dreams within dreams.",
		Director:    "Christopher Nolan",
		Cast:        []string{"Leonardo DiCaprio"},
		Genres:      []domain.Genre{domain.GenreScienceFiction},
		ReleaseYear: 2010,
		Duration:    148,
	}}
	f := newFixture(t, source)

	movie, err := f.svc.ImportMovie(f.ctx, 27205)
	if err != nil {
		t.Fatalf("ImportMovie: %v", err)
	}
	if movie.ExternalID != 27205 || movie.Title != "Inception" || movie.ReviewCount != 0 {
		t.Fatalf("imported movie = %+v", movie)
	}

	if _, err := f.svc.ImportMovie(f.ctx, 27205); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second import err = %v, want ErrConflict", err)
	}
	if source.calls != 1 {
		t.Fatalf("metadata calls = %d, want 1", source.calls)
	}
	if _, err := f.svc.ImportMovie(f.ctx, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("import id 0 err = %v, want ErrValidation", err)
	}

	source.err = domain.ErrNotFound
	if _, err := f.svc.ImportMovie(f.ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("upstream miss err = %v, want ErrNotFound", err)
	}

	disabled := newFixture(t, nil)
	if _, err := disabled.svc.ImportMovie(disabled.ctx, 1); !errors.Is(err, ErrImportDisabled) {
		t.Fatalf("import without source err = %v, want ErrImportDisabled", err)
	}
}

func TestConcurrentReviewsKeepRatingConsistent(t *testing.T) {
	f := newFixture(t, nil)
	movie := f.movie(t, "Crowded", 2022)

	const writers = 20
	users := make([]domain.User, writers)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("user%02d", i))
	}

	var wg sync.WaitGroup
	for i, user := range users {
		wg.Add(1)
		go func(rating int, userID string) {
			defer wg.Done()
			_, err := f.svc.CreateReview(f.ctx, domain.ReviewCreate{
				UserID: userID, MovieID: movie.ID, Rating: rating, Title: "t", Content: longContent,
			})
			if err != nil {
				t.Errorf("CreateReview: %v", err)
			}
		}(i%5+1, user.ID)
	}

	// Readers running alongside must always see a pair that some review set produces.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			m, err := f.svc.GetMovie(f.ctx, movie.ID)
			if err != nil {
				t.Errorf("GetMovie: %v", err)
				return
			}
			if (m.ReviewCount == 0) != (m.AverageRating == 0) {
				t.Errorf("inconsistent pair (%v, %d)", m.AverageRating, m.ReviewCount)
				return
			}
		}
	}()
	wg.Wait()
	<-done

	if avg, count := f.ratingOf(t, movie.ID); avg != "3.00" || count != writers {
		t.Fatalf("final rating = (%s, %d), want (3.00, %d)", avg, count, writers)
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
