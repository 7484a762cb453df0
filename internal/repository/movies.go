package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool  *pgxpool.Pool
	newID func() string
}

const movieColumns = `
    id,
    external_id,
    title,
    synopsis,
    director,
    cast_members,
    genres,
    release_year,
    duration,
    poster_url,
    backdrop_url,
    trailer_url,
    average_rating::float8,
    review_count,
    featured,
    trending,
    created_at
`

// Create inserts a new movie row and returns the stored entity. A duplicate
// non-zero external id yields domain.ErrConflict.
func (r *MoviesRepository) Create(ctx context.Context, params domain.MovieCreate) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (id, external_id, title, synopsis, director, cast_members, genres,
                            release_year, duration, poster_url, backdrop_url, trailer_url, featured, trending)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		r.newID(),
		params.ExternalID,
		params.Title,
		params.Synopsis,
		params.Director,
		nonNilStrings(params.Cast),
		genreStrings(params.Genres),
		params.ReleaseYear,
		params.Duration,
		params.PosterURL,
		params.BackdropURL,
		params.TrailerURL,
		params.Featured,
		params.Trending,
	)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, translateError(err)
	}
	return movie, nil
}

// Get fetches a movie by its identifier.
func (r *MoviesRepository) Get(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, translateError(err)
	}
	return movie, nil
}

// GetByExternalID fetches the movie imported from the given TMDB id.
func (r *MoviesRepository) GetByExternalID(ctx context.Context, externalID int64) (domain.Movie, error) {
	if externalID == 0 {
		return domain.Movie{}, ErrNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE external_id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		return domain.Movie{}, translateError(err)
	}
	return movie, nil
}

// Update applies the non-nil fields of update. Rating fields are never touched here.
func (r *MoviesRepository) Update(ctx context.Context, id string, update domain.MovieUpdate) (domain.Movie, error) {
	var cast, genres []string
	if update.Cast != nil {
		cast = nonNilStrings(update.Cast)
	}
	if update.Genres != nil {
		genres = genreStrings(update.Genres)
	}

	query := fmt.Sprintf(`
        UPDATE movies
        SET title = COALESCE($2, title),
            synopsis = COALESCE($3, synopsis),
            director = COALESCE($4, director),
            cast_members = COALESCE($5::text[], cast_members),
            genres = COALESCE($6::text[], genres),
            release_year = COALESCE($7, release_year),
            duration = COALESCE($8, duration),
            poster_url = COALESCE($9, poster_url),
            backdrop_url = COALESCE($10, backdrop_url),
            trailer_url = COALESCE($11, trailer_url),
            featured = COALESCE($12, featured),
            trending = COALESCE($13, trending)
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		id,
		update.Title,
		update.Synopsis,
		update.Director,
		cast,
		genres,
		update.ReleaseYear,
		update.Duration,
		update.PosterURL,
		update.BackdropURL,
		update.TrailerURL,
		update.Featured,
		update.Trending,
	)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, translateError(err)
	}
	return movie, nil
}

// SetRating writes the derived average and count in a single statement.
func (r *MoviesRepository) SetRating(ctx context.Context, id string, agg domain.RatingAggregate) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET average_rating = $2::float8::numeric(3,2),
            review_count = $3
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id, agg.Average, agg.Count))
	if err != nil {
		return domain.Movie{}, translateError(err)
	}
	return movie, nil
}

// Delete removes the movie row. Reviews and watchlist entries are left in place.
func (r *MoviesRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Find returns every movie matching filter in unspecified order.
func (r *MoviesRepository) Find(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != nil && *filter.Search != "" {
		p := arg(containsPattern(*filter.Search))
		where = append(where, fmt.Sprintf(
			"(title ILIKE %[1]s OR director ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(cast_members) AS member WHERE member ILIKE %[1]s))", p))
	}
	if filter.Genre != nil {
		where = append(where, fmt.Sprintf("%s = ANY(genres)", arg(string(*filter.Genre))))
	}
	if filter.Year != nil {
		where = append(where, fmt.Sprintf("release_year = %s", arg(*filter.Year)))
	}
	if filter.MinRating != nil {
		where = append(where, fmt.Sprintf("average_rating::float8 >= %s", arg(*filter.MinRating)))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	return r.queryMovies(ctx, queryBuilder.String(), args...)
}

// ListFlagged returns the movies carrying the given curation flag.
func (r *MoviesRepository) ListFlagged(ctx context.Context, flag Flag) ([]domain.Movie, error) {
	var column string
	switch flag {
	case FlagFeatured:
		column = "featured"
	case FlagTrending:
		column = "trending"
	default:
		return nil, fmt.Errorf("unknown movie flag %q", flag)
	}
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE %s`, movieColumns, column)
	return r.queryMovies(ctx, query)
}

func (r *MoviesRepository) queryMovies(ctx context.Context, query string, args ...interface{}) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie  domain.Movie
		cast   []string
		genres []string
	)

	err := row.Scan(
		&movie.ID,
		&movie.ExternalID,
		&movie.Title,
		&movie.Synopsis,
		&movie.Director,
		&cast,
		&genres,
		&movie.ReleaseYear,
		&movie.Duration,
		&movie.PosterURL,
		&movie.BackdropURL,
		&movie.TrailerURL,
		&movie.AverageRating,
		&movie.ReviewCount,
		&movie.Featured,
		&movie.Trending,
		&movie.CreatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.Cast = nonNilStrings(cast)
	movie.Genres = genresFromStrings(genres)
	return movie, nil
}
