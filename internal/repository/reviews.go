package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// ReviewsRepository persists reviews in Postgres.
type ReviewsRepository struct {
	pool  *pgxpool.Pool
	newID func() string
}

const reviewColumns = `id, user_id, movie_id, rating, title, content, spoiler_warning, likes, created_at, updated_at`

// Create inserts a review. A second review by the same user for the same movie
// violates the (user_id, movie_id) constraint and yields domain.ErrConflict.
func (r *ReviewsRepository) Create(ctx context.Context, params domain.ReviewCreate) (domain.Review, error) {
	query := fmt.Sprintf(`
        INSERT INTO reviews (id, user_id, movie_id, rating, title, content, spoiler_warning)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING %s
    `, reviewColumns)
	row := r.pool.QueryRow(ctx, query,
		r.newID(),
		params.UserID,
		params.MovieID,
		params.Rating,
		params.Title,
		params.Content,
		params.SpoilerWarning,
	)
	return scanReview(row)
}

func (r *ReviewsRepository) Get(ctx context.Context, id string) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)
	return scanReview(r.pool.QueryRow(ctx, query, id))
}

func (r *ReviewsRepository) GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1 AND movie_id = $2`, reviewColumns)
	return scanReview(r.pool.QueryRow(ctx, query, userID, movieID))
}

// Update applies the non-nil fields of update and bumps updated_at.
func (r *ReviewsRepository) Update(ctx context.Context, id string, update domain.ReviewUpdate) (domain.Review, error) {
	query := fmt.Sprintf(`
        UPDATE reviews
        SET rating = COALESCE($2, rating),
            title = COALESCE($3, title),
            content = COALESCE($4, content),
            spoiler_warning = COALESCE($5, spoiler_warning),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, reviewColumns)
	row := r.pool.QueryRow(ctx, query, id, update.Rating, update.Title, update.Content, update.SpoilerWarning)
	return scanReview(row)
}

func (r *ReviewsRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementLikes adds one like atomically.
func (r *ReviewsRepository) IncrementLikes(ctx context.Context, id string) (domain.Review, error) {
	query := fmt.Sprintf(`UPDATE reviews SET likes = likes + 1 WHERE id = $1 RETURNING %s`, reviewColumns)
	return scanReview(r.pool.QueryRow(ctx, query, id))
}

func (r *ReviewsRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE movie_id = $1`, reviewColumns)
	return r.list(ctx, query, movieID)
}

func (r *ReviewsRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1`, reviewColumns)
	return r.list(ctx, query, userID)
}

func (r *ReviewsRepository) list(ctx context.Context, query string, arg string) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.MovieID,
		&review.Rating,
		&review.Title,
		&review.Content,
		&review.SpoilerWarning,
		&review.Likes,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return domain.Review{}, translateError(err)
	}
	return review, nil
}
