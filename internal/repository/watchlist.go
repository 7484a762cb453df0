package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// WatchlistRepository persists watchlist entries in Postgres.
type WatchlistRepository struct {
	pool  *pgxpool.Pool
	newID func() string
}

const entryColumns = `id, user_id, movie_id, added_at`

func (r *WatchlistRepository) Create(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO watchlist (id, user_id, movie_id)
        VALUES ($1,$2,$3)
        RETURNING `+entryColumns, r.newID(), userID, movieID)
	return scanEntry(row)
}

func (r *WatchlistRepository) Get(ctx context.Context, id string) (domain.WatchlistEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM watchlist WHERE id = $1`, id))
}

func (r *WatchlistRepository) GetByUserAndMovie(ctx context.Context, userID, movieID string) (domain.WatchlistEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM watchlist WHERE user_id = $1 AND movie_id = $2`, userID, movieID))
}

func (r *WatchlistRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM watchlist WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WatchlistEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM watchlist WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.WatchlistEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanEntry(row pgx.Row) (domain.WatchlistEntry, error) {
	var entry domain.WatchlistEntry
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.MovieID, &entry.AddedAt); err != nil {
		return domain.WatchlistEntry{}, translateError(err)
	}
	return entry, nil
}
