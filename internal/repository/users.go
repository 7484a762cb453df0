package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// UsersRepository persists user accounts in Postgres.
type UsersRepository struct {
	pool  *pgxpool.Pool
	newID func() string
}

const userColumns = `id, username, email, password_hash, profile_picture, created_at`

// Create inserts a user. The unique constraints surface as domain.ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params domain.UserCreate) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, username, email, password_hash, profile_picture)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, userColumns)
	row := r.pool.QueryRow(ctx, query, r.newID(), params.Username, params.Email, params.PasswordHash, params.ProfilePicture)
	return r.scan(row)
}

func (r *UsersRepository) Get(ctx context.Context, id string) (domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UsersRepository) getBy(ctx context.Context, column, value string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	return r.scan(r.pool.QueryRow(ctx, query, value))
}

// Update applies the non-nil fields of update.
func (r *UsersRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	query := fmt.Sprintf(`
        UPDATE users
        SET username = COALESCE($2, username),
            email = COALESCE($3, email),
            password_hash = COALESCE($4, password_hash),
            profile_picture = COALESCE($5, profile_picture)
        WHERE id = $1
        RETURNING %s
    `, userColumns)
	row := r.pool.QueryRow(ctx, query, id, update.Username, update.Email, update.PasswordHash, update.ProfilePicture)
	return r.scan(row)
}

func (r *UsersRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UsersRepository) scan(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.ProfilePicture, &user.CreatedAt)
	if err != nil {
		return domain.User{}, translateError(err)
	}
	return user, nil
}
