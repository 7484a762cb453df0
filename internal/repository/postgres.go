package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

const uniqueViolation = "23505"

// translateError maps driver errors onto the domain sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrConflict
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching raw anywhere in a column.
func containsPattern(raw string) string {
	return "%" + likeEscaper.Replace(raw) + "%"
}

func genreStrings(genres []domain.Genre) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		out = append(out, string(g))
	}
	return out
}

func genresFromStrings(raw []string) []domain.Genre {
	out := make([]domain.Genre, 0, len(raw))
	for _, g := range raw {
		out = append(out, domain.Genre(g))
	}
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
