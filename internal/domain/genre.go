package domain

import "strings"

// Genre is one tag of the fixed genre enumeration.
type Genre string

const (
	GenreAction         Genre = "action"
	GenreAdventure      Genre = "adventure"
	GenreAnimation      Genre = "animation"
	GenreComedy         Genre = "comedy"
	GenreCrime          Genre = "crime"
	GenreDocumentary    Genre = "documentary"
	GenreDrama          Genre = "drama"
	GenreFamily         Genre = "family"
	GenreFantasy        Genre = "fantasy"
	GenreHistory        Genre = "history"
	GenreHorror         Genre = "horror"
	GenreMusic          Genre = "music"
	GenreMystery        Genre = "mystery"
	GenreRomance        Genre = "romance"
	GenreScienceFiction Genre = "science_fiction"
	GenreThriller       Genre = "thriller"
	GenreWar            Genre = "war"
	GenreWestern        Genre = "western"
)

var allGenres = []Genre{
	GenreAction, GenreAdventure, GenreAnimation, GenreComedy, GenreCrime, GenreDocumentary,
	GenreDrama, GenreFamily, GenreFantasy, GenreHistory, GenreHorror, GenreMusic, GenreMystery,
	GenreRomance, GenreScienceFiction, GenreThriller, GenreWar, GenreWestern,
}

var genreSet = func() map[Genre]struct{} {
	set := make(map[Genre]struct{}, len(allGenres))
	for _, g := range allGenres {
		set[g] = struct{}{}
	}
	return set
}()

// Genres returns the enumeration in declaration order.
func Genres() []Genre {
	out := make([]Genre, len(allGenres))
	copy(out, allGenres)
	return out
}

// Valid reports whether g belongs to the enumeration.
func (g Genre) Valid() bool {
	_, ok := genreSet[g]
	return ok
}

// ParseGenre normalises free-form input ("Science Fiction", "DRAMA", "science-fiction")
// into a Genre. The boolean is false when the input names no known genre.
func ParseGenre(raw string) (Genre, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	g := Genre(normalized)
	if !g.Valid() {
		return "", false
	}
	return g, true
}
