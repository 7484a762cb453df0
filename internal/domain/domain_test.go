package domain

import (
	"errors"
	"testing"
)

func TestParseGenre(t *testing.T) {
	tests := []struct {
		raw    string
		want   Genre
		wantOK bool
	}{
		{"drama", GenreDrama, true},
		{"DRAMA", GenreDrama, true},
		{" Science Fiction ", GenreScienceFiction, true},
		{"science-fiction", GenreScienceFiction, true},
		{"science_fiction", GenreScienceFiction, true},
		{"noir", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseGenre(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseGenre(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGenresReturnsCopy(t *testing.T) {
	all := Genres()
	if len(all) != 18 {
		t.Fatalf("len(Genres()) = %d, want 18", len(all))
	}
	all[0] = "mutated"
	if Genres()[0] != GenreAction {
		t.Fatalf("Genres() leaked internal slice")
	}
}

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		name    string
		average float64
		count   int
		want    string
	}{
		{"no reviews", 0, 0, "0"},
		{"whole", 4, 1, "4.00"},
		{"half", 4.5, 2, "4.50"},
		{"two decimals", 4.13, 8, "4.13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAverage(tt.average, tt.count); got != tt.want {
				t.Fatalf("FormatAverage(%v, %d) = %q, want %q", tt.average, tt.count, got, tt.want)
			}
		})
	}
}

func TestMovieFilterMatches(t *testing.T) {
	movie := Movie{
		ID:            "m1",
		Title:         "The Dark Knight",
		Director:      "Christopher Nolan",
		Cast:          []string{"Christian Bale", "Heath Ledger"},
		Genres:        []Genre{GenreAction, GenreCrime},
		ReleaseYear:   2008,
		AverageRating: 4.5,
		ReviewCount:   2,
	}

	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	flt := func(f float64) *float64 { return &f }
	gen := func(g Genre) *Genre { return &g }

	tests := []struct {
		name   string
		filter MovieFilter
		want   bool
	}{
		{"empty filter", MovieFilter{}, true},
		{"director lowercase", MovieFilter{Search: str("nolan")}, true},
		{"title mixed case", MovieFilter{Search: str("dARK")}, true},
		{"cast member", MovieFilter{Search: str("ledger")}, true},
		{"search miss", MovieFilter{Search: str("tarantino")}, false},
		{"empty search ignored", MovieFilter{Search: str("")}, true},
		{"genre hit", MovieFilter{Genre: gen(GenreCrime)}, true},
		{"genre miss", MovieFilter{Genre: gen(GenreDrama)}, false},
		{"year hit", MovieFilter{Year: num(2008)}, true},
		{"year miss", MovieFilter{Year: num(2010)}, false},
		{"min rating inclusive", MovieFilter{MinRating: flt(4.5)}, true},
		{"min rating above", MovieFilter{MinRating: flt(4.51)}, false},
		{"all combined", MovieFilter{Search: str("bale"), Genre: gen(GenreAction), Year: num(2008), MinRating: flt(4)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(movie); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovieUpdateApplyLeavesDerivedFields(t *testing.T) {
	movie := Movie{Title: "Old", AverageRating: 3.5, ReviewCount: 4, Cast: []string{"A"}}
	title := "New"
	featured := true
	got := MovieUpdate{Title: &title, Featured: &featured}.Apply(movie)
	if got.Title != "New" || !got.Featured {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.AverageRating != 3.5 || got.ReviewCount != 4 {
		t.Fatalf("derived fields changed: %+v", got)
	}
}

func TestMovieCloneDoesNotShareSlices(t *testing.T) {
	movie := Movie{Cast: []string{"A"}, Genres: []Genre{GenreDrama}}
	clone := movie.Clone()
	clone.Cast[0] = "B"
	clone.Genres[0] = GenreWar
	if movie.Cast[0] != "A" || movie.Genres[0] != GenreDrama {
		t.Fatalf("clone shares backing arrays with original")
	}
}

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError("rating", "must be between 1 and 5")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("errors.Is(ValidationError, ErrValidation) = false")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("ValidationError should not match ErrNotFound")
	}
	if err.Error() != "validation failed: rating: must be between 1 and 5" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
