package tmdb

import (
	"strconv"
	"strings"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

const (
	maxCast         = 10
	unknownDirector = "Unknown"
	noSynopsis      = "No synopsis available."
	youtubeWatchURL = "https://www.youtube.com/watch?v="
)

type detailsPayload struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Overview     string         `json:"overview"`
	PosterPath   *string        `json:"poster_path"`
	BackdropPath *string        `json:"backdrop_path"`
	ReleaseDate  string         `json:"release_date"`
	Runtime      *int           `json:"runtime"`
	Genres       []genreEntry   `json:"genres"`
	Credits      creditsPayload `json:"credits"`
	Videos       videosPayload  `json:"videos"`
}

type genreEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type creditsPayload struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type videosPayload struct {
	Results []struct {
		Key  string `json:"key"`
		Type string `json:"type"`
		Site string `json:"site"`
	} `json:"results"`
}

func convertDetails(p detailsPayload, imageBaseURL string) domain.MovieCreate {
	movie := domain.MovieCreate{
		ExternalID:  p.ID,
		Title:       strings.TrimSpace(p.Title),
		Synopsis:    strings.TrimSpace(p.Overview),
		Director:    unknownDirector,
		Cast:        make([]string, 0, maxCast),
		Genres:      make([]domain.Genre, 0, len(p.Genres)),
		ReleaseYear: releaseYear(p.ReleaseDate),
		PosterURL:   imageURL(imageBaseURL, "w300", p.PosterPath),
		BackdropURL: imageURL(imageBaseURL, "w1280", p.BackdropPath),
	}
	if movie.Synopsis == "" {
		movie.Synopsis = noSynopsis
	}
	if p.Runtime != nil && *p.Runtime > 0 {
		movie.Duration = *p.Runtime
	}

	for _, member := range p.Credits.Crew {
		if member.Job == "Director" && strings.TrimSpace(member.Name) != "" {
			movie.Director = strings.TrimSpace(member.Name)
			break
		}
	}
	for _, member := range p.Credits.Cast {
		if len(movie.Cast) == maxCast {
			break
		}
		if name := strings.TrimSpace(member.Name); name != "" {
			movie.Cast = append(movie.Cast, name)
		}
	}

	seen := make(map[domain.Genre]bool, len(p.Genres))
	for _, g := range p.Genres {
		genre, ok := domain.ParseGenre(g.Name)
		if !ok || seen[genre] {
			continue
		}
		seen[genre] = true
		movie.Genres = append(movie.Genres, genre)
	}

	for _, v := range p.Videos.Results {
		if v.Type == "Trailer" && strings.EqualFold(v.Site, "YouTube") && v.Key != "" {
			movie.TrailerURL = youtubeWatchURL + v.Key
			break
		}
	}
	return movie
}

// releaseYear extracts the year of a YYYY-MM-DD date, or 0 when absent.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func imageURL(base, size string, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return base + "/" + size + "/" + strings.TrimLeft(*path, "/")
}
