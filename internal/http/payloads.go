package httpserver

import (
	"strings"
	"time"

	"github.com/Clark-Hu/movie-reviews/internal/catalog"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type registerRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilePicture"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	ProfilePicture *string `json:"profilePicture"`
}

type movieCreateRequest struct {
	TMDBID      int64    `json:"tmdbId"`
	Title       string   `json:"title"`
	Synopsis    string   `json:"synopsis"`
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
	Genres      []string `json:"genres"`
	ReleaseYear int      `json:"releaseYear"`
	Duration    int      `json:"duration"`
	PosterURL   string   `json:"posterUrl"`
	BackdropURL string   `json:"backdropUrl"`
	TrailerURL  string   `json:"trailerUrl"`
	Featured    bool     `json:"featured"`
	Trending    bool     `json:"trending"`
}

type movieUpdateRequest struct {
	Title       *string  `json:"title"`
	Synopsis    *string  `json:"synopsis"`
	Director    *string  `json:"director"`
	Cast        []string `json:"cast"`
	Genres      []string `json:"genres"`
	ReleaseYear *int     `json:"releaseYear"`
	Duration    *int     `json:"duration"`
	PosterURL   *string  `json:"posterUrl"`
	BackdropURL *string  `json:"backdropUrl"`
	TrailerURL  *string  `json:"trailerUrl"`
	Featured    *bool    `json:"featured"`
	Trending    *bool    `json:"trending"`
}

type importRequest struct {
	TMDBID int64 `json:"tmdbId"`
}

type reviewCreateRequest struct {
	Rating         int    `json:"rating"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	SpoilerWarning bool   `json:"spoilerWarning"`
}

type reviewUpdateRequest struct {
	Rating         *int    `json:"rating"`
	Title          *string `json:"title"`
	Content        *string `json:"content"`
	SpoilerWarning *bool   `json:"spoilerWarning"`
}

type watchlistRequest struct {
	MovieID string `json:"movieId"`
}

type userResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type userSummaryResponse struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type movieSummaryResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PosterURL string `json:"posterUrl,omitempty"`
}

type movieResponse struct {
	ID            string    `json:"id"`
	TMDBID        int64     `json:"tmdbId,omitempty"`
	Title         string    `json:"title"`
	Synopsis      string    `json:"synopsis"`
	Director      string    `json:"director"`
	Cast          []string  `json:"cast"`
	Genres        []string  `json:"genres"`
	ReleaseYear   int       `json:"releaseYear"`
	Duration      int       `json:"duration"`
	PosterURL     string    `json:"posterUrl,omitempty"`
	BackdropURL   string    `json:"backdropUrl,omitempty"`
	TrailerURL    string    `json:"trailerUrl,omitempty"`
	AverageRating string    `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	Featured      bool      `json:"featured"`
	Trending      bool      `json:"trending"`
	CreatedAt     time.Time `json:"createdAt"`
}

type movieDetailResponse struct {
	movieResponse
	Reviews []reviewResponse `json:"reviews"`
}

type moviePageResponse struct {
	Movies []movieResponse `json:"movies"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type reviewResponse struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	MovieID        string                `json:"movieId"`
	Rating         int                   `json:"rating"`
	Title          string                `json:"title"`
	Content        string                `json:"content"`
	SpoilerWarning bool                  `json:"spoilerWarning"`
	Likes          int                   `json:"likes"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	User           *userSummaryResponse  `json:"user,omitempty"`
	Movie          *movieSummaryResponse `json:"movie,omitempty"`
}

type likeResponse struct {
	Success bool `json:"success"`
	Likes   int  `json:"likes"`
}

type watchlistEntryResponse struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	MovieID string    `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}

type watchlistItemResponse struct {
	watchlistEntryResponse
	Movie movieResponse `json:"movie"`
}

type membershipResponse struct {
	InWatchlist bool `json:"inWatchlist"`
}

func (req movieCreateRequest) toDomain() domain.MovieCreate {
	return domain.MovieCreate{
		ExternalID:  req.TMDBID,
		Title:       strings.TrimSpace(req.Title),
		Synopsis:    strings.TrimSpace(req.Synopsis),
		Director:    strings.TrimSpace(req.Director),
		Cast:        trimAll(req.Cast),
		Genres:      parseGenres(req.Genres),
		ReleaseYear: req.ReleaseYear,
		Duration:    req.Duration,
		PosterURL:   strings.TrimSpace(req.PosterURL),
		BackdropURL: strings.TrimSpace(req.BackdropURL),
		TrailerURL:  strings.TrimSpace(req.TrailerURL),
		Featured:    req.Featured,
		Trending:    req.Trending,
	}
}

func (req movieUpdateRequest) toDomain() domain.MovieUpdate {
	update := domain.MovieUpdate{
		Title:       trimPtr(req.Title),
		Synopsis:    trimPtr(req.Synopsis),
		Director:    trimPtr(req.Director),
		ReleaseYear: req.ReleaseYear,
		Duration:    req.Duration,
		PosterURL:   trimPtr(req.PosterURL),
		BackdropURL: trimPtr(req.BackdropURL),
		TrailerURL:  trimPtr(req.TrailerURL),
		Featured:    req.Featured,
		Trending:    req.Trending,
	}
	if req.Cast != nil {
		update.Cast = trimAll(req.Cast)
	}
	if req.Genres != nil {
		update.Genres = parseGenres(req.Genres)
	}
	return update
}

// parseGenres normalises genre names. Unknown names pass through unchanged so
// validation can report them.
func parseGenres(raw []string) []domain.Genre {
	out := make([]domain.Genre, 0, len(raw))
	for _, name := range raw {
		if g, ok := domain.ParseGenre(name); ok {
			out = append(out, g)
			continue
		}
		out = append(out, domain.Genre(name))
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func trimPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	return &val
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

func toMovieResponse(m domain.Movie) movieResponse {
	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, string(g))
	}
	cast := m.Cast
	if cast == nil {
		cast = []string{}
	}
	return movieResponse{
		ID:            m.ID,
		TMDBID:        m.ExternalID,
		Title:         m.Title,
		Synopsis:      m.Synopsis,
		Director:      m.Director,
		Cast:          cast,
		Genres:        genres,
		ReleaseYear:   m.ReleaseYear,
		Duration:      m.Duration,
		PosterURL:     m.PosterURL,
		BackdropURL:   m.BackdropURL,
		TrailerURL:    m.TrailerURL,
		AverageRating: domain.FormatAverage(m.AverageRating, m.ReviewCount),
		ReviewCount:   m.ReviewCount,
		Featured:      m.Featured,
		Trending:      m.Trending,
		CreatedAt:     m.CreatedAt,
	}
}

func toMovieResponses(movies []domain.Movie) []movieResponse {
	out := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResponse(m))
	}
	return out
}

func toMoviePageResponse(page catalog.MoviePage) moviePageResponse {
	return moviePageResponse{
		Movies: toMovieResponses(page.Movies),
		Total:  page.Total,
		Page:   page.Page,
		Limit:  page.Limit,
	}
}

func toReviewResponse(r domain.Review) reviewResponse {
	return reviewResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		MovieID:        r.MovieID,
		Rating:         r.Rating,
		Title:          r.Title,
		Content:        r.Content,
		SpoilerWarning: r.SpoilerWarning,
		Likes:          r.Likes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toResolvedReviewResponses(reviews []domain.ReviewWithUser) []reviewResponse {
	out := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp := toReviewResponse(r.Review)
		resp.User = &userSummaryResponse{ID: r.User.ID, Username: r.User.Username, ProfilePicture: r.User.ProfilePicture}
		resp.Movie = &movieSummaryResponse{ID: r.Movie.ID, Title: r.Movie.Title, PosterURL: r.Movie.PosterURL}
		out = append(out, resp)
	}
	return out
}

func toWatchlistEntryResponse(e domain.WatchlistEntry) watchlistEntryResponse {
	return watchlistEntryResponse{ID: e.ID, UserID: e.UserID, MovieID: e.MovieID, AddedAt: e.AddedAt}
}

func toWatchlistItemResponses(items []domain.WatchlistItem) []watchlistItemResponse {
	out := make([]watchlistItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, watchlistItemResponse{
			watchlistEntryResponse: toWatchlistEntryResponse(item.WatchlistEntry),
			Movie:                  toMovieResponse(item.Movie),
		})
	}
	return out
}
