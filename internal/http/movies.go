package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-reviews/internal/catalog"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	query, err := buildMovieQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := s.catalog.QueryMovies(r.Context(), query)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			s.respondJSON(w, http.StatusBadRequest, errorResponse{
				Code:    "BAD_REQUEST",
				Message: "Invalid query parameters",
				Details: validationErr.Fields,
			})
			return
		}
		s.respondServiceError(w, err, "list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMoviePageResponse(page))
}

// buildMovieQuery parses the catalog query string. Only malformed numbers are
// rejected here; range and enumeration checks belong to the query engine.
func buildMovieQuery(values url.Values) (catalog.MovieQuery, error) {
	var q catalog.MovieQuery

	q.Search = strings.TrimSpace(values.Get("search"))
	q.Genre = strings.TrimSpace(values.Get("genre"))
	q.Sort = strings.TrimSpace(values.Get("sort"))

	if val := strings.TrimSpace(values.Get("year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return q, fmt.Errorf("invalid year value")
		}
		q.Year = &year
	}
	if val := strings.TrimSpace(values.Get("minRating")); val != "" {
		rating, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return q, fmt.Errorf("invalid minRating value")
		}
		q.MinRating = &rating
	}
	if val := strings.TrimSpace(values.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil {
			return q, fmt.Errorf("invalid page value")
		}
		q.Page = page
	}
	if val := strings.TrimSpace(values.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return q, fmt.Errorf("invalid limit value")
		}
		q.Limit = limit
	}
	return q, nil
}

func (s *Server) handleFeaturedMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.catalog.FeaturedMovies(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "fetch featured movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponses(movies))
}

func (s *Server) handleTrendingMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.catalog.TrendingMovies(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "fetch trending movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponses(movies))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.MovieWithReviews(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondServiceError(w, err, "fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, movieDetailResponse{
		movieResponse: toMovieResponse(detail.Movie),
		Reviews:       toResolvedReviewResponses(detail.Reviews),
	})
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.catalog.CreateMovie(r.Context(), req.toDomain())
	if err != nil {
		s.respondServiceError(w, err, "create movie")
		return
	}
	w.Header().Set("Location", "/api/movies/"+url.PathEscape(movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleImportMovie(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req importRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.catalog.ImportMovie(r.Context(), req.TMDBID)
	if err != nil {
		s.respondServiceError(w, err, "import movie")
		return
	}
	w.Header().Set("Location", "/api/movies/"+url.PathEscape(movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req movieUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.catalog.UpdateMovie(r.Context(), chi.URLParam(r, "movieID"), req.toDomain())
	if err != nil {
		s.respondServiceError(w, err, "update movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if err := s.catalog.DeleteMovie(r.Context(), chi.URLParam(r, "movieID")); err != nil {
		s.respondServiceError(w, err, "delete movie")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
