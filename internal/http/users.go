package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Password == "" {
		s.respondServiceError(w, domain.NewValidationError("password", "is required"), "register user")
		return
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		s.respondServiceError(w, err, "register user")
		return
	}

	user, err := s.catalog.RegisterUser(r.Context(), domain.UserCreate{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.TrimSpace(req.Email),
		PasswordHash:   hash,
		ProfilePicture: strings.TrimSpace(req.ProfilePicture),
	})
	if err != nil {
		s.respondServiceError(w, err, "register user")
		return
	}
	s.respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "username and password are required")
		return
	}

	user, err := s.catalog.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}
		s.respondServiceError(w, err, "log in")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password", "must be at most 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.catalog.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondServiceError(w, err, "fetch user")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireSelf(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	update := domain.UserUpdate{
		Username:       trimPtr(req.Username),
		Email:          trimPtr(req.Email),
		ProfilePicture: trimPtr(req.ProfilePicture),
	}
	if req.Password != nil {
		if *req.Password == "" {
			s.respondServiceError(w, domain.NewValidationError("password", "must not be empty"), "update profile")
			return
		}
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			s.respondServiceError(w, err, "update profile")
			return
		}
		update.PasswordHash = &hash
	}

	user, err := s.catalog.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		s.respondServiceError(w, err, "update profile")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUserReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.catalog.ReviewsForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondServiceError(w, err, "fetch user reviews")
		return
	}
	s.respondJSON(w, http.StatusOK, toResolvedReviewResponses(reviews))
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.WatchlistForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondServiceError(w, err, "fetch watchlist")
		return
	}
	s.respondJSON(w, http.StatusOK, toWatchlistItemResponses(items))
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireSelf(w, r)
	if !ok {
		return
	}

	var req watchlistRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	movieID := strings.TrimSpace(req.MovieID)
	if movieID == "" {
		s.respondServiceError(w, domain.NewValidationError("movieId", "is required"), "add to watchlist")
		return
	}

	entry, err := s.catalog.AddToWatchlist(r.Context(), userID, movieID)
	if err != nil {
		s.respondServiceError(w, err, "add to watchlist")
		return
	}
	s.respondJSON(w, http.StatusCreated, toWatchlistEntryResponse(entry))
}

func (s *Server) handleWatchlistMembership(w http.ResponseWriter, r *http.Request) {
	in, err := s.catalog.IsInWatchlist(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondServiceError(w, err, "check watchlist")
		return
	}
	s.respondJSON(w, http.StatusOK, membershipResponse{InWatchlist: in})
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireSelf(w, r)
	if !ok {
		return
	}
	if err := s.catalog.RemoveFromWatchlist(r.Context(), userID, chi.URLParam(r, "movieID")); err != nil {
		s.respondServiceError(w, err, "remove from watchlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireSelf admits only callers whose X-User-Id matches the {userID} path segment.
func (s *Server) requireSelf(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, ok := s.actorID(w, r)
	if !ok {
		return "", false
	}
	userID := chi.URLParam(r, "userID")
	if actor != userID {
		s.respondServiceError(w, domain.ErrForbidden, "authorise user")
		return "", false
	}
	return userID, true
}
