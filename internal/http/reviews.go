package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

func (s *Server) handleMovieReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.catalog.ReviewsForMovie(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondServiceError(w, err, "fetch reviews")
		return
	}
	s.respondJSON(w, http.StatusOK, toResolvedReviewResponses(reviews))
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actorID(w, r)
	if !ok {
		return
	}

	var req reviewCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	review, err := s.catalog.CreateReview(r.Context(), domain.ReviewCreate{
		UserID:         userID,
		MovieID:        chi.URLParam(r, "movieID"),
		Rating:         req.Rating,
		Title:          strings.TrimSpace(req.Title),
		Content:        strings.TrimSpace(req.Content),
		SpoilerWarning: req.SpoilerWarning,
	})
	if err != nil {
		s.respondServiceError(w, err, "create review")
		return
	}
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actorID(w, r)
	if !ok {
		return
	}

	var req reviewUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	review, err := s.catalog.UpdateReview(r.Context(), chi.URLParam(r, "reviewID"), userID, domain.ReviewUpdate{
		Rating:         req.Rating,
		Title:          trimPtr(req.Title),
		Content:        trimPtr(req.Content),
		SpoilerWarning: req.SpoilerWarning,
	})
	if err != nil {
		s.respondServiceError(w, err, "update review")
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.actorID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteReview(r.Context(), chi.URLParam(r, "reviewID"), userID); err != nil {
		s.respondServiceError(w, err, "delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLikeReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.catalog.LikeReview(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		s.respondServiceError(w, err, "like review")
		return
	}
	s.respondJSON(w, http.StatusOK, likeResponse{Success: true, Likes: review.Likes})
}
