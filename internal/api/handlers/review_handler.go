package handlers

import (
	"context"
	"net/http"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

// ReviewManager is the review API used by ReviewHandler
type ReviewManager interface {
	FetchReviews(ctx context.Context, mechanicID string, page repositories.Page) ([]*entities.Review, error)
	CreateReview(ctx context.Context, userID string, review *entities.Review) (*entities.Review, error)
}

// ReviewHandler handles mechanic review requests
type ReviewHandler struct {
	reviews ReviewManager
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews ReviewManager) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListReviews handles GET /api/mechanics/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	mechanicID := r.PathValue("id")
	if mechanicID == "" {
		respondWithError(w, http.StatusBadRequest, "mechanic ID is required")
		return
	}

	reviews, err := h.reviews.FetchReviews(r.Context(), mechanicID, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// CreateReview handles POST /api/mechanics/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var review entities.Review
	if err := decodeJSON(r, &review); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	review.MechanicID = r.PathValue("id")

	created, err := h.reviews.CreateReview(r.Context(), middleware.UserID(r.Context()), &review)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}
