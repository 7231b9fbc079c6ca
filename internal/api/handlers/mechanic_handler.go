package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/geo"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/domain/trust"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

// MechanicFinder is the discovery API used by MechanicHandler
type MechanicFinder interface {
	FetchMechanics(ctx context.Context, q services.MechanicQuery) (*services.MechanicPage, error)
	GetMechanic(ctx context.Context, id string) (*services.MechanicResult, error)
	SearchMechanics(ctx context.Context, text string, category *entities.ServiceCategory, page repositories.Page) (*services.MechanicPage, error)
}

// MechanicHandler handles mechanic discovery requests
type MechanicHandler struct {
	mechanics MechanicFinder
}

// NewMechanicHandler creates a new mechanic handler
func NewMechanicHandler(mechanics MechanicFinder) *MechanicHandler {
	return &MechanicHandler{mechanics: mechanics}
}

// ListMechanics handles GET /api/mechanics?lat&lon&radius_km&category&q&limit&offset
func (h *MechanicHandler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := services.MechanicQuery{
		Text: query.Get("q"),
		Page: pageFromQuery(r),
	}

	category, err := categoryFromQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	q.Category = category

	latRaw, lonRaw := query.Get("lat"), query.Get("lon")
	if latRaw != "" || lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			respondWithError(w, http.StatusBadRequest, "lat and lon must both be numbers")
			return
		}
		q.Location = &geo.Point{Latitude: lat, Longitude: lon}
	}

	if raw := query.Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			respondWithError(w, http.StatusBadRequest, "radius_km must be a positive number")
			return
		}
		q.RadiusKm = radius
	}

	page, err := h.mechanics.FetchMechanics(r.Context(), q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// SearchMechanics handles GET /api/mechanics/search?q&category&limit&offset
func (h *MechanicHandler) SearchMechanics(w http.ResponseWriter, r *http.Request) {
	category, err := categoryFromQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.mechanics.SearchMechanics(r.Context(), r.URL.Query().Get("q"), category, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// GetMechanic handles GET /api/mechanics/{id}
func (h *MechanicHandler) GetMechanic(w http.ResponseWriter, r *http.Request) {
	mechanicID := r.PathValue("id")
	if mechanicID == "" {
		respondWithError(w, http.StatusBadRequest, "mechanic ID is required")
		return
	}

	mechanic, err := h.mechanics.GetMechanic(r.Context(), mechanicID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, mechanic)
}

// TrustScore handles GET /api/trust-score?score=. It describes any raw score the
// way mechanic profiles present it.
func (h *MechanicHandler) TrustScore(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "score must be a number")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"trust":     trust.Describe(score),
		"breakdown": trust.Breakdown(score),
	})
}

func categoryFromQuery(r *http.Request) (*entities.ServiceCategory, error) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return nil, nil
	}
	c, err := entities.ParseServiceCategory(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &c, nil
}
