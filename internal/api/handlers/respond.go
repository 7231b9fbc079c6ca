package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every error reply
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message, Code: codeFor(statusCode)})
}

// respondWithAppError maps an AppError type to its HTTP status. Internal details are
// logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: string(apperrors.ErrorTypeInternal)})
		return
	}

	status := statusFor(appErr.Type)
	message := appErr.Message
	logger := observability.LoggerFromContext(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		if appErr.Type == apperrors.ErrorTypeInternal {
			message = "internal server error"
		}
	case apperrors.IsAuthError(err):
		logger.Warn().Str("code", string(appErr.Type)).Str("path", r.URL.Path).Msg("authentication rejected")
	case apperrors.IsDataError(err):
		logger.Debug().Str("code", string(appErr.Type)).Str("path", r.URL.Path).Msg("data request rejected")
	}
	respondWithJSON(w, status, errorResponse{Error: message, Code: string(appErr.Type)})
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized, apperrors.ErrorTypeInvalidCredentials:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return string(apperrors.ErrorTypeNotFound)
	case http.StatusBadRequest:
		return string(apperrors.ErrorTypeValidation)
	case http.StatusUnauthorized:
		return string(apperrors.ErrorTypeUnauthorized)
	case http.StatusForbidden:
		return string(apperrors.ErrorTypeForbidden)
	case http.StatusConflict:
		return string(apperrors.ErrorTypeConflict)
	default:
		return string(apperrors.ErrorTypeInternal)
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields and trailing data
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	if dec.More() {
		return apperrors.NewValidationError("request body must contain a single JSON object")
	}
	return nil
}

// pageFromQuery reads limit and offset. Missing or malformed values stay zero and
// are clamped by the service.
func pageFromQuery(r *http.Request) repositories.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return repositories.Page{Limit: limit, Offset: offset}
}
