package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrenchwise/backend/internal/api/handlers"
	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/api/routes"
	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(ctx context.Context, token string) (*providers.TokenClaims, error) {
	if token == "good" {
		return &providers.TokenClaims{UserID: "u1"}, nil
	}
	return nil, apperrors.NewUnauthorizedError("invalid token")
}

type stubAuth struct{}

func (stubAuth) SignUp(ctx context.Context, req services.SignUpRequest) (entities.Session, error) {
	return entities.NewSession(), nil
}

func (stubAuth) SignIn(ctx context.Context, req services.SignInRequest) (entities.Session, error) {
	return entities.Session{State: entities.SessionAuthenticated, Token: "good"}, nil
}

func (stubAuth) SignOut(ctx context.Context, token string) (entities.Session, error) {
	return entities.NewSession(), nil
}

func (stubAuth) GetCurrentUser(ctx context.Context, token string) (*entities.User, error) {
	return nil, nil
}

type stubBookings struct{}

func (stubBookings) CreateBookingRequest(ctx context.Context, userID string, b *entities.BookingRequest) (*entities.BookingRequest, error) {
	return b, nil
}

func (stubBookings) UpdateBookingStatus(ctx context.Context, userID, bookingID string, next entities.BookingStatus) (*entities.BookingRequest, error) {
	return &entities.BookingRequest{ID: bookingID, Status: next}, nil
}

func (stubBookings) FetchBookings(ctx context.Context, userID string, page repositories.Page) ([]*entities.BookingRequest, error) {
	return []*entities.BookingRequest{{ID: "b1", UserID: userID}}, nil
}

func newTestRouter(limiter *middleware.RateLimiter) http.Handler {
	router := routes.NewRouter(routes.Handlers{
		Auth:      handlers.NewAuthHandler(stubAuth{}),
		Mechanic:  handlers.NewMechanicHandler(nil),
		Review:    handlers.NewReviewHandler(nil),
		Feed:      handlers.NewFeedHandler(nil),
		Messaging: handlers.NewMessagingHandler(nil),
		Booking:   handlers.NewBookingHandler(stubBookings{}),
	}, routes.Options{
		Authenticator:  stubAuthenticator{},
		SignInLimiter:  limiter,
		AllowedOrigins: []string{"https://app.wrenchwise.example"},
	})
	return router.SetupRoutes()
}

func TestRouter_Health(t *testing.T) {
	handler := newTestRouter(nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	handler := newTestRouter(nil)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", status: http.StatusUnauthorized},
		{name: "bad token", token: "forged", status: http.StatusUnauthorized},
		{name: "good token", token: "good", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_PathParameters(t *testing.T) {
	handler := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/b42/status", nil)
	req.Body = http.NoBody
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// empty body is rejected before the service sees it
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	handler := newTestRouter(nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/bookings", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_SignInIsRateLimited(t *testing.T) {
	handler := newTestRouter(middleware.NewRateLimiter(1, 2, nil))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Body = http.NoBody
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// the first two reach the handler and fail on the empty body
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRouter_CORSPreflight(t *testing.T) {
	handler := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/mechanics", nil)
	req.Header.Set("Origin", "https://app.wrenchwise.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.wrenchwise.example", w.Header().Get("Access-Control-Allow-Origin"))
}
