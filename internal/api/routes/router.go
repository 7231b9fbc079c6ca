package routes

import (
	"net/http"

	"github.com/wrenchwise/backend/internal/api/handlers"
	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler      *handlers.AuthHandler
	mechanicHandler  *handlers.MechanicHandler
	reviewHandler    *handlers.ReviewHandler
	feedHandler      *handlers.FeedHandler
	messagingHandler *handlers.MessagingHandler
	bookingHandler   *handlers.BookingHandler
	streamHandler    *handlers.StreamHandler

	authenticator   middleware.Authenticator
	users           repositories.UserRepository
	mechanics       repositories.MechanicRepository
	signInLimiter   *middleware.RateLimiter
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// Handlers groups the endpoint handlers served by the router
type Handlers struct {
	Auth      *handlers.AuthHandler
	Mechanic  *handlers.MechanicHandler
	Review    *handlers.ReviewHandler
	Feed      *handlers.FeedHandler
	Messaging *handlers.MessagingHandler
	Booking   *handlers.BookingHandler
	Stream    *handlers.StreamHandler
}

// Options carries the cross-cutting dependencies of the middleware chain.
// CacheMiddleware and SignInLimiter may be nil.
type Options struct {
	Authenticator   middleware.Authenticator
	Users           repositories.UserRepository
	Mechanics       repositories.MechanicRepository
	SignInLimiter   *middleware.RateLimiter
	CacheMiddleware *middleware.CacheMiddleware
	Metrics         *observability.Metrics
	AllowedOrigins  []string
}

// NewRouter creates a new router
func NewRouter(h Handlers, opts Options) *Router {
	return &Router{
		mux: http.NewServeMux(),

		authHandler:      h.Auth,
		mechanicHandler:  h.Mechanic,
		reviewHandler:    h.Review,
		feedHandler:      h.Feed,
		messagingHandler: h.Messaging,
		bookingHandler:   h.Booking,
		streamHandler:    h.Stream,

		authenticator:   opts.Authenticator,
		users:           opts.Users,
		mechanics:       opts.Mechanics,
		signInLimiter:   opts.SignInLimiter,
		cacheMiddleware: opts.CacheMiddleware,
		metrics:         opts.Metrics,
		allowedOrigins:  opts.AllowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	auth := middleware.RequireAuth
	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if r.signInLimiter == nil {
			return h
		}
		return r.signInLimiter.Limit(h)
	}

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Auth
	r.mux.HandleFunc("POST /api/auth/signup", limit(r.authHandler.SignUp))
	r.mux.HandleFunc("POST /api/auth/signin", limit(r.authHandler.SignIn))
	r.mux.HandleFunc("POST /api/auth/signout", r.authHandler.SignOut)
	r.mux.HandleFunc("GET /api/auth/me", r.authHandler.Me)

	// Discovery
	r.mux.HandleFunc("GET /api/mechanics", r.mechanicHandler.ListMechanics)
	r.mux.HandleFunc("GET /api/mechanics/search", r.mechanicHandler.SearchMechanics)
	r.mux.HandleFunc("GET /api/mechanics/{id}", r.mechanicHandler.GetMechanic)
	r.mux.HandleFunc("GET /api/trust-score", r.mechanicHandler.TrustScore)

	// Reviews
	r.mux.HandleFunc("GET /api/mechanics/{id}/reviews", r.reviewHandler.ListReviews)
	r.mux.HandleFunc("POST /api/mechanics/{id}/reviews", auth(r.reviewHandler.CreateReview))

	// Community feed
	r.mux.HandleFunc("GET /api/feed", r.feedHandler.GetFeed)
	r.mux.HandleFunc("POST /api/posts", auth(r.feedHandler.CreatePost))
	r.mux.HandleFunc("POST /api/posts/{id}/comments", auth(r.feedHandler.AddComment))
	r.mux.HandleFunc("POST /api/posts/{id}/like", auth(r.feedHandler.LikePost))

	// Messaging
	r.mux.HandleFunc("GET /api/conversations", auth(r.messagingHandler.ListConversations))
	r.mux.HandleFunc("GET /api/conversations/{id}/messages", auth(r.messagingHandler.ListMessages))
	r.mux.HandleFunc("POST /api/messages", auth(r.messagingHandler.SendMessage))
	r.mux.HandleFunc("POST /api/conversations/{id}/read", auth(r.messagingHandler.MarkRead))

	// Bookings
	r.mux.HandleFunc("POST /api/bookings", auth(r.bookingHandler.CreateBooking))
	r.mux.HandleFunc("GET /api/bookings", auth(r.bookingHandler.ListBookings))
	r.mux.HandleFunc("PATCH /api/bookings/{id}/status", auth(r.bookingHandler.UpdateStatus))

	// Live updates
	if r.streamHandler != nil {
		r.mux.HandleFunc("GET /api/conversations/{id}/stream", auth(r.streamHandler.StreamConversation))
		r.mux.HandleFunc("GET /api/conversations/{id}/ws", auth(r.streamHandler.ConversationSocket))
		r.mux.HandleFunc("GET /api/bookings/stream", auth(r.streamHandler.StreamBookings))
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.Loaders(r.users, r.mechanics)(handler)
	handler = middleware.Auth(r.authenticator)(handler)
	handler = middleware.LoggingMiddleware(r.mux)(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics, r.mux)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
