package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

type contextKey string

const (
	claimsKey contextKey = "auth_claims"
	tokenKey  contextKey = "auth_token"
)

// Authenticator resolves a bearer token to its claims
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*providers.TokenClaims, error)
}

// Auth attaches the bearer token and, when it verifies, its claims to the request
// context. Requests without a valid token continue anonymously; RequireAuth rejects them.
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			claims, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				observability.LoggerFromContext(ctx).Debug().Err(err).Msg("bearer token rejected")
			} else {
				ctx = context.WithValue(ctx, claimsKey, claims)
				ctx = observability.ContextWithLogField(ctx, "user_id", claims.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth responds 401 unless Auth attached verified claims
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHORIZED")
			return
		}
		next(w, r)
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>". Browsers
// cannot set headers on EventSource or WebSocket requests, so the access_token
// query parameter is accepted as well.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

// Claims returns the verified claims of the request, or nil
func Claims(ctx context.Context) *providers.TokenClaims {
	claims, _ := ctx.Value(claimsKey).(*providers.TokenClaims)
	return claims
}

// UserID returns the authenticated user's id, or ""
func UserID(ctx context.Context) string {
	if c := Claims(ctx); c != nil {
		return c.UserID
	}
	return ""
}

// Token returns the raw bearer token of the request, verified or not
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// WithClaims attaches claims to ctx
func WithClaims(ctx context.Context, claims *providers.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
