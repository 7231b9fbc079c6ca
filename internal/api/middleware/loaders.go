package middleware

import (
	"net/http"

	"github.com/wrenchwise/backend/internal/application/loaders"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

// Loaders attaches a fresh set of batch loaders to every request
func Loaders(users repositories.UserRepository, mechanics repositories.MechanicRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(users, mechanics))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
