package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

// RouteResolver reports the registered pattern a request will be routed to.
// *http.ServeMux implements it.
type RouteResolver interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// routeOf returns the matched pattern, falling back to the raw path
func routeOf(routes RouteResolver, r *http.Request) string {
	if routes != nil {
		if _, pattern := routes.Handler(r); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP requests.
// Spans and metrics are labelled with the route pattern to keep cardinality low.
func ObservabilityMiddleware(metrics *observability.Metrics, routes RouteResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeOf(routes, r)

			ctx, span := observability.StartSpan(r.Context(), route)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rw, r.WithContext(ctx))

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
			observability.SetSpanAttributes(span, attribute.Int("http.status_code", rw.statusCode))
		})
	}
}
