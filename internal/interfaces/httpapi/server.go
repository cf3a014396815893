package httpapi

import (
	"net/http"

	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// RouterOptions carries the optional collaborators of the router. Nil values
// disable the matching routes or hooks.
type RouterOptions struct {
	Auth               AdminAuthorizer
	Hub                *LeaderboardHub
	Recorder           RequestRecorder
	MetricsHandler     http.Handler
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
}

func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts)
	registerPublicRoutes(mux, handler, opts.Hub)
	registerAdminRoutes(mux, handler, opts.Auth)

	return RequestTracing(RequestLogging(logger, opts.Recorder, CORS(opts.CORSAllowedOrigins, recoverPanic(logger, captureRoute(mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
