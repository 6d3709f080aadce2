package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mao65123/logmee/pkg/user"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {

	// Propagate X-User-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if userIdHeader := req.Header.Get("X-User-Id"); userIdHeader != "" {
				ctx = user.WithUserId(ctx, userIdHeader)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
