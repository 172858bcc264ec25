package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/response"
)

// Recover turns handler panics into 500 responses instead of dropping the
// connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					"error", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Error(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
