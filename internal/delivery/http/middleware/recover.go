package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	h "hirelens/internal/delivery/http/helpers"
)

// Recover turns a panicking handler into a 500 envelope and logs the stack.
// http.ErrAbortHandler is re-raised so the server can abort the response.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(r.Context(), "panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			h.WriteInternalError(w)
		}()
		next.ServeHTTP(w, r)
	})
}
