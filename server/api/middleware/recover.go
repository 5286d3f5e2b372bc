package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns handler panics into 500 responses. The panic is logged with
// the stack and any fields handlers set with SetLogField.
func Recover(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, fields := withLogFields(r.Context())
			r = r.WithContext(ctx)

			defer func() {
				if rec := recover(); rec != nil {
					requestID := RequestIDFrom(r.Context())
					if requestID == "" {
						requestID = w.Header().Get(HeaderRequestID)
					}
					fields.appendTo(log.Error()).
						Interface("error", rec).
						Bytes("stack", debug.Stack()).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("request_id", requestID).
						Msg("http_panic")
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
