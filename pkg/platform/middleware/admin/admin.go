package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "biogate/pkg/domain-errors"
	"biogate/pkg/platform/httputil"
	request "biogate/pkg/platform/middleware/request"
)

// HeaderAdminToken carries the static admin credential.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards admin routes. An empty expectedToken rejects every request.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			// Use constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
