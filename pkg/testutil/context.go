package testutil

import (
	"net/http"
	"time"

	"biogate/pkg/platform/middleware/admin"
	"biogate/pkg/requestcontext"
)

// WithAdminToken sets the admin credential header on req.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set(admin.HeaderAdminToken, token)
	return req
}

// WithRequestTime pins the request-scoped clock, as the requesttime middleware would.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
