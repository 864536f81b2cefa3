package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"biogate/internal/enrollment/models"
	dErrors "biogate/pkg/domain-errors"
	"biogate/pkg/platform/audit"
	"biogate/pkg/platform/httputil"
	"biogate/pkg/platform/middleware/admin"
	request "biogate/pkg/platform/middleware/request"
)

const maxBodyBytes = 64 << 10

// Service defines the interface for enrollment and verification operations.
type Service interface {
	Enroll(ctx context.Context, req models.EnrollRequest) (*models.EnrollResult, error)
	Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResult, error)
	Lookup(ctx context.Context, registrationID string) (*models.IdentityRecord, error)
	Alerts(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler exposes enrollment, verification and the admin read endpoints.
type Handler struct {
	logger     *slog.Logger
	service    Service
	adminToken string
}

// New creates a new enrollment Handler. Admin routes are only mounted when
// adminToken is non-empty.
func New(service Service, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		adminToken: adminToken,
	}
}

// Register registers the enrollment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Post("/enrollments", h.handleEnroll)
		r.Post("/verifications", h.handleVerify)
	})

	if h.adminToken == "" {
		return
	}
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/enrollments/{registrationID}", h.handleGetEnrollment)
		r.Get("/alerts", h.handleListAlerts)
	})
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req models.EnrollRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.Enroll(ctx, req)
	if err != nil {
		h.logFailure(ctx, "enrollment failed", err, "registration_id", req.RegistrationID)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity enrolled",
		"registration_id", res.Record.RegistrationID.String(),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, toEnrollResponse(res))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.Verify(ctx, req)
	if err != nil {
		h.logFailure(ctx, "verification failed", err, "registration_id", req.RegistrationID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(res))
}

func (h *Handler) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	registrationID := chi.URLParam(r, "registrationID")

	rec, err := h.service.Lookup(ctx, registrationID)
	if err != nil {
		h.logFailure(ctx, "enrollment lookup failed", err, "registration_id", registrationID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	events, err := h.service.Alerts(ctx, limit)
	if err != nil {
		h.logFailure(ctx, "alert listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAlertsResponse(events))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", request.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// logFailure logs client mistakes at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err.Error(), "request_id", request.GetRequestID(ctx))
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
