package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"biogate/internal/enrollment/biometric"
	"biogate/internal/enrollment/metrics"
	"biogate/internal/enrollment/models"
	id "biogate/pkg/domain"
	dErrors "biogate/pkg/domain-errors"
	"biogate/pkg/platform/audit"
	"biogate/pkg/platform/sentinel"
	"biogate/pkg/requestcontext"
)

const (
	DefaultCaptureTimeout = 5 * time.Second

	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

// ErrAlreadyRegistered is returned by Enroll when the registration id is taken.
var ErrAlreadyRegistered = dErrors.New(dErrors.CodeConflict,
	models.RegistrationRejected{Reason: models.ReasonAlreadyRegistered}.Message())

type RecordStore interface {
	Contains(regID id.RegistrationID) bool
	Get(regID id.RegistrationID) (models.IdentityRecord, error)
	Insert(ctx context.Context, rec models.IdentityRecord) error
	MarkVerified(ctx context.Context, regID id.RegistrationID) (models.IdentityRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AlertFeed reads back admin alerts that were published.
type AlertFeed interface {
	ListRecent(ctx context.Context, action string, limit int) ([]audit.Event, error)
}

// Service runs enrollment and fingerprint re-verification against one record store.
//
// An identity verifies successfully at most once. Every other attempt (unknown
// id, sample mismatch, replay of a verified identity) is denied to the user and
// raised to administrators as a security audit event.
type Service struct {
	records        RecordStore
	scanner        biometric.Scanner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	alerts         AlertFeed
	metrics        *metrics.Metrics
	captureTimeout time.Duration
	newAlertID     func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithAlertFeed(feed AlertFeed) Option {
	return func(s *Service) {
		s.alerts = feed
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCaptureTimeout bounds each fingerprint capture. Zero disables the limit.
func WithCaptureTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.captureTimeout = d
	}
}

// New constructs a Service. A nil scanner falls back to biometric.PlaceholderScanner.
func New(records RecordStore, scanner biometric.Scanner, opts ...Option) *Service {
	if scanner == nil {
		scanner = biometric.PlaceholderScanner{}
	}
	s := &Service{
		records:        records,
		scanner:        scanner,
		captureTimeout: DefaultCaptureTimeout,
		newAlertID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll registers a new identity. A taken id returns ErrAlreadyRegistered without
// capturing a sample or touching the stored record.
func (s *Service) Enroll(ctx context.Context, req models.EnrollRequest) (*models.EnrollResult, error) {
	req.Normalize()
	regID, err := parseRegistrationID(req.RegistrationID)
	if err != nil {
		s.incrementEnrollment(metrics.ResultInvalid)
		return nil, err
	}

	if s.records.Contains(regID) {
		return nil, s.rejectDuplicate(ctx, regID)
	}

	if req.PhotoReference == "" {
		s.incrementEnrollment(metrics.ResultCaptureFailed)
		return nil, dErrors.New(dErrors.CodeCaptureFailed, "photo capture is required")
	}

	sample, err := biometric.Capture(ctx, s.scanner, regID, s.captureTimeout)
	if err != nil {
		s.logWarn(ctx, "fingerprint capture failed", "registration_id", regID.String(), "error", err)
		s.incrementEnrollment(metrics.ResultCaptureFailed)
		return nil, dErrors.Wrap(err, dErrors.CodeCaptureFailed, "fingerprint capture failed")
	}

	rec, err := models.NewIdentityRecord(regID, req.Name, req.Phone, req.PhotoReference, sample, requestcontext.Now(ctx))
	if err != nil {
		s.incrementEnrollment(metrics.ResultInvalid)
		// Convert invariant violations to validation errors for API response
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.records.Insert(ctx, *rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, s.rejectDuplicate(ctx, regID)
		}
		s.snapshotFailed(ctx, regID, err)
		s.incrementEnrollment(metrics.ResultError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist identity record")
	}

	event := models.RegistrationSucceeded{
		Name:           rec.Name,
		RegistrationID: rec.RegistrationID,
		Timestamp:      rec.RegisteredAt,
	}
	s.logAudit(ctx, audit.Event{
		Action:      string(audit.EventIdentityEnrolled),
		Subject:     regID.String(),
		SubjectName: rec.Name,
		Decision:    "registered",
		Message:     event.Message(),
		Timestamp:   rec.RegisteredAt,
	})
	s.incrementEnrollment(metrics.ResultRegistered)

	return &models.EnrollResult{Record: *rec, Event: event}, nil
}

// Verify captures a sample for the presented id and decides the outcome.
// Denials are results, not errors; errors are reserved for invalid input,
// capture failures and persistence failures.
func (s *Service) Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResult, error) {
	regID, err := parseRegistrationID(req.RegistrationID)
	if err != nil {
		return nil, err
	}

	sample, err := biometric.Capture(ctx, s.scanner, regID, s.captureTimeout)
	if err != nil {
		s.logWarn(ctx, "fingerprint capture failed", "registration_id", regID.String(), "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeCaptureFailed, "fingerprint capture failed")
	}

	result := &models.VerifyResult{
		RegistrationID: regID,
		AttemptedAt:    requestcontext.Now(ctx).UTC(),
	}

	rec, err := s.records.Get(regID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.deny(ctx, result, models.OutcomeUnknownIdentity, nil), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
	}
	// Verified is terminal; the sample is not evaluated again.
	if rec.Verified {
		return s.deny(ctx, result, models.OutcomeAlreadyVerified, &rec), nil
	}
	if !rec.Matches(sample) {
		return s.deny(ctx, result, models.OutcomeMismatch, &rec), nil
	}

	updated, err := s.records.MarkVerified(ctx, regID)
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		// A concurrent attempt won the transition.
		return s.deny(ctx, result, models.OutcomeAlreadyVerified, &updated), nil
	case errors.Is(err, sentinel.ErrNotFound):
		return s.deny(ctx, result, models.OutcomeUnknownIdentity, nil), nil
	case err != nil:
		s.snapshotFailed(ctx, regID, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification")
	}

	result.Outcome = models.OutcomeSuccess
	result.Record = &updated
	granted, _ := result.GrantedEvent()
	s.logAudit(ctx, audit.Event{
		Action:      string(audit.EventVerificationGranted),
		Subject:     regID.String(),
		SubjectName: updated.Name,
		Decision:    "granted",
		Reason:      string(models.OutcomeSuccess),
		Message:     granted.Message(),
		Timestamp:   result.AttemptedAt,
	})
	s.incrementVerification(models.OutcomeSuccess)
	return result, nil
}

// Lookup returns the stored record for an administrator.
func (s *Service) Lookup(ctx context.Context, rawID string) (*models.IdentityRecord, error) {
	regID, err := parseRegistrationID(rawID)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(regID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
	}
	return &rec, nil
}

// Alerts returns the most recent admin alerts, newest first.
// limit <= 0 selects the default page size; larger values are capped.
func (s *Service) Alerts(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.alerts == nil {
		return []audit.Event{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultAlertLimit
	case limit > maxAlertLimit:
		limit = maxAlertLimit
	}
	events, err := s.alerts.ListRecent(ctx, string(audit.EventAdminAlert), limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return events, nil
}

func (s *Service) deny(ctx context.Context, result *models.VerifyResult, outcome models.Outcome, rec *models.IdentityRecord) *models.VerifyResult {
	result.Outcome = outcome
	result.Record = rec
	alert := models.NewAdminAlert(s.newAlertID(), outcome, result.RegistrationID, rec, result.AttemptedAt)
	result.Alert = &alert

	denied, _ := result.DeniedEvent()
	s.logAudit(ctx, audit.Event{
		Action:      string(audit.EventVerificationDenied),
		Subject:     result.RegistrationID.String(),
		SubjectName: alert.Name,
		Decision:    "denied",
		Reason:      string(outcome),
		Message:     denied.Message(),
		Timestamp:   result.AttemptedAt,
	})
	s.raiseAlert(ctx, alert)
	s.incrementVerification(outcome)
	return result
}

// raiseAlert publishes the admin alert. A failed publication is logged and
// never changes the user-facing outcome.
func (s *Service) raiseAlert(ctx context.Context, alert models.AdminAlert) {
	severity := audit.SeverityWarning
	if alert.Outcome == models.OutcomeAlreadyVerified {
		severity = audit.SeverityCritical
	}
	s.logAudit(ctx, audit.Event{
		ID:          alert.ID,
		Severity:    severity,
		Action:      string(audit.EventAdminAlert),
		Subject:     alert.RegistrationID.String(),
		SubjectName: alert.Name,
		Decision:    "alert",
		Reason:      string(alert.Outcome),
		Message:     alert.Message(),
		Timestamp:   alert.AttemptedAt,
	})
	if s.metrics != nil {
		s.metrics.IncrementAdminAlert(string(alert.Outcome))
	}
}

func (s *Service) rejectDuplicate(ctx context.Context, regID id.RegistrationID) error {
	rejected := models.RegistrationRejected{RegistrationID: regID, Reason: models.ReasonAlreadyRegistered}
	s.logAudit(ctx, audit.Event{
		Action:   string(audit.EventEnrollmentRejected),
		Subject:  regID.String(),
		Decision: "rejected",
		Reason:   string(rejected.Reason),
		Message:  rejected.Message(),
	})
	s.incrementEnrollment(metrics.ResultAlreadyRegistered)
	return ErrAlreadyRegistered
}

func (s *Service) snapshotFailed(ctx context.Context, regID id.RegistrationID, cause error) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to persist identity records",
			"registration_id", regID.String(),
			"error", cause,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.logAudit(ctx, audit.Event{
		Action:   string(audit.EventSnapshotSaveFailed),
		Subject:  regID.String(),
		Decision: "failed",
		Reason:   cause.Error(),
	})
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.Device = requestcontext.Device(ctx)

	if s.logger != nil {
		args := []any{
			"event", event.Action,
			"log_type", "audit",
			"registration_id", event.Subject,
		}
		if event.Reason != "" {
			args = append(args, "reason", event.Reason)
		}
		if event.Severity != "" {
			args = append(args, "severity", string(event.Severity))
		}
		if event.RequestID != "" {
			args = append(args, "request_id", event.RequestID)
		}
		s.logger.InfoContext(ctx, event.Action, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logWarn(ctx, "failed to publish audit event", "event", event.Action, "error", err)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.WarnContext(ctx, msg, args...)
}

func (s *Service) incrementEnrollment(result string) {
	if s.metrics != nil {
		s.metrics.IncrementEnrollment(result)
	}
}

func (s *Service) incrementVerification(outcome models.Outcome) {
	if s.metrics != nil {
		s.metrics.IncrementVerification(string(outcome))
	}
}

func parseRegistrationID(raw string) (id.RegistrationID, error) {
	regID, err := id.ParseRegistrationID(raw)
	if err != nil {
		if de, ok := dErrors.As(err); ok {
			return "", dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid registration id")
	}
	return regID, nil
}
