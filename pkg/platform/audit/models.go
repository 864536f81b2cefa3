package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers record mutations: enrollments and the one-way
	// verified transition.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers anomalous verification attempts. Admin alerts
	// live here.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine rejections useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Severity  Severity
	Timestamp time.Time
	// Subject is the registration id the event is about.
	Subject string
	// SubjectName is the enrolled name, or "Unknown User" for unregistered ids.
	SubjectName string
	Action      string
	Decision    string
	Reason      string
	// Message is the rendered, human-readable notification text.
	Message   string
	RequestID string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	EventIdentityEnrolled    AuditEvent = "identity_enrolled"
	EventEnrollmentRejected  AuditEvent = "enrollment_rejected"
	EventVerificationGranted AuditEvent = "verification_granted"
	EventVerificationDenied  AuditEvent = "verification_denied"
	EventAdminAlert          AuditEvent = "admin_alert"
	EventSnapshotSaveFailed  AuditEvent = "snapshot_save_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityEnrolled:    CategoryCompliance,
	EventVerificationGranted: CategoryCompliance,

	EventVerificationDenied: CategorySecurity,
	EventAdminAlert:         CategorySecurity,

	EventEnrollmentRejected: CategoryOperations,
	EventSnapshotSaveFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

func (e AuditEvent) String() string { return string(e) }
