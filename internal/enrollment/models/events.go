package models

import (
	"fmt"
	"time"

	id "biogate/pkg/domain"
)

// TimestampLayout renders times in notification messages.
const TimestampLayout = "2006-01-02 15:04:05"

// UnknownUserName names the subject of alerts for ids that were never enrolled.
const UnknownUserName = "Unknown User"

// RegistrationSucceeded is emitted once per successful enrollment.
type RegistrationSucceeded struct {
	Name           string
	RegistrationID id.RegistrationID
	Timestamp      time.Time
}

func (e RegistrationSucceeded) Message() string {
	return fmt.Sprintf("User %s with registration number %s registered successfully at %s.",
		e.Name, e.RegistrationID, e.Timestamp.Format(TimestampLayout))
}

// RejectionReason explains a refused enrollment.
type RejectionReason string

const ReasonAlreadyRegistered RejectionReason = "already_registered"

// RegistrationRejected is the notification for a refused enrollment.
type RegistrationRejected struct {
	RegistrationID id.RegistrationID
	Reason         RejectionReason
}

func (e RegistrationRejected) Message() string {
	switch e.Reason {
	case ReasonAlreadyRegistered:
		return "This registration number already exists. Please use another."
	default:
		return "Registration failed."
	}
}

// VerificationGranted is shown to the user when access is granted.
type VerificationGranted struct {
	RegistrationID id.RegistrationID
	VerifiedAt     time.Time
}

func (VerificationGranted) Title() string   { return "Access Granted" }
func (VerificationGranted) Message() string { return "Fingerprint verified successfully!" }

// VerificationDenied is shown to the user for every non-success outcome.
type VerificationDenied struct {
	RegistrationID id.RegistrationID
	Reason         Outcome
}

func (VerificationDenied) Title() string   { return "Access Denied" }
func (VerificationDenied) Message() string { return "Fingerprint verification failed." }

// AdminAlert is the administrative side-channel notification for denied attempts.
type AdminAlert struct {
	ID             string
	Outcome        Outcome
	Name           string
	RegistrationID id.RegistrationID
	AttemptedAt    time.Time
	// RegisteredAt is only set for replays of an already verified identity.
	RegisteredAt *time.Time
}

// NewAdminAlert builds the alert for a denied outcome. record is nil for unknown ids.
func NewAdminAlert(alertID string, outcome Outcome, regID id.RegistrationID, record *IdentityRecord, now time.Time) AdminAlert {
	alert := AdminAlert{
		ID:             alertID,
		Outcome:        outcome,
		Name:           UnknownUserName,
		RegistrationID: regID,
		AttemptedAt:    now,
	}
	if record != nil {
		alert.Name = record.Name
	}
	if outcome == OutcomeAlreadyVerified && record != nil {
		registeredAt := record.RegisteredAt
		alert.RegisteredAt = &registeredAt
	}
	return alert
}

// Message renders the alert. Replays cite the original registration time;
// unknown ids and mismatches share the unregistered-fingerprint template.
func (a AdminAlert) Message() string {
	if a.RegisteredAt != nil {
		return fmt.Sprintf("ALERT: User %s with registration number %s tried to verify fingerprint again at %s. Registration timestamp: %s",
			a.Name, a.RegistrationID, a.AttemptedAt.Format(TimestampLayout), a.RegisteredAt.Format(TimestampLayout))
	}
	return fmt.Sprintf("ALERT: Unregistered fingerprint attempted! Name: %s, Registration Number: %s, Time: %s",
		a.Name, a.RegistrationID, a.AttemptedAt.Format(TimestampLayout))
}
