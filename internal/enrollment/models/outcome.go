package models

import (
	"time"

	id "biogate/pkg/domain"
)

// Outcome is the result of one verification attempt.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeUnknownIdentity Outcome = "unknown_identity"
	OutcomeAlreadyVerified Outcome = "already_verified"
	OutcomeMismatch        Outcome = "mismatch"
)

func (o Outcome) String() string { return string(o) }

// Granted reports whether the end user is let through.
func (o Outcome) Granted() bool { return o == OutcomeSuccess }

// RaisesAlert reports whether the outcome notifies administrators.
func (o Outcome) RaisesAlert() bool {
	switch o {
	case OutcomeUnknownIdentity, OutcomeAlreadyVerified, OutcomeMismatch:
		return true
	default:
		return false
	}
}

// EnrollResult is returned by a successful enrollment.
type EnrollResult struct {
	Record IdentityRecord
	Event  RegistrationSucceeded
}

// VerifyResult carries everything the caller needs to notify the user and,
// for denied attempts, the admin alert that was raised.
type VerifyResult struct {
	Outcome        Outcome
	RegistrationID id.RegistrationID
	AttemptedAt    time.Time
	// Record is the stored record after the attempt; nil for unknown identities.
	Record *IdentityRecord
	// Alert is set for every outcome except success.
	Alert *AdminAlert
}

// Granted reports whether access was granted.
func (r *VerifyResult) Granted() bool { return r.Outcome.Granted() }

// GrantedEvent returns the end-user notification for a successful attempt.
func (r *VerifyResult) GrantedEvent() (VerificationGranted, bool) {
	if !r.Granted() {
		return VerificationGranted{}, false
	}
	return VerificationGranted{RegistrationID: r.RegistrationID, VerifiedAt: r.AttemptedAt}, true
}

// DeniedEvent returns the end-user notification for a denied attempt.
func (r *VerifyResult) DeniedEvent() (VerificationDenied, bool) {
	if r.Granted() {
		return VerificationDenied{}, false
	}
	return VerificationDenied{RegistrationID: r.RegistrationID, Reason: r.Outcome}, true
}
