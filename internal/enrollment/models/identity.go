package models

import (
	"crypto/subtle"
	"strings"
	"time"

	id "biogate/pkg/domain"
	dErrors "biogate/pkg/domain-errors"
)

// FingerprintSample is the placeholder standing in for a captured fingerprint.
type FingerprintSample string

func (s FingerprintSample) String() string { return string(s) }

// VerificationState is the lifecycle position of an identity record.
type VerificationState string

const (
	StateUnverified VerificationState = "unverified"
	StateVerified   VerificationState = "verified"
)

// IdentityRecord is one enrolled identity.
//
// Invariants:
//   - RegistrationID is non-empty and immutable
//   - FingerprintSample is captured at enrollment and never changes
//   - RegisteredAt is set at construction and never changes
//   - Verified transitions false -> true exactly once (Verified is terminal)
//
// Name, Phone and PhotoReference are informational and never compared.
type IdentityRecord struct {
	RegistrationID    id.RegistrationID
	Name              string
	Phone             string
	PhotoReference    string
	FingerprintSample FingerprintSample
	Verified          bool
	RegisteredAt      time.Time
}

// NewIdentityRecord constructs an unverified record, validating invariants.
// RegisteredAt is normalised to UTC so it survives snapshot round-trips exactly.
func NewIdentityRecord(
	regID id.RegistrationID,
	name, phone, photoReference string,
	sample FingerprintSample,
	registeredAt time.Time,
) (*IdentityRecord, error) {
	if regID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration id is required")
	}
	if strings.TrimSpace(photoReference) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "photo reference is required")
	}
	if sample == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fingerprint sample is required")
	}
	if registeredAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration time is required")
	}
	return &IdentityRecord{
		RegistrationID:    regID,
		Name:              strings.TrimSpace(name),
		Phone:             strings.TrimSpace(phone),
		PhotoReference:    strings.TrimSpace(photoReference),
		FingerprintSample: sample,
		Verified:          false,
		RegisteredAt:      registeredAt.UTC(),
	}, nil
}

// State reports the record's position in the verification lifecycle.
func (r *IdentityRecord) State() VerificationState {
	if r.Verified {
		return StateVerified
	}
	return StateUnverified
}

// Matches compares a freshly captured sample with the enrolled one.
func (r *IdentityRecord) Matches(sample FingerprintSample) bool {
	return subtle.ConstantTimeCompare([]byte(r.FingerprintSample), []byte(sample)) == 1
}

// CanVerify checks if the record can transition to verified.
// Call before ApplyVerification.
func (r *IdentityRecord) CanVerify() error {
	if r.Verified {
		return dErrors.New(dErrors.CodeInvariantViolation, "identity is already verified")
	}
	return nil
}

// ApplyVerification sets the one-way verified flag.
func (r *IdentityRecord) ApplyVerification() {
	r.Verified = true
}
