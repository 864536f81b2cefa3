package domain

import (
	"strings"
	"unicode/utf8"

	dErrors "biogate/pkg/domain-errors"
)

// RegistrationID is the caller-assigned key of one enrolled identity.
// The zero value is not a valid id; obtain one through ParseRegistrationID.
type RegistrationID string

func (r RegistrationID) String() string { return string(r) }

// IsZero reports whether the id is unset.
func (r RegistrationID) IsZero() bool { return r == "" }

// ParseRegistrationID accepts any id that is not blank. The raw string is the
// key: ids that differ only in surrounding whitespace are distinct identities.
// Invalid UTF-8 is refused because the snapshot codec cannot round-trip it.
func ParseRegistrationID(raw string) (RegistrationID, error) {
	if strings.TrimSpace(raw) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "registration id is required")
	}
	if !utf8.ValidString(raw) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "registration id must be valid UTF-8")
	}
	return RegistrationID(raw), nil
}
