package models

import "strings"

// EnrollRequest is the collaborator input for a new enrollment. PhotoReference
// is produced by the external camera step and must be present.
type EnrollRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	RegistrationID string `json:"registration_id"`
	PhotoReference string `json:"photo_reference"`
}

// Normalize trims whitespace from free-form fields.
func (r *EnrollRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.PhotoReference = strings.TrimSpace(r.PhotoReference)
}

// VerifyRequest is the collaborator input for a verification attempt.
type VerifyRequest struct {
	RegistrationID string `json:"registration_id"`
}
