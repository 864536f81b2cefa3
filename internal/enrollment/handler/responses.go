package handler

import (
	"time"

	"biogate/internal/enrollment/models"
	"biogate/pkg/platform/audit"
)

type EnrollResponse struct {
	RegistrationID string    `json:"registration_id"`
	Name           string    `json:"name"`
	RegisteredAt   time.Time `json:"registered_at"`
	Message        string    `json:"message"`
}

type VerifyResponse struct {
	Granted bool   `json:"granted"`
	Outcome string `json:"outcome"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// RecordResponse is the admin view of a record. The fingerprint sample is never exposed.
type RecordResponse struct {
	RegistrationID string    `json:"registration_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	PhotoReference string    `json:"photo_reference"`
	Verified       bool      `json:"verified"`
	State          string    `json:"state"`
	RegisteredAt   time.Time `json:"registered_at"`
}

type AlertResponse struct {
	ID             string    `json:"id"`
	Outcome        string    `json:"outcome"`
	Severity       string    `json:"severity"`
	RegistrationID string    `json:"registration_id"`
	Name           string    `json:"name"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

type AlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

func toEnrollResponse(res *models.EnrollResult) EnrollResponse {
	return EnrollResponse{
		RegistrationID: res.Record.RegistrationID.String(),
		Name:           res.Record.Name,
		RegisteredAt:   res.Record.RegisteredAt,
		Message:        res.Event.Message(),
	}
}

func toVerifyResponse(res *models.VerifyResult) VerifyResponse {
	resp := VerifyResponse{Granted: res.Granted(), Outcome: res.Outcome.String()}
	if granted, ok := res.GrantedEvent(); ok {
		resp.Title, resp.Message = granted.Title(), granted.Message()
		return resp
	}
	denied, _ := res.DeniedEvent()
	resp.Title, resp.Message = denied.Title(), denied.Message()
	return resp
}

func toRecordResponse(rec *models.IdentityRecord) RecordResponse {
	return RecordResponse{
		RegistrationID: rec.RegistrationID.String(),
		Name:           rec.Name,
		Phone:          rec.Phone,
		PhotoReference: rec.PhotoReference,
		Verified:       rec.Verified,
		State:          string(rec.State()),
		RegisteredAt:   rec.RegisteredAt,
	}
}

func toAlertsResponse(events []audit.Event) AlertsResponse {
	alerts := make([]AlertResponse, 0, len(events))
	for _, e := range events {
		alerts = append(alerts, AlertResponse{
			ID:             e.ID,
			Outcome:        e.Reason,
			Severity:       string(e.Severity),
			RegistrationID: e.Subject,
			Name:           e.SubjectName,
			Message:        e.Message,
			Timestamp:      e.Timestamp,
		})
	}
	return AlertsResponse{Alerts: alerts}
}
