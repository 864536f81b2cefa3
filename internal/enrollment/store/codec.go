package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"biogate/internal/enrollment/models"
	id "biogate/pkg/domain"
)

// ErrCorrupt marks a persisted snapshot that cannot be decoded.
var ErrCorrupt = errors.New("corrupt identity snapshot")

const snapshotVersion = 1

type snapshotEnvelope struct {
	Version int                   `json:"version"`
	Records map[string]recordJSON `json:"records"`
}

// recordJSON is the on-disk shape of an identity record. It is kept separate
// from models.IdentityRecord so the domain type carries no wire tags.
type recordJSON struct {
	RegistrationID    string `json:"registration_id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	PhotoReference    string `json:"photo"`
	FingerprintSample string `json:"fingerprint"`
	Verified          bool   `json:"verified"`
	RegisteredAt      string `json:"registration_timestamp"`
}

func encodeSnapshot(records map[id.RegistrationID]models.IdentityRecord) ([]byte, error) {
	env := snapshotEnvelope{
		Version: snapshotVersion,
		Records: make(map[string]recordJSON, len(records)),
	}
	for key, rec := range records {
		env.Records[key.String()] = recordJSON{
			RegistrationID:    rec.RegistrationID.String(),
			Name:              rec.Name,
			Phone:             rec.Phone,
			PhotoReference:    rec.PhotoReference,
			FingerprintSample: rec.FingerprintSample.String(),
			Verified:          rec.Verified,
			RegisteredAt:      rec.RegisteredAt.Format(time.RFC3339Nano),
		}
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode identity snapshot: %w", err)
	}
	return payload, nil
}

func decodeSnapshot(payload []byte) (map[id.RegistrationID]models.IdentityRecord, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if env.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, env.Version)
	}

	records := make(map[id.RegistrationID]models.IdentityRecord, len(env.Records))
	for key, raw := range env.Records {
		regID, err := id.ParseRegistrationID(raw.RegistrationID)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q: %w", ErrCorrupt, key, err)
		}
		if regID.String() != key {
			return nil, fmt.Errorf("%w: record key %q does not match id %q", ErrCorrupt, key, regID)
		}
		registeredAt, err := time.Parse(time.RFC3339Nano, raw.RegisteredAt)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q: %w", ErrCorrupt, key, err)
		}
		if raw.FingerprintSample == "" {
			return nil, fmt.Errorf("%w: record %q has no fingerprint sample", ErrCorrupt, key)
		}
		records[regID] = models.IdentityRecord{
			RegistrationID:    regID,
			Name:              raw.Name,
			Phone:             raw.Phone,
			PhotoReference:    raw.PhotoReference,
			FingerprintSample: models.FingerprintSample(raw.FingerprintSample),
			Verified:          raw.Verified,
			RegisteredAt:      registeredAt,
		}
	}
	return records, nil
}
