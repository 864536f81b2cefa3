// Package store owns the durable registration id -> identity record mapping.
//
// The whole mapping is held in memory and rewritten in full to a BlobStore
// after every mutation. Mutations are applied in memory, persisted, and rolled
// back if the write fails, so memory never runs ahead of stable storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"biogate/internal/enrollment/metrics"
	"biogate/internal/enrollment/models"
	id "biogate/pkg/domain"
	"biogate/pkg/platform/sentinel"
)

// BlobStore persists one opaque snapshot. Read returns sentinel.ErrNotFound
// when nothing has been written yet.
type BlobStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
}

// RecordStore is the process-wide identity record set.
type RecordStore struct {
	mu      sync.Mutex
	blobs   BlobStore
	records map[id.RegistrationID]models.IdentityRecord
	metrics *metrics.Metrics
}

type Option func(*RecordStore)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RecordStore) {
		s.metrics = m
	}
}

// Open loads the persisted snapshot, starting empty if none exists.
// Unreadable or corrupt state is returned as an error and should abort startup.
func Open(ctx context.Context, blobs BlobStore, opts ...Option) (*RecordStore, error) {
	s := &RecordStore{blobs: blobs}
	for _, opt := range opts {
		opt(s)
	}

	payload, err := blobs.Read(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.records = make(map[id.RegistrationID]models.IdentityRecord)
	case err != nil:
		return nil, fmt.Errorf("load identity records: %w", err)
	default:
		records, err := decodeSnapshot(payload)
		if err != nil {
			return nil, fmt.Errorf("load identity records: %w", err)
		}
		s.records = records
	}
	s.publishCount()
	return s, nil
}

// Contains reports whether regID is enrolled.
func (s *RecordStore) Contains(regID id.RegistrationID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[regID]
	return ok
}

// Get returns a copy of the record for regID.
func (s *RecordStore) Get(regID id.RegistrationID) (models.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[regID]
	if !ok {
		return models.IdentityRecord{}, sentinel.ErrNotFound
	}
	return rec, nil
}

// Insert adds a new record and persists the set. There is no update path:
// an existing id yields sentinel.ErrConflict and leaves the stored record untouched.
func (s *RecordStore) Insert(ctx context.Context, rec models.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.RegistrationID]; ok {
		return sentinel.ErrConflict
	}
	s.records[rec.RegistrationID] = rec
	if err := s.persistLocked(ctx); err != nil {
		delete(s.records, rec.RegistrationID)
		return err
	}
	s.publishCount()
	return nil
}

// MarkVerified performs the one-way unverified -> verified transition and persists it.
// Already verified records return sentinel.ErrInvalidState along with the current record.
func (s *RecordStore) MarkVerified(ctx context.Context, regID id.RegistrationID) (models.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[regID]
	if !ok {
		return models.IdentityRecord{}, sentinel.ErrNotFound
	}
	if err := rec.CanVerify(); err != nil {
		return rec, fmt.Errorf("%w: %w", sentinel.ErrInvalidState, err)
	}

	previous := rec
	rec.ApplyVerification()
	s.records[regID] = rec
	if err := s.persistLocked(ctx); err != nil {
		s.records[regID] = previous
		return previous, err
	}
	return rec, nil
}

// Save persists the full current mapping.
func (s *RecordStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Snapshot returns a copy of every record, ordered by registration id.
func (s *RecordStore) Snapshot() []models.IdentityRecord {
	s.mu.Lock()
	out := make([]models.IdentityRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationID < out[j].RegistrationID })
	return out
}

// Len returns the number of enrolled identities.
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persistLocked writes the current mapping (must hold lock).
func (s *RecordStore) persistLocked(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSnapshotSave(start, err)
		}
	}()

	payload, err := encodeSnapshot(s.records)
	if err != nil {
		return err
	}
	if err := s.blobs.Write(ctx, payload); err != nil {
		return fmt.Errorf("persist identity records: %w", err)
	}
	return nil
}

func (s *RecordStore) publishCount() {
	if s.metrics != nil {
		s.metrics.SetIdentityRecords(len(s.records))
	}
}
