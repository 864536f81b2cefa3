// Package biometric models the external fingerprint capture step.
//
// No real feature extraction happens here. PlaceholderScanner derives a
// deterministic sample from the registration id, which means any caller who
// knows an id verifies as that id. That is a simulation artefact, not a
// security property.
package biometric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biogate/internal/enrollment/models"
	id "biogate/pkg/domain"
)

var (
	// ErrCaptureFailed wraps every failure of the capture step.
	ErrCaptureFailed = errors.New("fingerprint capture failed")
	// ErrNoSample is returned when the scanner produced an empty sample.
	ErrNoSample = errors.New("scanner returned no sample")
)

// Scanner acquires a fingerprint sample for the person presenting regID.
// Implementations may block; Capture bounds them with a timeout.
type Scanner interface {
	Scan(ctx context.Context, regID id.RegistrationID) (models.FingerprintSample, error)
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func(ctx context.Context, regID id.RegistrationID) (models.FingerprintSample, error)

func (f ScannerFunc) Scan(ctx context.Context, regID id.RegistrationID) (models.FingerprintSample, error) {
	return f(ctx, regID)
}

// PlaceholderScanner derives the sample from the registration id.
type PlaceholderScanner struct{}

func (PlaceholderScanner) Scan(ctx context.Context, regID id.RegistrationID) (models.FingerprintSample, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Derive(regID), nil
}

// Derive returns the placeholder sample for regID. The id is embedded
// verbatim, so distinct ids can never collide.
func Derive(regID id.RegistrationID) models.FingerprintSample {
	return models.FingerprintSample("fingerprint_" + regID.String() + "_data")
}

type scanResult struct {
	sample models.FingerprintSample
	err    error
}

// Capture runs the scanner, giving up after timeout (zero means no limit).
// Scanners that ignore ctx are abandoned on timeout; their late result is dropped.
func Capture(ctx context.Context, scanner Scanner, regID id.RegistrationID, timeout time.Duration) (models.FingerprintSample, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan scanResult, 1)
	go func() {
		sample, err := scanner.Scan(ctx, regID)
		done <- scanResult{sample: sample, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrCaptureFailed, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", ErrCaptureFailed, res.err)
		}
		if res.sample == "" {
			return "", fmt.Errorf("%w: %w", ErrCaptureFailed, ErrNoSample)
		}
		return res.sample, nil
	}
}
