package biometric

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/internal/enrollment/models"
	id "biogate/pkg/domain"
)

func TestDerive(t *testing.T) {
	t.Run("same id yields same sample", func(t *testing.T) {
		assert.Equal(t, Derive("R100"), Derive("R100"))
		assert.Equal(t, models.FingerprintSample("fingerprint_R100_data"), Derive("R100"))
	})

	t.Run("distinct ids never collide", func(t *testing.T) {
		ids := []id.RegistrationID{"R1", "R10", "R1_", "_R1", "R1_data", "fingerprint_R1", "r1"}
		seen := make(map[models.FingerprintSample]id.RegistrationID)
		for _, regID := range ids {
			sample := Derive(regID)
			if prev, ok := seen[sample]; ok {
				t.Fatalf("ids %q and %q share sample %q", prev, regID, sample)
			}
			seen[sample] = regID
		}
	})
}

func TestCapture(t *testing.T) {
	ctx := context.Background()

	t.Run("returns placeholder sample", func(t *testing.T) {
		sample, err := Capture(ctx, PlaceholderScanner{}, "R100", time.Second)
		require.NoError(t, err)
		assert.Equal(t, Derive("R100"), sample)
	})

	t.Run("wraps scanner errors", func(t *testing.T) {
		boom := errors.New("sensor unplugged")
		scanner := ScannerFunc(func(context.Context, id.RegistrationID) (models.FingerprintSample, error) {
			return "", boom
		})
		_, err := Capture(ctx, scanner, "R100", time.Second)
		require.ErrorIs(t, err, ErrCaptureFailed)
		require.ErrorIs(t, err, boom)
	})

	t.Run("rejects empty sample", func(t *testing.T) {
		scanner := ScannerFunc(func(context.Context, id.RegistrationID) (models.FingerprintSample, error) {
			return "", nil
		})
		_, err := Capture(ctx, scanner, "R100", time.Second)
		require.ErrorIs(t, err, ErrCaptureFailed)
		require.ErrorIs(t, err, ErrNoSample)
	})

	t.Run("times out a blocking scanner", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		scanner := ScannerFunc(func(context.Context, id.RegistrationID) (models.FingerprintSample, error) {
			<-release
			return "late", nil
		})
		_, err := Capture(ctx, scanner, "R100", 20*time.Millisecond)
		require.ErrorIs(t, err, ErrCaptureFailed)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled context fails placeholder scan", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Capture(cancelled, PlaceholderScanner{}, "R100", 0)
		require.ErrorIs(t, err, ErrCaptureFailed)
	})
}
