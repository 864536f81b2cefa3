//go:build integration

package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"biogate/internal/enrollment/store"
	"biogate/internal/enrollment/store/snapshot"
	"biogate/pkg/testutil/containers"
)

func TestPostgresStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)

	t.Run("contract", func(t *testing.T) {
		s, err := snapshot.OpenPostgres(ctx, pg.DSN, "contract")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		exerciseBlobStore(t, s)
	})

	t.Run("record store round-trip across reopen", func(t *testing.T) {
		exerciseRecordStore(t, func() store.BlobStore {
			s, err := snapshot.OpenPostgres(ctx, pg.DSN, "identity_records")
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		})
	})
}

func TestRedisStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	t.Run("contract", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		s := snapshot.NewRedis(rc.Client, "biogate", "contract")
		require.Equal(t, "biogate:contract", s.Key())
		exerciseBlobStore(t, s)
	})

	t.Run("record store round-trip across reopen", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		exerciseRecordStore(t, func() store.BlobStore {
			return snapshot.NewRedis(rc.Client, "biogate", "identity_records")
		})
	})
}
