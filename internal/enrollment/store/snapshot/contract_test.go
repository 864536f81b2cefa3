package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"biogate/internal/enrollment/store"
	"biogate/pkg/platform/sentinel"
)

// exerciseBlobStore checks the behaviour every backend shares: empty reads
// are ErrNotFound and each write replaces the previous payload in full.
func exerciseBlobStore(t *testing.T, blobs store.BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := blobs.Read(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, blobs.Write(ctx, []byte(`{"version":1,"records":{"a":1}}`)))
	got, err := blobs.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, `{"version":1,"records":{"a":1}}`, string(got))

	require.NoError(t, blobs.Write(ctx, []byte(`{}`)))
	got, err = blobs.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, `{}`, string(got), "write must replace, not append")
}

// exerciseRecordStore runs the record store on top of a backend and reopens it.
func exerciseRecordStore(t *testing.T, open func() store.BlobStore) {
	t.Helper()
	ctx := context.Background()

	records, err := store.Open(ctx, open())
	require.NoError(t, err)
	require.NoError(t, records.Insert(ctx, sampleRecord("R100", "Alice")))
	require.NoError(t, records.Insert(ctx, sampleRecord("R200", "Bob")))
	_, err = records.MarkVerified(ctx, "R100")
	require.NoError(t, err)

	reloaded, err := store.Open(ctx, open())
	require.NoError(t, err)
	require.Equal(t, records.Snapshot(), reloaded.Snapshot())
}
