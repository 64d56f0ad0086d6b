package shareserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"evotemfc/coreerr"
)

func TestMemoryStorePrepareIsIdempotent(t *testing.T) {
	s := NewMemoryStore(101)
	ctx := context.Background()

	status, err := s.Prepare(ctx, "tx1", "e1", "c1", 7)
	require.NoError(t, err)
	require.Equal(t, StatusPrepared, status)

	status, err = s.Prepare(ctx, "tx1", "e1", "c1", 7)
	require.NoError(t, err)
	require.Equal(t, StatusPrepared, status)
}

func TestMemoryStorePrepareAfterAbortIsConflict(t *testing.T) {
	s := NewMemoryStore(101)
	ctx := context.Background()

	_, err := s.Prepare(ctx, "tx1", "e1", "c1", 7)
	require.NoError(t, err)
	_, err = s.Abort(ctx, "tx1")
	require.NoError(t, err)

	_, err = s.Prepare(ctx, "tx1", "e1", "c1", 7)
	require.Error(t, err)
	require.Equal(t, coreerr.Conflict, coreerr.KindOf(err))
}

func TestMemoryStoreCommitFoldsShareIntoTotal(t *testing.T) {
	s := NewMemoryStore(101)
	ctx := context.Background()

	_, err := s.Prepare(ctx, "tx1", "e1", "c1", 40)
	require.NoError(t, err)
	_, err = s.Prepare(ctx, "tx2", "e1", "c1", 90)
	require.NoError(t, err)

	status, err := s.Commit(ctx, "tx1")
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, status)
	status, err = s.Commit(ctx, "tx2")
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, status)

	totals, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Equal(t, Mod(40+90, 101), totals[0].Share)
}

func TestMemoryStoreCommitIsIdempotent(t *testing.T) {
	s := NewMemoryStore(101)
	ctx := context.Background()

	_, err := s.Prepare(ctx, "tx1", "e1", "c1", 40)
	require.NoError(t, err)
	_, err = s.Commit(ctx, "tx1")
	require.NoError(t, err)

	status, err := s.Commit(ctx, "tx1")
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, status)

	totals, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(40), totals[0].Share)
}

func TestMemoryStoreCommitAfterAbortIsConflict(t *testing.T) {
	s := NewMemoryStore(101)
	ctx := context.Background()

	_, err := s.Prepare(ctx, "tx1", "e1", "c1", 40)
	require.NoError(t, err)
	_, err = s.Abort(ctx, "tx1")
	require.NoError(t, err)

	_, err = s.Commit(ctx, "tx1")
	require.Error(t, err)
	require.Equal(t, coreerr.Conflict, coreerr.KindOf(err))
}

func TestMemoryStoreCommitUnknownTxIsNotFound(t *testing.T) {
	s := NewMemoryStore(101)
	_, err := s.Commit(context.Background(), "ghost")
	require.Error(t, err)
	require.Equal(t, coreerr.NotFound, coreerr.KindOf(err))
}

func TestMemoryStoreAbortAfterCommitIsTolerated(t *testing.T) {
	s := NewMemoryStore(101)
	ctx := context.Background()

	_, err := s.Prepare(ctx, "tx1", "e1", "c1", 40)
	require.NoError(t, err)
	_, err = s.Commit(ctx, "tx1")
	require.NoError(t, err)

	status, err := s.Abort(ctx, "tx1")
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, status)

	totals, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(40), totals[0].Share)
}

func TestMemoryStoreAbortUnknownTxIsSuccess(t *testing.T) {
	s := NewMemoryStore(101)
	status, err := s.Abort(context.Background(), "ghost")
	require.NoError(t, err)
	require.Equal(t, StatusAborted, status)
}
