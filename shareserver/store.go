package shareserver

import "context"

// Store is the persistence contract a share node needs: the
// ShareTransaction log and the ShareTotal accumulator (spec §3). Two
// implementations exist — a Postgres-backed one for production
// (store_postgres.go) and an in-memory one for tests
// (store_memory.go) — mirroring the teacher's multi-backend Shard
// abstraction (storage.Shard over benchmark/sql/mongo backends).
type Store interface {
	// Prepare applies spec §4.2's prepare semantics and returns the
	// resulting (or pre-existing) status.
	Prepare(ctx context.Context, txID, electionID, candidateID string, delta int64) (Status, error)

	// Commit applies spec §4.2's commit semantics: atomically folds delta
	// into the (election, candidate) total and marks the transaction
	// committed, unless it already is (idempotent) or was aborted
	// (conflict).
	Commit(ctx context.Context, txID string) (Status, error)

	// Abort applies spec §4.2's abort semantics: prepared->aborted, or a
	// no-op success for any other terminal/absent state.
	Abort(ctx context.Context, txID string) (Status, error)

	// Snapshot returns every accumulated (election, candidate) -> share.
	Snapshot(ctx context.Context) ([]ShareTotal, error)

	// Lookup returns the current ShareTransaction, for diagnostics and
	// tests.
	Lookup(ctx context.Context, txID string) (*ShareTransaction, bool, error)
}
