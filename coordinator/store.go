package coordinator

import "context"

// Store is the coordinator's exclusive ownership of VoteRecord and
// AuditEntry (spec §3: "the coordinator exclusively owns VoteRecord and
// AuditEntry").
type Store interface {
	// HasVoteRecord runs the pre-check of spec §4.3 step 1.
	HasVoteRecord(ctx context.Context, electionID string, voterID int64) (bool, error)

	// FinalizeSuccess inserts VoteRecord and AuditEntry(success) atomically
	// (spec §4.3 step 6). Returns a coreerr.Conflict if a VoteRecord for
	// (electionID, voterID) already exists (a concurrent winning cast).
	FinalizeSuccess(ctx context.Context, entry AuditEntry) error

	// RecordAborted writes an AuditEntry(aborted) for diagnostics (spec §3:
	// "aborted entries may be written on the failure path"). Best-effort;
	// callers should log but not fail the request on its error.
	RecordAborted(ctx context.Context, entry AuditEntry) error
}
