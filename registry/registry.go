// Package registry models the external collaborators spec §1 places out
// of scope (voter registry, election/candidate CRUD) as a narrow
// contract: (a) fingerprint+election -> voter id, (b) election+candidate
// -> active-in-open-window, (c) record an (election, voter) cast
// notification. The coordinator's own VoteRecord table (spec §3) remains
// the authoritative at-most-once witness; RecordCast here is the
// external system's own bookkeeping, called best-effort after a local
// commit succeeds.
package registry

import (
	"context"
	"time"

	"evotemfc/coreerr"
)

// ElectionStatus is the closed lifecycle enum from spec §3.
type ElectionStatus string

const (
	ElectionDraft    ElectionStatus = "draft"
	ElectionOpen     ElectionStatus = "open"
	ElectionClosed   ElectionStatus = "closed"
	ElectionArchived ElectionStatus = "archived"
)

// Election is the subset of external election state the core reads.
type Election struct {
	ID     string
	Status ElectionStatus
	Start  *time.Time
	End    *time.Time
}

// OpenNow reports whether the election is open and now falls within
// [Start, End], treating an absent bound as open-ended (spec §3).
func (e *Election) OpenNow(now time.Time) bool {
	if e.Status != ElectionOpen {
		return false
	}
	if e.Start != nil && now.Before(*e.Start) {
		return false
	}
	if e.End != nil && now.After(*e.End) {
		return false
	}
	return true
}

// Candidate is the subset of external candidate state the core reads.
type Candidate struct {
	ID         string
	ElectionID string
	Active     bool
}

// Registry is the contract the coordinator needs from the out-of-scope
// voter registry / election / candidate CRUD systems.
type Registry interface {
	// ResolveVoter maps a fingerprint to a stable voter id, scoped to an
	// election the way the original prototype scopes registrations.
	// Returns a coreerr NotFound if the fingerprint is unknown.
	ResolveVoter(ctx context.Context, electionID, fingerprint string) (voterID int64, err error)

	// Election fetches election lifecycle state. Returns coreerr NotFound
	// if the election does not exist.
	Election(ctx context.Context, electionID string) (*Election, error)

	// ActiveCandidate fetches a candidate, verifying it belongs to
	// electionID and is active. Returns coreerr NotFound otherwise.
	ActiveCandidate(ctx context.Context, electionID, candidateID string) (*Candidate, error)

	// RecordCast notifies the external system that voterID cast a ballot
	// in electionID. Best-effort: callers must not treat its failure as
	// grounds to roll back a ballot already committed locally.
	RecordCast(ctx context.Context, electionID string, voterID int64) error
}

// errNotFound is a small helper so implementations share one message
// shape for the NotFound case.
func errNotFound(what string) error {
	return coreerr.New(coreerr.NotFound, "unknown "+what)
}
