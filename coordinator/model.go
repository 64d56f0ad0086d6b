// Package coordinator implements the ballot-cast state machine and tally
// reconstruction of spec §4.3/§4.4: eligibility checks against an external
// registry.Registry, a two-phase commit driver across two share nodes, and
// the coordinator's own VoteRecord/AuditEntry bookkeeping.
//
// Grounded on network/coordinator/2pc.go's PreWrite/DecideBlock shape
// (prepare-both then decide-both, single deciding outcome) and
// network/coordinator/manager.go's Manager holding a TxnPool and a
// LogManager alongside its participant addresses.
package coordinator

import "fmt"

// Outcome is the closed AuditEntry result enum (spec §3).
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAborted:
		return "aborted"
	default:
		panic(fmt.Sprintf("coordinator: unknown Outcome %d", int(o)))
	}
}

// VoteRecord is the at-most-once enforcement witness (spec §3): one row
// per (election, voter), created only after 2PC succeeds.
type VoteRecord struct {
	ElectionID string
	VoterID    int64
}

// AuditEntry retains both shares of one ballot so a disagreement between
// nodes can be diagnosed after the fact (spec §3). Invariant: for every
// success entry, (DeltaA+DeltaB) mod p == 1.
type AuditEntry struct {
	TxRoot      string
	ElectionID  string
	CandidateID string
	VoterID     int64
	DeltaA      int64
	DeltaB      int64
	Outcome     Outcome
}
