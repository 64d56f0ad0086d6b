package coordinator

import (
	"context"
	"time"

	"evotemfc/coreerr"
	"evotemfc/locks"
	"evotemfc/logging"
	"evotemfc/registry"
)

// Coordinator drives ballot casting and tally reconstruction across two
// share nodes, grounded on network/coordinator/manager.go's Manager
// (participant addresses, a TxnPool, a LogManager) generalized from N
// sharded participants down to the fixed pair A/B spec §2 names.
type Coordinator struct {
	Registry    registry.Registry
	NodeA       *ShareNode
	NodeB       *ShareNode
	Store       Store
	VoterLocks  *locks.VoterLocks
	Intents     *IntentLog // optional
	Modulus     int64
	HTTPTimeout time.Duration
	log         *logging.Logger
}

func New(reg registry.Registry, nodeA, nodeB *ShareNode, store Store, voterLocks *locks.VoterLocks, intents *IntentLog, modulus int64, httpTimeout time.Duration) *Coordinator {
	return &Coordinator{
		Registry:    reg,
		NodeA:       nodeA,
		NodeB:       nodeB,
		Store:       store,
		VoterLocks:  voterLocks,
		Intents:     intents,
		Modulus:     modulus,
		HTTPTimeout: httpTimeout,
		log:         logging.New("coordinator"),
	}
}

// CastResult is the success reply of spec §4.3 step 7.
type CastResult struct {
	TxRoot string
}

// Cast runs spec §4.3's full algorithm: preconditions, share generation,
// tx_root minting, prepare-then-commit 2PC against both nodes, and local
// finalization.
func (c *Coordinator) Cast(ctx context.Context, fingerprint, electionID, candidateID string) (*CastResult, error) {
	election, err := c.Registry.Election(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !election.OpenNow(time.Now()) {
		return nil, coreerr.New(coreerr.Precondition, "election is not open")
	}
	if _, err := c.Registry.ActiveCandidate(ctx, electionID, candidateID); err != nil {
		return nil, err
	}
	voterID, err := c.Registry.ResolveVoter(ctx, electionID, fingerprint)
	if err != nil {
		return nil, err
	}

	// Per-voter advisory lock closes the pre-check/VoteRecord race spec §9
	// describes, held from the pre-check through local finalization.
	c.VoterLocks.Lock(electionID, voterID)
	defer c.VoterLocks.Unlock(electionID, voterID)

	voted, err := c.Store.HasVoteRecord(ctx, electionID, voterID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, coreerr.New(coreerr.Conflict, "already voted")
	}

	// Node A gets the freshly drawn share r; node B gets (1 - r) mod p.
	deltaA, err := randomShare(c.Modulus)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "coordinator: share generation failed", err)
	}
	deltaB := mod(1-deltaA, c.Modulus)

	txRoot, err := randomTxRoot()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "coordinator: tx_root generation failed", err)
	}
	txA := txRoot + "-A"
	txB := txRoot + "-B"

	if c.Intents != nil {
		intent := Intent{TxRoot: txRoot, ElectionID: electionID, CandidateID: candidateID, VoterID: voterID, DeltaA: deltaA, DeltaB: deltaB, Outcome: "pending"}
		if err := c.Intents.Append(intent); err != nil {
			c.log.Errorf("intent log append failed for %s: %v", txRoot, err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.HTTPTimeout)
	defer cancel()

	if err := c.NodeA.Prepare(callCtx, txA, electionID, candidateID, deltaA); err != nil {
		c.log.Warnf("prepare failed on A for %s: %v", txRoot, err)
		c.bestEffortAbort(ctx, txA, txB)
		c.recordAborted(ctx, txRoot, electionID, candidateID, voterID, deltaA, deltaB)
		return nil, coreerr.Wrap(coreerr.Gateway, "prepare failed", err)
	}
	if err := c.NodeB.Prepare(callCtx, txB, electionID, candidateID, deltaB); err != nil {
		c.log.Warnf("prepare failed on B for %s: %v", txRoot, err)
		c.bestEffortAbort(ctx, txA, txB)
		c.recordAborted(ctx, txRoot, electionID, candidateID, voterID, deltaA, deltaB)
		return nil, coreerr.Wrap(coreerr.Gateway, "prepare failed", err)
	}

	if err := c.NodeA.Commit(callCtx, txA); err != nil {
		c.log.Warnf("commit failed on A for %s: %v", txRoot, err)
		c.bestEffortAbort(ctx, txA, txB)
		c.recordAborted(ctx, txRoot, electionID, candidateID, voterID, deltaA, deltaB)
		return nil, coreerr.Wrap(coreerr.Gateway, "commit failed", err)
	}
	if err := c.NodeB.Commit(callCtx, txB); err != nil {
		// Important asymmetry (spec §4.3 step 5): A has already committed.
		// The system is now inconsistent; logged to audit, no automated
		// recovery attempted.
		c.log.Errorf("commit failed on B after A committed for %s: %v", txRoot, err)
		c.bestEffortAbort(ctx, txA, txB)
		c.recordAborted(ctx, txRoot, electionID, candidateID, voterID, deltaA, deltaB)
		return nil, coreerr.Wrap(coreerr.Gateway, "commit failed on node B after node A committed", err)
	}

	entry := AuditEntry{
		TxRoot: txRoot, ElectionID: electionID, CandidateID: candidateID,
		VoterID: voterID, DeltaA: deltaA, DeltaB: deltaB,
	}
	if err := c.Store.FinalizeSuccess(ctx, entry); err != nil {
		// Shares are already committed on both nodes; too late to abort
		// them. This is the acknowledged consistency gap of spec §9.
		c.log.Errorf("local finalization failed for %s after both commits: %v", txRoot, err)
		c.bestEffortAbort(ctx, txA, txB)
		return nil, err
	}

	if err := c.Registry.RecordCast(ctx, electionID, voterID); err != nil {
		c.log.Warnf("external RecordCast notification failed for election %s voter %d: %v", electionID, voterID, err)
	}

	return &CastResult{TxRoot: txRoot}, nil
}

func (c *Coordinator) bestEffortAbort(ctx context.Context, txA, txB string) {
	if err := c.NodeA.Abort(ctx, txA); err != nil {
		c.log.Warnf("best-effort abort on A failed for %s: %v", txA, err)
	}
	if err := c.NodeB.Abort(ctx, txB); err != nil {
		c.log.Warnf("best-effort abort on B failed for %s: %v", txB, err)
	}
}

func (c *Coordinator) recordAborted(ctx context.Context, txRoot, electionID, candidateID string, voterID, deltaA, deltaB int64) {
	entry := AuditEntry{
		TxRoot: txRoot, ElectionID: electionID, CandidateID: candidateID,
		VoterID: voterID, DeltaA: deltaA, DeltaB: deltaB,
	}
	if err := c.Store.RecordAborted(ctx, entry); err != nil {
		c.log.Warnf("aborted audit entry write failed for %s: %v", txRoot, err)
	}
}
