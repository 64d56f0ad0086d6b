package coordinator

import (
	"context"

	mapset "github.com/deckarep/golang-set"

	"evotemfc/coreerr"
)

// CandidateTally is one candidate's reconstructed total (spec §4.4 step 5).
type CandidateTally struct {
	CandidateID string
	Total       int64
}

// TallyResult is the reply of spec §4.4 step 6.
type TallyResult struct {
	ElectionID string
	Tallies    []CandidateTally
	Modulus    int64
	NodeA      string
	NodeB      string
}

// Tally reconstructs every candidate's total for electionID by summing
// the two nodes' modular shares, grounded on network/coordinator/2pc.go's
// pattern of dispatching to both participants and collecting results.
func (c *Coordinator) Tally(ctx context.Context, electionID string) (*TallyResult, error) {
	if _, err := c.Registry.Election(ctx, electionID); err != nil {
		return nil, err
	}

	snapA, err := c.NodeA.Snapshot(ctx)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Gateway, "snapshot from node A failed", err)
	}
	snapB, err := c.NodeB.Snapshot(ctx)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Gateway, "snapshot from node B failed", err)
	}

	if snapA.Modulus != c.Modulus || snapB.Modulus != c.Modulus {
		return nil, coreerr.New(coreerr.Internal, "modulus mismatch")
	}

	totalsA := make(map[string]int64)
	for _, t := range snapA.Totals {
		if t.ElectionID == electionID {
			totalsA[t.CandidateID] = t.Share
		}
	}
	totalsB := make(map[string]int64)
	for _, t := range snapB.Totals {
		if t.ElectionID == electionID {
			totalsB[t.CandidateID] = t.Share
		}
	}

	candidateIDs := mapset.NewSet()
	for cid := range totalsA {
		candidateIDs.Add(cid)
	}
	for cid := range totalsB {
		candidateIDs.Add(cid)
	}

	result := &TallyResult{ElectionID: electionID, Modulus: c.Modulus, NodeA: snapA.NodeID, NodeB: snapB.NodeID}
	for cid := range candidateIDs.Iter() {
		candidateID := cid.(string)
		total := mod(totalsA[candidateID]+totalsB[candidateID], c.Modulus)
		result.Tallies = append(result.Tallies, CandidateTally{CandidateID: candidateID, Total: total})
	}
	return result, nil
}
