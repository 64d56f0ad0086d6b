package coordinator

import (
	"context"
	"fmt"

	"evotemfc/transport"
)

// ShareNode is a signed HTTP client bound to one share node's base URL,
// calling the four operations of spec §4.2.
type ShareNode struct {
	ID      string
	BaseURL string
	client  *transport.Client
}

func NewShareNode(id, baseURL string, client *transport.Client) *ShareNode {
	return &ShareNode{ID: id, BaseURL: baseURL, client: client}
}

type prepareBody struct {
	TxID    string `json:"tx_id"`
	VoteID  string `json:"vote_id"`
	PartyID string `json:"party_id"`
	Delta   int64  `json:"delta"`
}

type txIDBody struct {
	TxID string `json:"tx_id"`
}

type statusReply struct {
	Status string `json:"status"`
}

// SnapshotTotal is one row of a share node's snapshot (spec §4.2).
type SnapshotTotal struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	Share       int64  `json:"share"`
}

// SnapshotReply is a share node's full snapshot response (spec §4.4).
type SnapshotReply struct {
	NodeID  string          `json:"node_id"`
	Modulus int64           `json:"modulus"`
	Totals  []SnapshotTotal `json:"totals"`
}

func (n *ShareNode) Prepare(ctx context.Context, txID, electionID, candidateID string, delta int64) error {
	var reply statusReply
	err := n.client.PostJSON(ctx, n.BaseURL+"/internal/share/prepare", prepareBody{
		TxID: txID, VoteID: electionID, PartyID: candidateID, Delta: delta,
	}, &reply)
	if err != nil {
		return fmt.Errorf("coordinator: prepare on node %s: %w", n.ID, err)
	}
	return nil
}

func (n *ShareNode) Commit(ctx context.Context, txID string) error {
	var reply statusReply
	err := n.client.PostJSON(ctx, n.BaseURL+"/internal/share/commit", txIDBody{TxID: txID}, &reply)
	if err != nil {
		return fmt.Errorf("coordinator: commit on node %s: %w", n.ID, err)
	}
	return nil
}

func (n *ShareNode) Abort(ctx context.Context, txID string) error {
	var reply statusReply
	err := n.client.PostJSON(ctx, n.BaseURL+"/internal/share/abort", txIDBody{TxID: txID}, &reply)
	if err != nil {
		return fmt.Errorf("coordinator: abort on node %s: %w", n.ID, err)
	}
	return nil
}

func (n *ShareNode) Snapshot(ctx context.Context) (*SnapshotReply, error) {
	var reply SnapshotReply
	if err := n.client.GetJSON(ctx, n.BaseURL+"/internal/share/snapshot", &reply); err != nil {
		return nil, fmt.Errorf("coordinator: snapshot on node %s: %w", n.ID, err)
	}
	return &reply, nil
}
