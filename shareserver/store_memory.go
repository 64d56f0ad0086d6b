package shareserver

import (
	"context"
	"sync"

	"evotemfc/coreerr"
)

// MemoryStore is an in-process Store used by tests, the same role the
// teacher's in-memory benchmark Shard backend plays alongside its SQL and
// Mongo backends (storage.Shard with configurable storage type).
type MemoryStore struct {
	mu      sync.Mutex
	modulus int64
	txns    map[string]*ShareTransaction
	totals  map[[2]string]int64
}

func NewMemoryStore(modulus int64) *MemoryStore {
	return &MemoryStore{
		modulus: modulus,
		txns:    make(map[string]*ShareTransaction),
		totals:  make(map[[2]string]int64),
	}
}

func (m *MemoryStore) Prepare(_ context.Context, txID, electionID, candidateID string, delta int64) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delta = Mod(delta, m.modulus)

	t, ok := m.txns[txID]
	if !ok {
		m.txns[txID] = &ShareTransaction{TxID: txID, ElectionID: electionID, CandidateID: candidateID, Delta: delta, Status: StatusPrepared}
		return StatusPrepared, nil
	}
	switch t.Status {
	case StatusPrepared, StatusCommitted:
		return t.Status, nil
	case StatusAborted:
		return StatusNone, coreerr.New(coreerr.Conflict, "transaction already aborted")
	default:
		return StatusNone, coreerr.New(coreerr.Internal, "unreachable transaction status")
	}
}

func (m *MemoryStore) Commit(_ context.Context, txID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txns[txID]
	if !ok {
		return StatusNone, coreerr.New(coreerr.NotFound, "unknown tx")
	}
	switch t.Status {
	case StatusAborted:
		return StatusNone, coreerr.New(coreerr.Conflict, "transaction already aborted")
	case StatusCommitted:
		return StatusCommitted, nil
	case StatusPrepared:
		key := [2]string{t.ElectionID, t.CandidateID}
		m.totals[key] = Mod(m.totals[key]+t.Delta, m.modulus)
		t.Status = StatusCommitted
		return StatusCommitted, nil
	default:
		return StatusNone, coreerr.New(coreerr.Internal, "unreachable transaction status")
	}
}

func (m *MemoryStore) Abort(_ context.Context, txID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txns[txID]
	if !ok {
		return StatusAborted, nil
	}
	switch t.Status {
	case StatusCommitted, StatusAborted:
		return t.Status, nil
	case StatusPrepared:
		t.Status = StatusAborted
		return StatusAborted, nil
	default:
		return StatusNone, coreerr.New(coreerr.Internal, "unreachable transaction status")
	}
}

func (m *MemoryStore) Snapshot(_ context.Context) ([]ShareTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ShareTotal, 0, len(m.totals))
	for k, v := range m.totals {
		out = append(out, ShareTotal{ElectionID: k[0], CandidateID: k[1], Share: v})
	}
	return out, nil
}

func (m *MemoryStore) Lookup(_ context.Context, txID string) (*ShareTransaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[txID]
	if !ok {
		return nil, false, nil
	}
	cp := *t
	return &cp, true, nil
}
