package coordinator

import (
	"context"
	"sync"

	"evotemfc/coreerr"
)

// MemoryStore is an in-process Store used by tests, mirroring the role
// MemoryStore plays for shareserver.Store.
type MemoryStore struct {
	mu          sync.Mutex
	voteRecords map[[2]interface{}]bool
	audit       map[string]AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		voteRecords: make(map[[2]interface{}]bool),
		audit:       make(map[string]AuditEntry),
	}
}

func (m *MemoryStore) HasVoteRecord(_ context.Context, electionID string, voterID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voteRecords[[2]interface{}{electionID, voterID}], nil
}

func (m *MemoryStore) FinalizeSuccess(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]interface{}{entry.ElectionID, entry.VoterID}
	if m.voteRecords[key] {
		return coreerr.New(coreerr.Conflict, "already voted")
	}
	m.voteRecords[key] = true
	entry.Outcome = OutcomeSuccess
	m.audit[entry.TxRoot] = entry
	return nil
}

func (m *MemoryStore) RecordAborted(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Outcome = OutcomeAborted
	if _, exists := m.audit[entry.TxRoot]; !exists {
		m.audit[entry.TxRoot] = entry
	}
	return nil
}

// Audit returns a copy of the recorded audit entry for txRoot, for tests.
func (m *MemoryStore) Audit(txRoot string) (AuditEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.audit[txRoot]
	return e, ok
}
