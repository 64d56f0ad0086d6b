// Package locks holds the core's only pieces of shared in-memory state
// (spec §5, §9): the single-slot fingerprint capture buffer and the
// per-voter advisory lock used to close the pre-check/VoteRecord race.
package locks

import (
	"strconv"
	"sync"
	"time"

	lock "github.com/viney-shih/go-lock"
)

// FingerprintBuffer is a single-slot, mutex-guarded, last-write-wins
// holder for the most recently captured voter fingerprint. Modeled as a
// dedicated component per spec §9 rather than a free package variable.
type FingerprintBuffer struct {
	mu        sync.RWMutex
	value     string
	has       bool
	updatedAt time.Time
}

// NewFingerprintBuffer returns an empty buffer.
func NewFingerprintBuffer() *FingerprintBuffer {
	return &FingerprintBuffer{}
}

// Set overwrites the slot, last-write-wins.
func (b *FingerprintBuffer) Set(fingerprint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = fingerprint
	b.has = true
	b.updatedAt = time.Now()
}

// Get returns the current fingerprint and whether the slot is populated.
func (b *FingerprintBuffer) Get() (fingerprint string, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value, b.has
}

// Clear empties the slot.
func (b *FingerprintBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = ""
	b.has = false
	b.updatedAt = time.Now()
}

// UpdatedAt reports when the slot was last written, the zero time if never.
func (b *FingerprintBuffer) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

// VoterLocks is a keyed advisory lock, one github.com/viney-shih/go-lock
// mutex per voter, created on first access — the same per-key lock-table
// shape as the teacher's storage/cc_vll.go row-lock table. Taking this
// lock before phase 1 of a cast and releasing it after local finalization
// closes the race spec §9 describes between the "already voted?"
// pre-check and the VoteRecord uniqueness insert.
type VoterLocks struct {
	mu    sync.Mutex
	byKey map[string]lock.Mutex
}

// NewVoterLocks returns an empty keyed lock table.
func NewVoterLocks() *VoterLocks {
	return &VoterLocks{byKey: make(map[string]lock.Mutex)}
}

func (v *VoterLocks) mutexFor(electionID string, voterID int64) lock.Mutex {
	key := voterKey(electionID, voterID)
	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.byKey[key]
	if !ok {
		m = lock.NewCASMutex()
		v.byKey[key] = m
	}
	return m
}

// Lock blocks until the advisory lock for (electionID, voterID) is held.
// Callers must call Unlock with the same arguments.
func (v *VoterLocks) Lock(electionID string, voterID int64) {
	v.mutexFor(electionID, voterID).Lock()
}

// Unlock releases the advisory lock for (electionID, voterID).
func (v *VoterLocks) Unlock(electionID string, voterID int64) {
	v.mutexFor(electionID, voterID).Unlock()
}

func voterKey(electionID string, voterID int64) string {
	return electionID + "#" + strconv.FormatInt(voterID, 10)
}
