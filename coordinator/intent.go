package coordinator

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/tidwall/wal"
)

// IntentLog persists a pre-phase-1 intent record for every cast before any
// share node is contacted, so an operator can complete or compensate a
// hanging transaction using the audit log's retained shares (spec §9).
//
// Grounded on network/coordinator/log_manager.go's LogManager (lsn counter
// over a *wal.Log), simplified to a synchronous append per call as in
// shareserver.TxnLog.
type IntentLog struct {
	mu  sync.Mutex
	log *wal.Log
	lsn uint64
}

// Intent is one WAL record: the full set of material needed to retry or
// compensate a cast without re-deriving shares.
type Intent struct {
	TxRoot      string `json:"tx_root"`
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	VoterID     int64  `json:"voter_id"`
	DeltaA      int64  `json:"delta_a"`
	DeltaB      int64  `json:"delta_b"`
	Outcome     string `json:"outcome"`
}

func OpenIntentLog(dir string) (*IntentLog, error) {
	l, err := wal.Open(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("coordinator: open intent wal: %w", err)
	}
	lastIdx, err := l.LastIndex()
	if err != nil {
		return nil, fmt.Errorf("coordinator: read intent wal index: %w", err)
	}
	return &IntentLog{log: l, lsn: lastIdx}, nil
}

// Append writes one intent record as the next WAL entry.
func (l *IntentLog) Append(i Intent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	buf, err := json.Marshal(i)
	if err != nil {
		return fmt.Errorf("coordinator: encode intent: %w", err)
	}
	l.lsn++
	return l.log.Write(l.lsn, buf)
}

func (l *IntentLog) Close() error {
	return l.log.Close()
}
