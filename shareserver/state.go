// Package shareserver implements the share node (spec §4.2): the
// ShareTransaction prepare/commit/abort state machine and the modular
// ShareTotal accumulator, behind signed HTTP handlers.
//
// Grounded on network/coordinator/txn_handler.go's transit(begin, end
// uint8) bool pattern for the state machine, and storage/postgres.go's
// pgx.Tx usage for the commit step's atomic read-modify-write.
package shareserver

import "fmt"

// Status is the closed ShareTransaction lifecycle (spec §3, §9: tagged
// state instead of a string column).
type Status int

const (
	StatusNone Status = iota
	StatusPrepared
	StatusCommitted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPrepared:
		return "prepared"
	case StatusCommitted:
		return "committed"
	case StatusAborted:
		return "aborted"
	default:
		panic(fmt.Sprintf("shareserver: unknown Status %d", int(s)))
	}
}

// ParseStatus rejects any value outside the closed enum at the boundary
// (spec §9), rather than silently storing it.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "prepared":
		return StatusPrepared, nil
	case "committed":
		return StatusCommitted, nil
	case "aborted":
		return StatusAborted, nil
	default:
		return StatusNone, fmt.Errorf("shareserver: invalid status %q", s)
	}
}

// ShareTransaction is one node's record of a single prepare/commit/abort
// round for a ballot's share (spec §3).
type ShareTransaction struct {
	TxID        string
	ElectionID  string
	CandidateID string
	Delta       int64
	Status      Status
}

// ShareTotal is the accumulated modular share for one (election,
// candidate) pair (spec §3).
type ShareTotal struct {
	ElectionID  string
	CandidateID string
	Share       int64
}

// Mod reduces v into [0, p).
func Mod(v int64, p int64) int64 {
	r := v % p
	if r < 0 {
		r += p
	}
	return r
}
