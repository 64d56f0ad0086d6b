package shareserver

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"evotemfc/coreerr"
	"evotemfc/store"
)

// PostgresStore persists ShareTransaction/ShareTotal in the two tables
// named by spec §6, grounded on storage/postgres.go's pgx.Tx usage for
// the commit step's read-modify-write.
type PostgresStore struct {
	pool    *store.Pool
	modulus int64
}

// NewPostgresStore wraps pool, assuming the schema from InitSchema already
// exists.
func NewPostgresStore(pool *store.Pool, modulus int64) *PostgresStore {
	return &PostgresStore{pool: pool, modulus: modulus}
}

// InitSchema creates the two tables this store needs if absent.
func InitSchema(ctx context.Context, pool *store.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS share_transactions (
			tx_id TEXT PRIMARY KEY,
			election_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			delta BIGINT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS share_totals (
			election_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			share BIGINT NOT NULL,
			PRIMARY KEY (election_id, candidate_id)
		)`,
	}
	for _, s := range stmts {
		if err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("shareserver: init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Prepare(ctx context.Context, txID, electionID, candidateID string, delta int64) (Status, error) {
	delta = Mod(delta, s.modulus)
	var result Status
	err := s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		var statusStr string
		err := tx.QueryRow(ctx, `SELECT status FROM share_transactions WHERE tx_id = $1 FOR UPDATE`, txID).Scan(&statusStr)
		if err == pgx.ErrNoRows {
			_, err := tx.Exec(ctx, `INSERT INTO share_transactions (tx_id, election_id, candidate_id, delta, status)
				VALUES ($1, $2, $3, $4, 'prepared')`, txID, electionID, candidateID, delta)
			if err != nil {
				return coreerr.Wrap(coreerr.Internal, "shareserver: insert prepared transaction", err)
			}
			result = StatusPrepared
			return nil
		}
		if err != nil {
			return coreerr.Wrap(coreerr.Internal, "shareserver: lookup transaction", err)
		}
		status, err := ParseStatus(statusStr)
		if err != nil {
			return coreerr.Wrap(coreerr.Internal, "shareserver: corrupt status", err)
		}
		switch status {
		case StatusPrepared, StatusCommitted:
			result = status
			return nil
		case StatusAborted:
			return coreerr.New(coreerr.Conflict, "transaction already aborted")
		default:
			return coreerr.New(coreerr.Internal, "unreachable transaction status")
		}
	})
	if err != nil {
		return StatusNone, err
	}
	return result, nil
}

func (s *PostgresStore) Commit(ctx context.Context, txID string) (Status, error) {
	var result Status
	err := s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		var statusStr, electionID, candidateID string
		var delta int64
		err := tx.QueryRow(ctx, `SELECT status, election_id, candidate_id, delta FROM share_transactions WHERE tx_id = $1 FOR UPDATE`, txID).
			Scan(&statusStr, &electionID, &candidateID, &delta)
		if err == pgx.ErrNoRows {
			return coreerr.New(coreerr.NotFound, "unknown tx")
		}
		if err != nil {
			return coreerr.Wrap(coreerr.Internal, "shareserver: lookup transaction", err)
		}
		status, err := ParseStatus(statusStr)
		if err != nil {
			return coreerr.Wrap(coreerr.Internal, "shareserver: corrupt status", err)
		}
		switch status {
		case StatusAborted:
			return coreerr.New(coreerr.Conflict, "transaction already aborted")
		case StatusCommitted:
			result = StatusCommitted
			return nil
		case StatusPrepared:
			if _, err := tx.Exec(ctx, `
				INSERT INTO share_totals (election_id, candidate_id, share)
				VALUES ($1, $2, $3)
				ON CONFLICT (election_id, candidate_id)
				DO UPDATE SET share = MOD(share_totals.share + EXCLUDED.share, $4)`,
				electionID, candidateID, delta, s.modulus); err != nil {
				return coreerr.Wrap(coreerr.Internal, "shareserver: fold share total", err)
			}
			if _, err := tx.Exec(ctx, `UPDATE share_transactions SET status = 'committed' WHERE tx_id = $1`, txID); err != nil {
				return coreerr.Wrap(coreerr.Internal, "shareserver: mark committed", err)
			}
			result = StatusCommitted
			return nil
		default:
			return coreerr.New(coreerr.Internal, "unreachable transaction status")
		}
	})
	if err != nil {
		return StatusNone, err
	}
	return result, nil
}

func (s *PostgresStore) Abort(ctx context.Context, txID string) (Status, error) {
	var result Status
	err := s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		var statusStr string
		err := tx.QueryRow(ctx, `SELECT status FROM share_transactions WHERE tx_id = $1 FOR UPDATE`, txID).Scan(&statusStr)
		if err == pgx.ErrNoRows {
			result = StatusAborted // nothing to abort; treat as success
			return nil
		}
		if err != nil {
			return coreerr.Wrap(coreerr.Internal, "shareserver: lookup transaction", err)
		}
		status, err := ParseStatus(statusStr)
		if err != nil {
			return coreerr.Wrap(coreerr.Internal, "shareserver: corrupt status", err)
		}
		switch status {
		case StatusCommitted:
			// cannot un-commit; tolerated for defense-in-depth (spec §9).
			result = StatusCommitted
			return nil
		case StatusAborted:
			result = StatusAborted
			return nil
		case StatusPrepared:
			if _, err := tx.Exec(ctx, `UPDATE share_transactions SET status = 'aborted' WHERE tx_id = $1`, txID); err != nil {
				return coreerr.Wrap(coreerr.Internal, "shareserver: mark aborted", err)
			}
			result = StatusAborted
			return nil
		default:
			return coreerr.New(coreerr.Internal, "unreachable transaction status")
		}
	})
	if err != nil {
		return StatusNone, err
	}
	return result, nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]ShareTotal, error) {
	rows, err := s.pool.Query(ctx, `SELECT election_id, candidate_id, share FROM share_totals`)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "shareserver: snapshot query", err)
	}
	defer rows.Close()

	var out []ShareTotal
	for rows.Next() {
		var t ShareTotal
		if err := rows.Scan(&t.ElectionID, &t.CandidateID, &t.Share); err != nil {
			return nil, coreerr.Wrap(coreerr.Internal, "shareserver: snapshot scan", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Lookup(ctx context.Context, txID string) (*ShareTransaction, bool, error) {
	var t ShareTransaction
	var statusStr string
	err := s.pool.QueryRow(ctx, `SELECT tx_id, election_id, candidate_id, delta, status FROM share_transactions WHERE tx_id = $1`, txID).
		Scan(&t.TxID, &t.ElectionID, &t.CandidateID, &t.Delta, &statusStr)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, coreerr.Wrap(coreerr.Internal, "shareserver: lookup transaction", err)
	}
	status, err := ParseStatus(statusStr)
	if err != nil {
		return nil, false, coreerr.Wrap(coreerr.Internal, "shareserver: corrupt status", err)
	}
	t.Status = status
	return &t, true, nil
}
