package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"evotemfc/coreerr"
	"evotemfc/store"
)

const uniqueViolation = "23505"

// PostgresStore persists VoteRecord/AuditEntry in the two tables named by
// spec §6, grounded on storage/postgres.go's pgx.Tx usage.
type PostgresStore struct {
	pool *store.Pool
}

func NewPostgresStore(pool *store.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// InitSchema creates the coordinator's two tables if absent.
func InitSchema(ctx context.Context, pool *store.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vote_records (
			election_id TEXT NOT NULL,
			voter_id BIGINT NOT NULL,
			PRIMARY KEY (election_id, voter_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit (
			tx_root TEXT PRIMARY KEY,
			election_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			voter_id BIGINT NOT NULL,
			delta_a BIGINT NOT NULL,
			delta_b BIGINT NOT NULL,
			status TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("coordinator: init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) HasVoteRecord(ctx context.Context, electionID string, voterID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM vote_records WHERE election_id = $1 AND voter_id = $2)`,
		electionID, voterID).Scan(&exists)
	if err != nil {
		return false, coreerr.Wrap(coreerr.Internal, "coordinator: vote record lookup", err)
	}
	return exists, nil
}

func (s *PostgresStore) FinalizeSuccess(ctx context.Context, entry AuditEntry) error {
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO vote_records (election_id, voter_id) VALUES ($1, $2)`,
			entry.ElectionID, entry.VoterID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return coreerr.New(coreerr.Conflict, "already voted")
			}
			return coreerr.Wrap(coreerr.Internal, "coordinator: insert vote record", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO audit (tx_root, election_id, candidate_id, voter_id, delta_a, delta_b, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.TxRoot, entry.ElectionID, entry.CandidateID, entry.VoterID, entry.DeltaA, entry.DeltaB, OutcomeSuccess.String()); err != nil {
			return coreerr.Wrap(coreerr.Internal, "coordinator: insert audit entry", err)
		}
		return nil
	})
}

func (s *PostgresStore) RecordAborted(ctx context.Context, entry AuditEntry) error {
	err := s.pool.Exec(ctx,
		`INSERT INTO audit (tx_root, election_id, candidate_id, voter_id, delta_a, delta_b, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (tx_root) DO NOTHING`,
		entry.TxRoot, entry.ElectionID, entry.CandidateID, entry.VoterID, entry.DeltaA, entry.DeltaB, OutcomeAborted.String())
	if err != nil {
		return coreerr.Wrap(coreerr.Internal, "coordinator: insert aborted audit entry", err)
	}
	return nil
}
