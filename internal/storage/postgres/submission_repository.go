package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository is the journal of transactions handed to the ledger.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// RecordSubmission stores sub. Recording the same transaction hash twice is a no-op.
func (r *SubmissionRepository) RecordSubmission(ctx context.Context, sub domain.Submission) error {
	const stmt = `
INSERT INTO submissions (
	id, attempt_id, kind, tx_hash, from_address, contract_address, method, event_code,
	value_wei, status, last_error, block_number, submitted_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12, $13, $14)`

	value := "0"
	if sub.Value != nil {
		value = sub.Value.String()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		sub.ID, sub.AttemptID, string(sub.Kind), sub.TxHash.Hex(), sub.From.Hex(), sub.Contract.Hex(),
		sub.Method, sub.EventCode, value, string(sub.Status), sub.LastError, int64(sub.BlockNumber),
		sub.SubmittedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// UpdateSubmissionStatus applies u unless the submission already has a
// terminal ledger outcome.
func (r *SubmissionRepository) UpdateSubmissionStatus(ctx context.Context, u domain.SubmissionUpdate) error {
	return r.WithTx(ctx, func(txCtx context.Context) error {
		var status string
		err := conn(txCtx, r.pool).QueryRow(txCtx,
			`SELECT status FROM submissions WHERE tx_hash = $1 FOR UPDATE`, u.TxHash.Hex(),
		).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrSubmissionNotFound
			}
			return fmt.Errorf("lock submission: %w", err)
		}
		if domain.SubmissionStatus(status).Terminal() {
			return nil
		}

		const stmt = `
UPDATE submissions
SET status = $2, block_number = $3, last_error = $4, updated_at = $5
WHERE tx_hash = $1`
		if _, err := conn(txCtx, r.pool).Exec(txCtx, stmt,
			u.TxHash.Hex(), string(u.Status), int64(u.BlockNumber), u.LastError, u.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		return nil
	})
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, hash common.Hash) (domain.Submission, error) {
	const query = `
SELECT id, attempt_id, kind, tx_hash, from_address, contract_address, method, event_code,
	value_wei::text, status, last_error, block_number, submitted_at, updated_at
FROM submissions
WHERE tx_hash = $1`

	var (
		s                      domain.Submission
		kind, txHash, from, to string
		value, status          string
		block                  int64
	)
	err := conn(ctx, r.pool).QueryRow(ctx, query, hash.Hex()).Scan(
		&s.ID, &s.AttemptID, &kind, &txHash, &from, &to, &s.Method, &s.EventCode,
		&value, &status, &s.LastError, &block, &s.SubmittedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("get submission: %w", err)
	}

	s.Kind = domain.AttemptKind(kind)
	s.TxHash = common.HexToHash(txHash)
	s.From = common.HexToAddress(from)
	s.Contract = common.HexToAddress(to)
	s.Status = domain.SubmissionStatus(status)
	s.BlockNumber = uint64(block)
	s.Value, _ = new(big.Int).SetString(value, 10)
	s.SubmittedAt = s.SubmittedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
