package app

import (
	"context"
	"errors"

	"github.com/cimillas/attendance-nft/internal/clock"
	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// Reconciler resolves journaled submissions whose outcome was not observed.
type Reconciler struct {
	journal  SubmissionJournal
	receipts ReceiptReader
	clock    clock.Clock
}

func NewReconciler(journal SubmissionJournal, receipts ReceiptReader, clk clock.Clock) *Reconciler {
	return &Reconciler{journal: journal, receipts: receipts, clock: clk}
}

// Check reads the receipt once for a non-terminal submission and stores the
// outcome. Outstanding transactions are returned unchanged.
func (r *Reconciler) Check(ctx context.Context, hash common.Hash) (domain.Submission, error) {
	sub, err := r.journal.GetSubmission(ctx, hash)
	if err != nil {
		return domain.Submission{}, err
	}
	if sub.Status.Terminal() {
		return sub, nil
	}

	receipt, err := r.receipts.Receipt(ctx, hash)
	if errors.Is(err, domain.ErrReceiptNotFound) {
		return sub, nil
	}
	if err != nil {
		return domain.Submission{}, err
	}

	update := domain.SubmissionUpdate{
		TxHash:      hash,
		Status:      domain.SubmissionConfirmed,
		BlockNumber: receipt.BlockNumber,
		UpdatedAt:   r.clock.Now(),
	}
	if receipt.Status != domain.ReceiptSuccess {
		update.Status = domain.SubmissionReverted
		update.LastError = (&domain.RevertedError{TxHash: hash, BlockNumber: receipt.BlockNumber}).Error()
	}
	if err := r.journal.UpdateSubmissionStatus(ctx, update); err != nil {
		return domain.Submission{}, err
	}

	sub.Status = update.Status
	sub.BlockNumber = update.BlockNumber
	sub.LastError = update.LastError
	sub.UpdatedAt = update.UpdatedAt
	return sub, nil
}
