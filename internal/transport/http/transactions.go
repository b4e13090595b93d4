package http

import (
	"context"
	"net/http"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
)

// SubmissionChecker re-checks a journaled transaction against the ledger.
type SubmissionChecker interface {
	Check(ctx context.Context, hash common.Hash) (domain.Submission, error)
}

func HandleGetTransaction(checker SubmissionChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash, ok := parseTxHash(chi.URLParam(r, "hash"))
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidTxHash, "invalid transaction hash")
			return
		}

		sub, err := checker.Check(r.Context(), hash)
		if err != nil {
			writeDomainError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newSubmissionResponse(sub))
	}
}

func parseTxHash(raw string) (common.Hash, bool) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(b), true
}
