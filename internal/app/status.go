package app

import (
	"github.com/cimillas/attendance-nft/internal/domain"
)

// Report maps an attempt to the status vocabulary shown to users. It reads the
// attempt only.
func Report(attempt *domain.Attempt) domain.Status {
	if attempt == nil {
		return domain.Status{Category: domain.StatusIdle}
	}

	switch attempt.State {
	case domain.AttemptIdle:
		return domain.Status{Category: domain.StatusIdle}
	case domain.AttemptVerifying, domain.AttemptReady:
		return domain.Status{Category: domain.StatusChecking}
	case domain.AttemptDenied:
		return domain.Status{Category: domain.StatusDenied, Reason: reason(attempt.LastError, "not permitted")}
	case domain.AttemptAlreadyDone:
		return domain.Status{Category: domain.StatusAlreadyDone, Reason: reason(attempt.LastError, "")}
	case domain.AttemptSubmitting:
		return domain.Status{Category: domain.StatusAwaitingSignature}
	case domain.AttemptPending:
		return domain.Status{Category: domain.StatusPending, Reason: reason(attempt.LastError, "")}
	case domain.AttemptTimedOut:
		// The transaction may still land.
		return domain.Status{Category: domain.StatusPending, Reason: reason(attempt.LastError, "confirmation not observed in time")}
	case domain.AttemptConfirmed:
		return domain.Status{Category: domain.StatusConfirmed}
	case domain.AttemptRejectedByWallet:
		return domain.Status{Category: domain.StatusFailed, Reason: reason(attempt.LastError, "rejected in wallet")}
	default:
		return domain.Status{Category: domain.StatusFailed, Reason: reason(attempt.LastError, "failed")}
	}
}

func reason(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}
