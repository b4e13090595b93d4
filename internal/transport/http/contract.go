package http

import (
	"context"
	"net/http"

	"github.com/cimillas/attendance-nft/internal/app"
)

type ContractInspector interface {
	Inspect(ctx context.Context, probeCode string) (app.ContractReport, error)
}

// HandleContract reports the configured registry's identity and read surface.
// ?probe= overrides the event code used for the token id read.
func HandleContract(inspector ContractInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := inspector.Inspect(r.Context(), r.URL.Query().Get("probe"))
		if err != nil {
			writeDomainError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newContractReportResponse(report))
	}
}
