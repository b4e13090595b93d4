package http

import "net/http"

// HealthHandler reports process liveness. It does not touch the ledger or the
// journal; GET /contract covers the ledger side.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
