package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/attendance-nft/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidEventCode    = "invalid_event_code"
	codeEventNameRequired   = "event_name_required"
	codeInvalidAddress      = "invalid_address"
	codeInvalidTxHash       = "invalid_tx_hash"
	codePermissionDenied    = "permission_denied"
	codeEventNotRegistered  = "event_not_registered"
	codeSubmissionNotFound  = "submission_not_found"
	codeAlreadyRegistered   = "already_registered"
	codeAlreadyMinted       = "already_minted"
	codeEventInactive       = "event_inactive"
	codeUserRejected        = "user_rejected"
	codeReverted            = "transaction_reverted"
	codeRPCTransport        = "rpc_transport"
	codeSubmissionFailed    = "submission_failed"
	codeNotDeployed         = "contract_not_deployed"
	codeWrongContract       = "wrong_contract"
	codeNetworkMismatch     = "network_mismatch"
	codeWalletUnavailable   = "wallet_unavailable"
	codeConfirmationTimeout = "confirmation_timeout"
	codeOutstanding         = "transaction_outstanding"
	codeContractCall        = "contract_call_failed"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error   string           `json:"error"`
	Code    string           `json:"code"`
	Attempt *attemptResponse `json:"attempt,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Ordered: the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrInvalidEventCode, http.StatusBadRequest, codeInvalidEventCode},
	{domain.ErrEventNameRequired, http.StatusBadRequest, codeEventNameRequired},
	{domain.ErrInvalidAddress, http.StatusBadRequest, codeInvalidAddress},
	{domain.ErrPermissionDenied, http.StatusForbidden, codePermissionDenied},
	{domain.ErrEventNotRegistered, http.StatusNotFound, codeEventNotRegistered},
	{domain.ErrSubmissionNotFound, http.StatusNotFound, codeSubmissionNotFound},
	{domain.ErrAlreadyRegistered, http.StatusConflict, codeAlreadyRegistered},
	{domain.ErrAlreadyMinted, http.StatusConflict, codeAlreadyMinted},
	{domain.ErrEventInactive, http.StatusConflict, codeEventInactive},
	{domain.ErrUserRejected, http.StatusUnprocessableEntity, codeUserRejected},
	{domain.ErrReverted, http.StatusUnprocessableEntity, codeReverted},
	{domain.ErrNotDeployed, http.StatusServiceUnavailable, codeNotDeployed},
	{domain.ErrWrongContract, http.StatusServiceUnavailable, codeWrongContract},
	{domain.ErrNetworkMismatch, http.StatusServiceUnavailable, codeNetworkMismatch},
	{domain.ErrWalletUnavailable, http.StatusServiceUnavailable, codeWalletUnavailable},
	{domain.ErrTimeout, http.StatusAccepted, codeConfirmationTimeout},
	{domain.ErrSubmission, http.StatusBadGateway, codeSubmissionFailed},
	{domain.ErrContractCall, http.StatusBadGateway, codeContractCall},
	{domain.ErrRPCTransport, http.StatusBadGateway, codeRPCTransport},
}

// outstanding reports whether the request ended while the attempt's
// transaction was still unconfirmed.
func outstanding(err error, attempt *domain.Attempt) bool {
	if attempt == nil || !attempt.Submitted() || attempt.State != domain.AttemptPending {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, codeInternalError
}

// writeDomainError maps err onto a status and code. Unknown errors are not
// echoed to the client.
func writeDomainError(w http.ResponseWriter, err error, attempt *domain.Attempt) {
	status, code := classify(err)
	if outstanding(err, attempt) {
		status, code = http.StatusAccepted, codeOutstanding
	}
	msg := err.Error()
	if code == codeInternalError {
		msg = "internal error"
	}
	resp := errorResponse{Error: msg, Code: code}
	if attempt != nil {
		a := newAttemptResponse(attempt)
		resp.Attempt = &a
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Error: msg,
		Code:  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
