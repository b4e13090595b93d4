package http

import (
	"math/big"
	"time"

	"github.com/cimillas/attendance-nft/internal/app"
	"github.com/cimillas/attendance-nft/internal/domain"
)

type attemptResponse struct {
	AttemptID string `json:"attempt_id"`
	Kind      string `json:"kind"`
	State     string `json:"state"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
}

func newAttemptResponse(a *domain.Attempt) attemptResponse {
	status := app.Report(a)
	resp := attemptResponse{
		AttemptID: a.ID,
		Kind:      string(a.Kind),
		State:     string(a.State),
		Status:    string(status.Category),
		Reason:    status.Reason,
	}
	if a.Submitted() {
		resp.TxHash = a.TxHash.Hex()
	}
	if domain.IsRegisteredTokenID(a.TokenID) {
		resp.TokenID = a.TokenID.String()
	}
	return resp
}

type eventResponse struct {
	EventName     string    `json:"event_name"`
	Location      string    `json:"location"`
	Timestamp     int64     `json:"timestamp"`
	StartsAt      time.Time `json:"starts_at"`
	HostName      string    `json:"host_name"`
	AttendeeCount uint64    `json:"attendee_count"`
	ContentHash   string    `json:"content_hash"`
	IsActive      bool      `json:"is_active"`
}

type eventViewResponse struct {
	EventCode   string         `json:"event_code"`
	Registered  bool           `json:"registered"`
	TokenID     string         `json:"token_id"`
	Event       *eventResponse `json:"event,omitempty"`
	MintingFee  string         `json:"minting_fee_wei"`
	TotalMinted string         `json:"total_minted"`
	Account     string         `json:"account,omitempty"`
	HasMinted   *bool          `json:"has_minted,omitempty"`
}

func newEventViewResponse(v app.EventView) eventViewResponse {
	resp := eventViewResponse{
		EventCode:   v.EventCode,
		Registered:  v.Registered(),
		TokenID:     bigString(v.TokenID),
		MintingFee:  bigString(v.MintingFee),
		TotalMinted: bigString(v.TotalMinted),
	}
	if m := v.Mint; m != nil {
		minted := m.HasMinted
		resp.Account = m.Account.Hex()
		resp.HasMinted = &minted
	}
	if e := v.Event; e != nil {
		resp.Event = &eventResponse{
			EventName:     e.EventName,
			Location:      e.Location,
			Timestamp:     e.Timestamp,
			StartsAt:      e.StartsAt(),
			HostName:      e.HostName,
			AttendeeCount: e.AttendeeCount,
			ContentHash:   e.ContentHash,
			IsActive:      e.IsActive,
		}
	}
	return resp
}

type fieldResponse struct {
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func newFieldResponse(f app.Field) fieldResponse {
	if f.Err != nil {
		return fieldResponse{Error: f.Err.Error()}
	}
	return fieldResponse{Value: f.Value}
}

type contractReportResponse struct {
	Address      string        `json:"address"`
	ExpectedName string        `json:"expected_name"`
	ChainID      uint64        `json:"chain_id"`
	Deployed     bool          `json:"deployed"`
	Verified     bool          `json:"verified"`
	ProbeCode    string        `json:"probe_code"`
	Name         fieldResponse `json:"name"`
	Owner        fieldResponse `json:"owner"`
	TotalSupply  fieldResponse `json:"total_supply"`
	MintingFee   fieldResponse `json:"minting_fee_wei"`
	ProbeTokenID fieldResponse `json:"probe_token_id"`
}

func newContractReportResponse(r app.ContractReport) contractReportResponse {
	return contractReportResponse{
		Address:      r.Address.Hex(),
		ExpectedName: r.ExpectedName,
		ChainID:      r.ChainID,
		Deployed:     r.Deployed,
		Verified:     r.Verified,
		ProbeCode:    r.ProbeCode,
		Name:         newFieldResponse(r.Name),
		Owner:        newFieldResponse(r.Owner),
		TotalSupply:  newFieldResponse(r.TotalSupply),
		MintingFee:   newFieldResponse(r.MintingFee),
		ProbeTokenID: newFieldResponse(r.ProbeTokenID),
	}
}

type submissionResponse struct {
	TxHash      string    `json:"tx_hash"`
	AttemptID   string    `json:"attempt_id"`
	Kind        string    `json:"kind"`
	Method      string    `json:"method"`
	EventCode   string    `json:"event_code"`
	From        string    `json:"from"`
	Contract    string    `json:"contract"`
	Value       string    `json:"value_wei"`
	Status      string    `json:"status"`
	BlockNumber uint64    `json:"block_number,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newSubmissionResponse(s domain.Submission) submissionResponse {
	return submissionResponse{
		TxHash:      s.TxHash.Hex(),
		AttemptID:   s.AttemptID,
		Kind:        string(s.Kind),
		Method:      s.Method,
		EventCode:   s.EventCode,
		From:        s.From.Hex(),
		Contract:    s.Contract.Hex(),
		Value:       bigString(s.Value),
		Status:      string(s.Status),
		BlockNumber: s.BlockNumber,
		LastError:   s.LastError,
		SubmittedAt: s.SubmittedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
