package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cimillas/attendance-nft/internal/app"
	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

func TestHandleContract(t *testing.T) {
	t.Parallel()

	svc := &stubInspector{report: app.ContractReport{
		Address:      common.HexToAddress("0xef83c6e7953d028d637e416f581ae2fa836ebae8"),
		ExpectedName: "EthSafari Event NFTs V2",
		ChainID:      8453,
		Deployed:     true,
		Verified:     true,
		ProbeCode:    "B99-Z00",
		Name:         app.Field{Value: "EthSafari Event NFTs V2"},
		Owner:        app.Field{Err: &domain.RPCError{Method: "owner", Attempts: 3}},
		MintingFee:   app.Field{Value: "100000000000000"},
	}}
	router := NewRouter(Services{Inspector: svc}, nil, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/contract?probe=B99-Z00", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if svc.probe != "B99-Z00" {
		t.Fatalf("expected probe passed through, got %q", svc.probe)
	}

	var resp contractReportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Deployed || !resp.Verified || resp.ChainID != 8453 {
		t.Fatalf("unexpected report: %+v", resp)
	}
	if resp.Owner.Error == "" || resp.Owner.Value != "" {
		t.Fatalf("expected owner error reported, got %+v", resp.Owner)
	}
	if resp.MintingFee.Value != "100000000000000" {
		t.Fatalf("unexpected fee field: %+v", resp.MintingFee)
	}
}

func TestHandleContract_Error(t *testing.T) {
	t.Parallel()

	svc := &stubInspector{err: errors.Join(domain.ErrRPCTransport, errors.New("dial"))}
	router := NewRouter(Services{Inspector: svc}, nil, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/contract", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}
