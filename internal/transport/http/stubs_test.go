package http

import (
	"context"
	"io"
	"log"
	"math/big"
	"testing"
	"time"

	"github.com/cimillas/attendance-nft/internal/app"
	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

var testNow = time.Date(2025, 9, 12, 15, 0, 0, 0, time.UTC)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// attemptThrough builds an attempt that walked the given states in order.
func attemptThrough(t *testing.T, kind domain.AttemptKind, states ...domain.AttemptState) *domain.Attempt {
	t.Helper()
	a := domain.NewAttempt("attempt-1", kind, testNow)
	for _, s := range states {
		if err := a.Transition(s); err != nil {
			t.Fatalf("build attempt: %v", err)
		}
	}
	return a
}

func confirmedAttempt(t *testing.T, kind domain.AttemptKind) *domain.Attempt {
	a := attemptThrough(t, kind,
		domain.AttemptVerifying, domain.AttemptReady, domain.AttemptSubmitting,
		domain.AttemptPending, domain.AttemptConfirmed)
	a.TxHash = common.HexToHash("0x01")
	a.TokenID = big.NewInt(7)
	return a
}

// pendingAttempt builds a submitted attempt still waiting for its receipt.
func pendingAttempt(t *testing.T, kind domain.AttemptKind) *domain.Attempt {
	a := attemptThrough(t, kind,
		domain.AttemptVerifying, domain.AttemptReady, domain.AttemptSubmitting, domain.AttemptPending)
	a.TxHash = common.HexToHash("0x02")
	return a
}

type stubCreator struct {
	attempt *domain.Attempt
	err     error
	got     app.CreateEventInput
}

func (s *stubCreator) Run(_ context.Context, in app.CreateEventInput) (*domain.Attempt, error) {
	s.got = in
	return s.attempt, s.err
}

type stubMinter struct {
	attempt *domain.Attempt
	err     error
	got     app.MintInput
}

func (s *stubMinter) Run(_ context.Context, in app.MintInput) (*domain.Attempt, error) {
	s.got = in
	return s.attempt, s.err
}

type stubLookup struct {
	view    app.EventView
	err     error
	code    string
	account *common.Address
}

func (s *stubLookup) Get(_ context.Context, code string, account *common.Address) (app.EventView, error) {
	s.code = code
	s.account = account
	return s.view, s.err
}

type stubInspector struct {
	report app.ContractReport
	err    error
	probe  string
}

func (s *stubInspector) Inspect(_ context.Context, probe string) (app.ContractReport, error) {
	s.probe = probe
	return s.report, s.err
}

type stubChecker struct {
	sub  domain.Submission
	err  error
	hash common.Hash
}

func (s *stubChecker) Check(_ context.Context, hash common.Hash) (domain.Submission, error) {
	s.hash = hash
	return s.sub, s.err
}
