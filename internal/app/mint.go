package app

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

type MintInput struct {
	EventCode string
	// ContentHash is sent as given. It defaults to the event's stored content hash.
	ContentHash string
	Timeout     time.Duration
}

// MintFlow mints the attendance token of one event for the wallet's account.
type MintFlow struct {
	registry     Registry
	wallet       Wallet
	orchestrator *Orchestrator
	deployment   domain.Deployment
	guard        *IdempotencyGuard
	cfg          flowConfig
}

func NewMintFlow(registry Registry, wallet Wallet, orchestrator *Orchestrator, deployment domain.Deployment, opts ...FlowOption) *MintFlow {
	return &MintFlow{
		registry:     registry,
		wallet:       wallet,
		orchestrator: orchestrator,
		deployment:   deployment,
		guard:        NewIdempotencyGuard(registry),
		cfg:          newFlowConfig(opts),
	}
}

// Run checks the mint flag, the network and the event's eligibility, then
// reads the current minting fee and submits a payable mint.
func (f *MintFlow) Run(ctx context.Context, in MintInput) (*domain.Attempt, error) {
	code, err := domain.NormalizeEventCode(in.EventCode)
	if err != nil {
		return nil, err
	}
	contentHash := strings.TrimSpace(in.ContentHash)

	var (
		account common.Address
		tokenID *big.Int
	)
	plan := Plan{
		Kind:    domain.AttemptMint,
		Timeout: in.Timeout,
		Gates: []Gate{
			{Name: "wallet", Check: func(ctx context.Context) error {
				var err error
				account, err = f.wallet.CurrentAccount(ctx)
				return err
			}},
			{Name: "not_minted", Check: func(ctx context.Context) error {
				return f.guard.CheckNotMinted(ctx, code, account)
			}},
			{Name: "network", Check: func(ctx context.Context) error {
				return checkNetwork(ctx, f.wallet, f.deployment.ChainID)
			}},
			{Name: "eligibility", Check: func(ctx context.Context) error {
				rec, err := f.eligibleEvent(ctx, code)
				if err != nil {
					return err
				}
				tokenID = rec.TokenID
				if contentHash == "" {
					contentHash = rec.ContentHash
				}
				return nil
			}},
		},
		Build: func(ctx context.Context) (domain.CallSpec, error) {
			fee, err := f.registry.MintingFee(ctx)
			if err != nil {
				return domain.CallSpec{}, err
			}
			return f.registry.MintEventCall(code, contentHash, fee)
		},
	}

	attempt, err := f.orchestrator.Execute(ctx, plan)
	if attempt.State == domain.AttemptConfirmed {
		attempt.TokenID = tokenID
		f.cfg.refreshTotalMinted(ctx, f.registry)
	}
	return attempt, err
}

func (f *MintFlow) eligibleEvent(ctx context.Context, code string) (domain.EventRecord, error) {
	tokenID, err := f.registry.TokenIDByEventCode(ctx, code)
	if err != nil {
		return domain.EventRecord{}, err
	}
	if !domain.IsRegisteredTokenID(tokenID) {
		return domain.EventRecord{}, fmt.Errorf("%w: %q", domain.ErrEventNotRegistered, code)
	}
	rec, err := f.registry.EventData(ctx, tokenID)
	if err != nil {
		return domain.EventRecord{}, err
	}
	if !rec.IsActive {
		return domain.EventRecord{}, fmt.Errorf("%w: %q", domain.ErrEventInactive, code)
	}
	return rec, nil
}
