package app

import (
	"context"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

type flowConfig struct {
	aggregates AggregateCache
	logger     *log.Logger
}

type FlowOption func(*flowConfig)

// WithAggregateCache makes confirmed flows refresh the cached total minted.
func WithAggregateCache(cache AggregateCache) FlowOption {
	return func(c *flowConfig) {
		c.aggregates = cache
	}
}

func WithFlowLogger(logger *log.Logger) FlowOption {
	return func(c *flowConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newFlowConfig(opts []FlowOption) flowConfig {
	cfg := flowConfig{logger: log.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// refreshTotalMinted re-reads totalSupply after a confirmation. Failures only log.
func (c flowConfig) refreshTotalMinted(ctx context.Context, registry Registry) {
	if c.aggregates == nil {
		return
	}
	total, err := registry.TotalSupply(ctx)
	if err != nil {
		c.logger.Printf("WARN: refresh total minted: %v", err)
		return
	}
	if err := c.aggregates.SetTotalMinted(ctx, total); err != nil {
		c.logger.Printf("WARN: cache total minted: %v", err)
	}
}

type CreateEventInput struct {
	EventCode     string
	EventName     string
	Location      string
	Timestamp     int64
	HostName      string
	AttendeeCount uint64
	ContentHash   string
	// Timeout overrides the confirmation ceiling for this run when positive.
	Timeout time.Duration
}

// CreateEventFlow registers a new event as the contract owner.
type CreateEventFlow struct {
	registry     Registry
	wallet       Wallet
	orchestrator *Orchestrator
	deployment   domain.Deployment
	identity     *IdentityVerifier
	permission   *PermissionGate
	guard        *IdempotencyGuard
	cfg          flowConfig
}

func NewCreateEventFlow(registry Registry, wallet Wallet, orchestrator *Orchestrator, deployment domain.Deployment, opts ...FlowOption) *CreateEventFlow {
	return &CreateEventFlow{
		registry:     registry,
		wallet:       wallet,
		orchestrator: orchestrator,
		deployment:   deployment,
		identity:     NewIdentityVerifier(registry, deployment.Name),
		permission:   NewPermissionGate(registry),
		guard:        NewIdempotencyGuard(registry),
		cfg:          newFlowConfig(opts),
	}
}

// Run validates in, then verifies identity, registration state and ownership
// in that order before asking the wallet to sign. A nil attempt means the
// input was rejected before any ledger access.
func (f *CreateEventFlow) Run(ctx context.Context, in CreateEventInput) (*domain.Attempt, error) {
	code, err := domain.NormalizeEventCode(in.EventCode)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.EventName)
	if name == "" {
		return nil, domain.ErrEventNameRequired
	}
	rec := domain.EventRecord{
		EventCode:     code,
		EventName:     name,
		Location:      strings.TrimSpace(in.Location),
		Timestamp:     in.Timestamp,
		HostName:      strings.TrimSpace(in.HostName),
		AttendeeCount: in.AttendeeCount,
		ContentHash:   domain.NormalizeContentHash(in.ContentHash),
	}

	var account common.Address
	plan := Plan{
		Kind:    domain.AttemptCreateEvent,
		Timeout: in.Timeout,
		Gates: []Gate{
			{Name: "wallet", Check: func(ctx context.Context) error {
				var err error
				account, err = f.wallet.CurrentAccount(ctx)
				return err
			}},
			{Name: "network", Check: func(ctx context.Context) error {
				return checkNetwork(ctx, f.wallet, f.deployment.ChainID)
			}},
			{Name: "identity", Check: f.identity.Verify},
			{Name: "event_free", Check: func(ctx context.Context) error {
				return f.guard.CheckEventFree(ctx, code)
			}},
			{Name: "owner", Check: func(ctx context.Context) error {
				return f.permission.CheckOwner(ctx, account)
			}},
		},
		Build: func(context.Context) (domain.CallSpec, error) {
			return f.registry.RegisterEventCall(rec)
		},
	}

	attempt, err := f.orchestrator.Execute(ctx, plan)
	if attempt.State == domain.AttemptConfirmed {
		f.afterConfirmed(ctx, attempt, code)
	}
	return attempt, err
}

func (f *CreateEventFlow) afterConfirmed(ctx context.Context, attempt *domain.Attempt, code string) {
	tokenID, err := f.registry.TokenIDByEventCode(ctx, code)
	if err != nil {
		f.cfg.logger.Printf("WARN: read token id for %q after registration: %v", code, err)
	} else if domain.IsRegisteredTokenID(tokenID) {
		attempt.TokenID = new(big.Int).Set(tokenID)
	}
	f.cfg.refreshTotalMinted(ctx, f.registry)
}
