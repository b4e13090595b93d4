package app

import (
	"context"
	"fmt"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// IdentityVerifier confirms the configured address hosts the expected registry.
type IdentityVerifier struct {
	registry     IdentityReader
	expectedName string
}

func NewIdentityVerifier(registry IdentityReader, expectedName string) *IdentityVerifier {
	return &IdentityVerifier{registry: registry, expectedName: expectedName}
}

// Verify returns nil when the contract is deployed and names itself as expected.
// A failed name read is surfaced as is, never as ErrNotDeployed.
func (v *IdentityVerifier) Verify(ctx context.Context) error {
	deployed, err := v.registry.VerifyDeployed(ctx)
	if err != nil {
		return err
	}
	if !deployed {
		return fmt.Errorf("%w at %s", domain.ErrNotDeployed, v.registry.Address().Hex())
	}

	name, err := v.registry.Name(ctx)
	if err != nil {
		return err
	}
	if name != v.expectedName {
		return &domain.WrongContractError{
			Address:  v.registry.Address(),
			Expected: v.expectedName,
			Actual:   name,
		}
	}
	return nil
}

// PermissionGate checks owner-restricted actions. Ownership is read on every
// call since it can change between two actions.
type PermissionGate struct {
	registry OwnerReader
}

func NewPermissionGate(registry OwnerReader) *PermissionGate {
	return &PermissionGate{registry: registry}
}

func (g *PermissionGate) CheckOwner(ctx context.Context, candidate common.Address) error {
	owner, err := g.registry.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != candidate {
		return &domain.PermissionDeniedError{Candidate: candidate, Owner: owner}
	}
	return nil
}

// IdempotencyGuard reports whether a registration or mint has already happened.
// A nil result is a point-in-time read, not a reservation.
type IdempotencyGuard struct {
	registry GuardReader
}

func NewIdempotencyGuard(registry GuardReader) *IdempotencyGuard {
	return &IdempotencyGuard{registry: registry}
}

func (g *IdempotencyGuard) CheckEventFree(ctx context.Context, code string) error {
	tokenID, err := g.registry.TokenIDByEventCode(ctx, code)
	if err != nil {
		return err
	}
	if domain.IsRegisteredTokenID(tokenID) {
		return &domain.AlreadyRegisteredError{EventCode: code, TokenID: tokenID}
	}
	return nil
}

func (g *IdempotencyGuard) CheckNotMinted(ctx context.Context, code string, account common.Address) error {
	minted, err := g.registry.HasUserMinted(ctx, code, account)
	if err != nil {
		return err
	}
	if minted {
		return fmt.Errorf("%w: %s for event %q", domain.ErrAlreadyMinted, account.Hex(), code)
	}
	return nil
}

// checkNetwork refuses to operate on any chain other than the deployment's.
func checkNetwork(ctx context.Context, wallet Wallet, expected uint64) error {
	actual, err := wallet.NetworkID(ctx)
	if err != nil {
		return err
	}
	if actual != expected {
		return &domain.NetworkMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
