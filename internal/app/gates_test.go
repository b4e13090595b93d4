package app

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/cimillas/attendance-nft/internal/domain"
)

func TestIdentityVerifier_Verify(t *testing.T) {
	t.Parallel()

	t.Run("verified", func(t *testing.T) {
		chain := newFakeChain()
		if err := NewIdentityVerifier(chain, testDeployment.Name).Verify(context.Background()); err != nil {
			t.Fatalf("expected verified, got %v", err)
		}
	})

	t.Run("not deployed skips name read", func(t *testing.T) {
		chain := newFakeChain()
		chain.deployed = false
		err := NewIdentityVerifier(chain, testDeployment.Name).Verify(context.Background())
		if !errors.Is(err, domain.ErrNotDeployed) {
			t.Fatalf("expected ErrNotDeployed, got %v", err)
		}
		if chain.called("name") != 0 {
			t.Fatalf("expected no name read after empty bytecode")
		}
	})

	t.Run("wrong contract carries both names", func(t *testing.T) {
		chain := newFakeChain()
		chain.name = "Other NFTs"
		err := NewIdentityVerifier(chain, "EthSafari Event NFTs V2").Verify(context.Background())
		var wrong *domain.WrongContractError
		if !errors.As(err, &wrong) {
			t.Fatalf("expected WrongContractError, got %v", err)
		}
		if wrong.Expected != "EthSafari Event NFTs V2" || wrong.Actual != "Other NFTs" {
			t.Fatalf("unexpected names: %+v", wrong)
		}
		if wrong.Address != registryAddress {
			t.Fatalf("expected address %s, got %s", registryAddress.Hex(), wrong.Address.Hex())
		}
	})

	t.Run("name comparison is case sensitive", func(t *testing.T) {
		chain := newFakeChain()
		chain.name = "ethsafari event nfts v2"
		err := NewIdentityVerifier(chain, "EthSafari Event NFTs V2").Verify(context.Background())
		if !errors.Is(err, domain.ErrWrongContract) {
			t.Fatalf("expected ErrWrongContract, got %v", err)
		}
	})

	t.Run("name read failure is surfaced", func(t *testing.T) {
		chain := newFakeChain()
		readErr := &domain.RPCError{Method: "name", Attempts: 3, Err: errors.New("connection refused")}
		chain.readErrs["name"] = readErr
		err := NewIdentityVerifier(chain, testDeployment.Name).Verify(context.Background())
		if !errors.Is(err, domain.ErrRPCTransport) {
			t.Fatalf("expected ErrRPCTransport, got %v", err)
		}
		if errors.Is(err, domain.ErrNotDeployed) {
			t.Fatalf("read failure must not read as not deployed")
		}
	})
}

func TestPermissionGate_CheckOwner(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	gate := NewPermissionGate(chain)
	ctx := context.Background()

	if err := gate.CheckOwner(ctx, ownerAccount); err != nil {
		t.Fatalf("expected owner to be allowed, got %v", err)
	}

	for i := 0; i < 2; i++ {
		err := gate.CheckOwner(ctx, otherAccount)
		var denied *domain.PermissionDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("expected PermissionDeniedError, got %v", err)
		}
		if denied.Owner != ownerAccount {
			t.Fatalf("expected owner %s, got %s", ownerAccount.Hex(), denied.Owner.Hex())
		}
	}
	if got := chain.called("owner"); got != 3 {
		t.Fatalf("expected owner read on every check, got %d", got)
	}

	chain.owner = otherAccount
	if err := gate.CheckOwner(ctx, otherAccount); err != nil {
		t.Fatalf("expected new owner to be allowed, got %v", err)
	}
}

func TestIdempotencyGuard_CheckEventFree(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	guard := NewIdempotencyGuard(chain)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := guard.CheckEventFree(ctx, "B56-A64"); err != nil {
			t.Fatalf("expected free on check %d, got %v", i, err)
		}
	}

	chain.register(domain.EventRecord{EventCode: "B56-A64", IsActive: true})
	for i := 0; i < 2; i++ {
		err := guard.CheckEventFree(ctx, "B56-A64")
		var already *domain.AlreadyRegisteredError
		if !errors.As(err, &already) {
			t.Fatalf("expected AlreadyRegisteredError, got %v", err)
		}
		if already.TokenID.Cmp(big.NewInt(1)) != 0 {
			t.Fatalf("expected token id 1, got %v", already.TokenID)
		}
	}
	if err := guard.CheckEventFree(ctx, "B57-A65"); err != nil {
		t.Fatalf("expected other code to be free, got %v", err)
	}
}

func TestIdempotencyGuard_CheckNotMinted(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	chain.minted[mintKey{"B56-A64", ownerAccount}] = true
	guard := NewIdempotencyGuard(chain)
	ctx := context.Background()

	if err := guard.CheckNotMinted(ctx, "B56-A64", ownerAccount); !errors.Is(err, domain.ErrAlreadyMinted) {
		t.Fatalf("expected ErrAlreadyMinted, got %v", err)
	}
	if err := guard.CheckNotMinted(ctx, "B56-A64", otherAccount); err != nil {
		t.Fatalf("expected other account to be free, got %v", err)
	}
	if err := guard.CheckNotMinted(ctx, "B57-A65", ownerAccount); err != nil {
		t.Fatalf("expected other event to be free, got %v", err)
	}
}

func TestIdempotencyGuard_ReadErrorIsNotFree(t *testing.T) {
	t.Parallel()

	chain := newFakeChain()
	chain.readErrs["getTokenIdByEventCode"] = &domain.RPCError{Method: "getTokenIdByEventCode", Attempts: 3, Err: errors.New("timeout")}
	err := NewIdempotencyGuard(chain).CheckEventFree(context.Background(), "B56-A64")
	if !errors.Is(err, domain.ErrRPCTransport) {
		t.Fatalf("expected ErrRPCTransport, got %v", err)
	}
}
