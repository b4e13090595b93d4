package app

import (
	"context"
	"math/big"

	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// IdentityReader is the part of the registry IdentityVerifier needs.
type IdentityReader interface {
	Address() common.Address
	VerifyDeployed(ctx context.Context) (bool, error)
	Name(ctx context.Context) (string, error)
}

type OwnerReader interface {
	Owner(ctx context.Context) (common.Address, error)
}

// GuardReader exposes the two reads the idempotency guards are built on.
type GuardReader interface {
	TokenIDByEventCode(ctx context.Context, code string) (*big.Int, error)
	HasUserMinted(ctx context.Context, code string, account common.Address) (bool, error)
}

// Registry is the full typed surface of the registry contract. *ledger.Registry satisfies it.
type Registry interface {
	IdentityReader
	OwnerReader
	GuardReader
	TotalSupply(ctx context.Context) (*big.Int, error)
	MintingFee(ctx context.Context) (*big.Int, error)
	EventData(ctx context.Context, tokenID *big.Int) (domain.EventRecord, error)
	RegisterEventCall(rec domain.EventRecord) (domain.CallSpec, error)
	MintEventCall(code, contentHash string, fee *big.Int) (domain.CallSpec, error)
}

// Wallet is the signer capability. Implementations report domain.ErrUserRejected
// when the holder declines and domain.ErrWalletUnavailable when no account is connected.
type Wallet interface {
	CurrentAccount(ctx context.Context) (common.Address, error)
	NetworkID(ctx context.Context) (uint64, error)
	SignAndSend(ctx context.Context, spec domain.CallSpec) (domain.TxHandle, error)
}

type ReceiptReader interface {
	Receipt(ctx context.Context, hash common.Hash) (domain.Receipt, error)
}

// RevertExplainer replays a mined call to recover the contract's revert reason.
// An empty reason with a nil error means the replay did not revert.
type RevertExplainer interface {
	RevertReason(ctx context.Context, sender common.Address, spec domain.CallSpec, blockNumber uint64) (string, error)
}

type SubmissionJournal interface {
	RecordSubmission(ctx context.Context, sub domain.Submission) error
	UpdateSubmissionStatus(ctx context.Context, update domain.SubmissionUpdate) error
	GetSubmission(ctx context.Context, hash common.Hash) (domain.Submission, error)
}

// AggregateCache holds ledger-wide counters shown alongside events.
type AggregateCache interface {
	TotalMinted(ctx context.Context) (*big.Int, bool, error)
	SetTotalMinted(ctx context.Context, total *big.Int) error
}
