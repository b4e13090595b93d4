package domain

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNotDeployed        = errors.New("contract not deployed")
	ErrWrongContract      = errors.New("wrong contract")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAlreadyRegistered  = errors.New("event already registered")
	ErrAlreadyMinted      = errors.New("already minted")
	ErrNetworkMismatch    = errors.New("network mismatch")
	ErrWalletUnavailable  = errors.New("wallet unavailable")
	ErrUserRejected       = errors.New("user rejected")
	ErrRPCTransport       = errors.New("rpc transport error")
	ErrContractCall       = errors.New("contract call failed")
	ErrSubmission         = errors.New("submission failed")
	ErrReverted           = errors.New("transaction reverted")
	ErrTimeout            = errors.New("confirmation timeout")
	ErrEventNotRegistered = errors.New("event not registered")
	ErrEventInactive      = errors.New("event inactive")
	ErrInvalidEventCode   = errors.New("event code required")
	ErrEventNameRequired  = errors.New("event name required")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrReceiptNotFound    = errors.New("receipt not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidTransition  = errors.New("invalid attempt transition")
)

// WrongContractError carries both names when the deployed contract identifies
// itself differently than configured.
type WrongContractError struct {
	Address  common.Address
	Expected string
	Actual   string
}

func (e *WrongContractError) Error() string {
	return fmt.Sprintf("wrong contract at %s: expected %q, got %q", e.Address.Hex(), e.Expected, e.Actual)
}

func (e *WrongContractError) Is(target error) bool { return target == ErrWrongContract }

// PermissionDeniedError names the current owner of the registry.
type PermissionDeniedError struct {
	Candidate common.Address
	Owner     common.Address
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s is not the contract owner %s", e.Candidate.Hex(), e.Owner.Hex())
}

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

type AlreadyRegisteredError struct {
	EventCode string
	TokenID   *big.Int
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("event %q already registered with token id %s", e.EventCode, e.TokenID)
}

func (e *AlreadyRegisteredError) Is(target error) bool { return target == ErrAlreadyRegistered }

type NetworkMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *NetworkMismatchError) Error() string {
	return fmt.Sprintf("network mismatch: expected chain id %d, connected to %d", e.Expected, e.Actual)
}

func (e *NetworkMismatchError) Is(target error) bool { return target == ErrNetworkMismatch }

// RPCError is a failed ledger read, surfaced after the transport's retry policy.
type RPCError struct {
	Method   string
	Attempts int
	Err      error
}

func (e *RPCError) Error() string {
	msg := fmt.Sprintf("rpc %s failed after %d attempt(s)", e.Method, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RPCError) Unwrap() error { return e.Err }

func (e *RPCError) Is(target error) bool { return target == ErrRPCTransport }

// ContractError is an answer the node will repeat: a read that reverted or
// return data that does not decode against the registry ABI.
type ContractError struct {
	Method   string
	Reverted bool
	Reason   string
	Err      error
}

func (e *ContractError) Error() string {
	switch {
	case e.Reverted && e.Reason != "":
		return fmt.Sprintf("contract call %s reverted: %s", e.Method, e.Reason)
	case e.Reverted:
		return fmt.Sprintf("contract call %s reverted", e.Method)
	default:
		return fmt.Sprintf("contract call %s: %v", e.Method, e.Err)
	}
}

func (e *ContractError) Unwrap() error { return e.Err }

func (e *ContractError) Is(target error) bool { return target == ErrContractCall }

// SubmissionError wraps a wallet-level failure to hand a call to the ledger.
type SubmissionError struct {
	Method string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s: %v", e.Method, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }

type RevertedError struct {
	TxHash      common.Hash
	BlockNumber uint64
	Reason      string
}

func (e *RevertedError) Error() string {
	msg := fmt.Sprintf("transaction %s reverted in block %d", e.TxHash.Hex(), e.BlockNumber)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *RevertedError) Is(target error) bool { return target == ErrReverted }

// TimeoutError means confirmation was not observed in time. The transaction
// may still land.
type TimeoutError struct {
	TxHash common.Hash
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed within %s", e.TxHash.Hex(), e.Waited)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
