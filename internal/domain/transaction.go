package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CallSpec describes a state-changing contract call before it is signed.
type CallSpec struct {
	Contract  common.Address
	Method    string
	EventCode string
	Data      []byte
	Value     *big.Int
}

// TxHandle identifies a transaction accepted by the wallet.
type TxHandle struct {
	Hash        common.Hash
	From        common.Address
	Nonce       uint64
	SubmittedAt time.Time
}

type ReceiptStatus string

const (
	ReceiptSuccess  ReceiptStatus = "success"
	ReceiptReverted ReceiptStatus = "reverted"
)

// Receipt is the ledger's verdict on a mined transaction.
type Receipt struct {
	TxHash      common.Hash
	Status      ReceiptStatus
	BlockNumber uint64
	GasUsed     uint64
}

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionConfirmed SubmissionStatus = "confirmed"
	SubmissionReverted  SubmissionStatus = "reverted"
	SubmissionTimedOut  SubmissionStatus = "timed_out"
)

// Terminal reports whether the ledger outcome is known.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionConfirmed || s == SubmissionReverted
}

// Submission is the journal entry for a transaction handed to the ledger.
// It outlives the attempt that produced it so a timed-out wait can be re-checked.
type Submission struct {
	ID          string
	AttemptID   string
	Kind        AttemptKind
	TxHash      common.Hash
	From        common.Address
	Contract    common.Address
	Method      string
	EventCode   string
	Value       *big.Int
	Status      SubmissionStatus
	LastError   string
	BlockNumber uint64
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// SubmissionUpdate records a change in what is known about a submission.
type SubmissionUpdate struct {
	TxHash      common.Hash
	Status      SubmissionStatus
	BlockNumber uint64
	LastError   string
	UpdatedAt   time.Time
}
