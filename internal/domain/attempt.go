package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type AttemptKind string

const (
	AttemptCreateEvent AttemptKind = "create_event"
	AttemptMint        AttemptKind = "mint"
)

type AttemptState string

const (
	AttemptIdle             AttemptState = "idle"
	AttemptVerifying        AttemptState = "verifying"
	AttemptDenied           AttemptState = "denied"
	AttemptAlreadyDone      AttemptState = "already_done"
	AttemptFailed           AttemptState = "failed"
	AttemptReady            AttemptState = "ready"
	AttemptSubmitting       AttemptState = "submitting"
	AttemptRejectedByWallet AttemptState = "rejected_by_wallet"
	AttemptSubmissionFailed AttemptState = "submission_failed"
	AttemptPending          AttemptState = "pending"
	AttemptConfirmed        AttemptState = "confirmed"
	AttemptReverted         AttemptState = "reverted"
	AttemptTimedOut         AttemptState = "timed_out"
)

var attemptTransitions = map[AttemptState][]AttemptState{
	AttemptIdle:       {AttemptVerifying},
	AttemptVerifying:  {AttemptDenied, AttemptAlreadyDone, AttemptFailed, AttemptReady},
	AttemptReady:      {AttemptSubmitting, AttemptFailed},
	AttemptSubmitting: {AttemptRejectedByWallet, AttemptSubmissionFailed, AttemptPending},
	AttemptPending:    {AttemptConfirmed, AttemptReverted, AttemptTimedOut},
}

// Terminal reports whether no further transition is possible.
func (s AttemptState) Terminal() bool {
	_, ok := attemptTransitions[s]
	return !ok
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to AttemptState) bool {
	for _, next := range attemptTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Attempt is one run of a flow against the ledger. It is never persisted and
// belongs to the call that created it.
type Attempt struct {
	ID        string
	Kind      AttemptKind
	State     AttemptState
	Trail     []AttemptState
	TxHash    common.Hash
	TokenID   *big.Int
	LastError error
	StartedAt time.Time
}

// NewAttempt returns an attempt in the Idle state.
func NewAttempt(id string, kind AttemptKind, now time.Time) *Attempt {
	return &Attempt{
		ID:        id,
		Kind:      kind,
		State:     AttemptIdle,
		Trail:     []AttemptState{AttemptIdle},
		StartedAt: now,
	}
}

// Transition moves the attempt to the next state.
func (a *Attempt) Transition(to AttemptState) error {
	if !CanTransition(a.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.State, to)
	}
	a.State = to
	a.Trail = append(a.Trail, to)
	return nil
}

// Fail moves the attempt to a terminal failure state and records the cause.
func (a *Attempt) Fail(to AttemptState, cause error) error {
	if err := a.Transition(to); err != nil {
		return err
	}
	a.LastError = cause
	return nil
}

// Submitted reports whether a transaction hash was obtained.
func (a *Attempt) Submitted() bool {
	return a.TxHash != (common.Hash{})
}

// Visited reports whether the attempt passed through the given state.
func (a *Attempt) Visited(state AttemptState) bool {
	for _, s := range a.Trail {
		if s == state {
			return true
		}
	}
	return false
}
