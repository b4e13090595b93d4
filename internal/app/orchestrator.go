package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cimillas/attendance-nft/internal/clock"
	"github.com/cimillas/attendance-nft/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cimillas/attendance-nft/internal/app")

const (
	defaultConfirmationTimeout = 2 * time.Minute
	defaultPollInterval        = 2 * time.Second
)

// Gate is one pre-submission check. A non-nil error ends the attempt before
// any transaction is built.
type Gate struct {
	Name  string
	Check func(ctx context.Context) error
}

// Plan is what a flow asks the orchestrator to run.
type Plan struct {
	Kind  domain.AttemptKind
	Gates []Gate
	// Build runs after every gate passed. Reads it performs still count as
	// verification, so its failure leaves the attempt Failed.
	Build func(ctx context.Context) (domain.CallSpec, error)
	// Timeout overrides the orchestrator's confirmation ceiling when positive.
	Timeout time.Duration
}

// Orchestrator drives one attempt through verification, submission and
// confirmation.
type Orchestrator struct {
	wallet   Wallet
	receipts  ReceiptReader
	journal   SubmissionJournal
	explainer RevertExplainer
	clock     clock.Clock
	logger    *log.Logger

	confirmationTimeout time.Duration
	pollInterval        time.Duration
}

type OrchestratorOption func(*Orchestrator)

func WithConfirmationTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.confirmationTimeout = d
		}
	}
}

func WithPollInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithJournal records every submitted transaction so it can be reconciled later.
func WithJournal(journal SubmissionJournal) OrchestratorOption {
	return func(o *Orchestrator) {
		o.journal = journal
	}
}

// WithRevertExplainer fills the reason of reverted attempts by replaying the call.
func WithRevertExplainer(explainer RevertExplainer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.explainer = explainer
	}
}

func WithOrchestratorLogger(logger *log.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewOrchestrator(wallet Wallet, receipts ReceiptReader, clk clock.Clock, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		wallet:              wallet,
		receipts:            receipts,
		clock:               clk,
		logger:              log.Default(),
		confirmationTimeout: defaultConfirmationTimeout,
		pollInterval:        defaultPollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs plan as a fresh attempt. The returned attempt is never nil and
// records the state reached; the error is the cause of any non-confirmed end.
func (o *Orchestrator) Execute(ctx context.Context, plan Plan) (*domain.Attempt, error) {
	attempt := domain.NewAttempt(newUUID(), plan.Kind, o.clock.Now())
	ctx, span := tracer.Start(ctx, "orchestrator.execute", trace.WithAttributes(
		attribute.String("attempt.id", attempt.ID),
		attribute.String("attempt.kind", string(plan.Kind)),
	))
	defer span.End()

	err := o.execute(ctx, attempt, plan)
	span.SetAttributes(attribute.String("attempt.state", string(attempt.State)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return attempt, err
}

func (o *Orchestrator) execute(ctx context.Context, attempt *domain.Attempt, plan Plan) error {
	if err := attempt.Transition(domain.AttemptVerifying); err != nil {
		return err
	}
	for _, gate := range plan.Gates {
		if err := runGate(ctx, gate); err != nil {
			return failAttempt(attempt, gateFailureState(err), err)
		}
	}

	spec, err := plan.Build(ctx)
	if err != nil {
		return failAttempt(attempt, gateFailureState(err), err)
	}
	if err := attempt.Transition(domain.AttemptReady); err != nil {
		return err
	}

	if err := attempt.Transition(domain.AttemptSubmitting); err != nil {
		return err
	}
	handle, err := o.Submit(ctx, spec)
	if err != nil {
		if errors.Is(err, domain.ErrUserRejected) {
			return failAttempt(attempt, domain.AttemptRejectedByWallet, err)
		}
		return failAttempt(attempt, domain.AttemptSubmissionFailed, err)
	}
	attempt.TxHash = handle.Hash
	if err := attempt.Transition(domain.AttemptPending); err != nil {
		return err
	}
	o.record(ctx, attempt, spec, handle)

	timeout := o.confirmationTimeout
	if plan.Timeout > 0 {
		timeout = plan.Timeout
	}
	receipt, err := o.AwaitConfirmation(ctx, handle, timeout)
	switch {
	case err == nil:
		o.update(ctx, domain.SubmissionUpdate{TxHash: handle.Hash, Status: domain.SubmissionConfirmed, BlockNumber: receipt.BlockNumber})
		return attempt.Transition(domain.AttemptConfirmed)
	case errors.Is(err, domain.ErrReverted):
		o.explainRevert(ctx, err, handle, spec)
		o.update(ctx, domain.SubmissionUpdate{TxHash: handle.Hash, Status: domain.SubmissionReverted, BlockNumber: receipt.BlockNumber, LastError: err.Error()})
		return failAttempt(attempt, domain.AttemptReverted, err)
	case errors.Is(err, domain.ErrTimeout):
		o.update(ctx, domain.SubmissionUpdate{TxHash: handle.Hash, Status: domain.SubmissionTimedOut, LastError: err.Error()})
		return failAttempt(attempt, domain.AttemptTimedOut, err)
	default:
		// The caller stopped waiting; the transaction is still outstanding.
		attempt.LastError = err
		return err
	}
}

func (o *Orchestrator) explainRevert(ctx context.Context, err error, handle domain.TxHandle, spec domain.CallSpec) {
	var reverted *domain.RevertedError
	if o.explainer == nil || !errors.As(err, &reverted) || reverted.Reason != "" {
		return
	}
	reason, explainErr := o.explainer.RevertReason(ctx, handle.From, spec, reverted.BlockNumber)
	if explainErr != nil {
		o.logger.Printf("WARN: revert reason for %s unavailable: %v", handle.Hash.Hex(), explainErr)
		return
	}
	reverted.Reason = reason
}

func runGate(ctx context.Context, gate Gate) error {
	ctx, span := tracer.Start(ctx, "gate."+gate.Name)
	defer span.End()
	err := gate.Check(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func failAttempt(attempt *domain.Attempt, state domain.AttemptState, cause error) error {
	if err := attempt.Fail(state, cause); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func gateFailureState(err error) domain.AttemptState {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return domain.AttemptDenied
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAlreadyMinted):
		return domain.AttemptAlreadyDone
	default:
		return domain.AttemptFailed
	}
}

// Submit hands spec to the wallet. A declined request keeps ErrUserRejected
// and ErrWalletUnavailable visible; any other failure is a SubmissionError.
func (o *Orchestrator) Submit(ctx context.Context, spec domain.CallSpec) (domain.TxHandle, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.submit", trace.WithAttributes(
		attribute.String("contract.method", spec.Method),
		attribute.String("event.code", spec.EventCode),
	))
	defer span.End()

	handle, err := o.wallet.SignAndSend(ctx, spec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrUserRejected) || errors.Is(err, domain.ErrWalletUnavailable) {
			return domain.TxHandle{}, err
		}
		return domain.TxHandle{}, &domain.SubmissionError{Method: spec.Method, Err: err}
	}
	span.SetAttributes(attribute.String("tx.hash", handle.Hash.Hex()))
	return handle, nil
}

// AwaitConfirmation polls for the receipt of handle until it is mined or
// timeout elapses. Read failures while waiting are logged and polling continues.
func (o *Orchestrator) AwaitConfirmation(ctx context.Context, handle domain.TxHandle, timeout time.Duration) (domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.await_confirmation", trace.WithAttributes(
		attribute.String("tx.hash", handle.Hash.Hex()),
	))
	defer span.End()

	if timeout <= 0 {
		timeout = o.confirmationTimeout
	}
	start := o.clock.Now()
	// The ceiling also bounds a single receipt read that never returns.
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timedOut := func() (domain.Receipt, error) {
		if err := ctx.Err(); err != nil {
			return domain.Receipt{}, err
		}
		err := &domain.TimeoutError{TxHash: handle.Hash, Waited: o.clock.Now().Sub(start)}
		span.SetStatus(codes.Error, err.Error())
		return domain.Receipt{}, err
	}
	for {
		receipt, err := o.receipts.Receipt(waitCtx, handle.Hash)
		switch {
		case err == nil && receipt.Status == domain.ReceiptSuccess:
			span.SetAttributes(attribute.Int64("tx.block", int64(receipt.BlockNumber)))
			return receipt, nil
		case err == nil:
			reverted := &domain.RevertedError{TxHash: handle.Hash, BlockNumber: receipt.BlockNumber}
			span.SetStatus(codes.Error, reverted.Error())
			return receipt, reverted
		case waitCtx.Err() != nil:
			return timedOut()
		case errors.Is(err, domain.ErrReceiptNotFound):
		default:
			o.logger.Printf("WARN: receipt read for %s failed: %v", handle.Hash.Hex(), err)
		}

		if o.clock.Now().Sub(start) >= timeout {
			return timedOut()
		}
		select {
		case <-waitCtx.Done():
			return timedOut()
		case <-o.clock.After(o.pollInterval):
		}
	}
}

func (o *Orchestrator) record(ctx context.Context, attempt *domain.Attempt, spec domain.CallSpec, handle domain.TxHandle) {
	if o.journal == nil {
		return
	}
	now := o.clock.Now()
	err := o.journal.RecordSubmission(ctx, domain.Submission{
		ID:          newUUID(),
		AttemptID:   attempt.ID,
		Kind:        attempt.Kind,
		TxHash:      handle.Hash,
		From:        handle.From,
		Contract:    spec.Contract,
		Method:      spec.Method,
		EventCode:   spec.EventCode,
		Value:       spec.Value,
		Status:      domain.SubmissionPending,
		SubmittedAt: handle.SubmittedAt,
		UpdatedAt:   now,
	})
	if err != nil {
		o.logger.Printf("WARN: journal record %s failed: %v", handle.Hash.Hex(), err)
	}
}

func (o *Orchestrator) update(ctx context.Context, update domain.SubmissionUpdate) {
	if o.journal == nil {
		return
	}
	update.UpdatedAt = o.clock.Now()
	if err := o.journal.UpdateSubmissionStatus(ctx, update); err != nil {
		o.logger.Printf("WARN: journal update %s -> %s failed: %v", update.TxHash.Hex(), update.Status, err)
	}
}

