package ledger

import (
	"context"
	"errors"
	"log"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cimillas/attendance-nft/internal/domain"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	defaultMaxAttempts uint = 3
	defaultRetryDelay       = 1000 * time.Millisecond
	defaultCallTimeout      = 60 * time.Second
)

// Backend is the JSON-RPC surface the read client needs. *ethclient.Client satisfies it.
type Backend interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Client executes point-in-time reads against the ledger head. Transient
// transport failures are retried with a fixed delay; reverts surface at once.
type Client struct {
	backend     Backend
	maxAttempts uint
	retryDelay  time.Duration
	callTimeout time.Duration
	logger      *log.Logger
}

type Option func(*Client)

// WithRetry overrides the attempt count and the fixed delay between attempts.
func WithRetry(maxAttempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithCallTimeout bounds each individual attempt.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:     backend,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		callTimeout: defaultCallTimeout,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Code returns the executable code at addr.
func (c *Client) Code(ctx context.Context, addr common.Address) ([]byte, error) {
	return retryRead(ctx, c, "getCode", func(ctx context.Context) ([]byte, error) {
		return c.backend.CodeAt(ctx, addr, nil)
	})
}

// VerifyDeployed reports whether addr holds non-empty code.
func (c *Client) VerifyDeployed(ctx context.Context, addr common.Address) (bool, error) {
	code, err := c.Code(ctx, addr)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// Call runs a read-only contract call and returns the raw return data.
func (c *Client) Call(ctx context.Context, method string, msg ethereum.CallMsg) ([]byte, error) {
	return retryRead(ctx, c, method, func(ctx context.Context) ([]byte, error) {
		return c.backend.CallContract(ctx, msg, nil)
	})
}

// Receipt returns the mined outcome of hash, or domain.ErrReceiptNotFound
// while the transaction is still outstanding.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (domain.Receipt, error) {
	receipt, err := retryRead(ctx, c, "getReceipt", func(ctx context.Context) (*types.Receipt, error) {
		r, err := c.backend.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) || (err == nil && r == nil) {
			return nil, domain.ErrReceiptNotFound
		}
		return r, err
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	out := domain.Receipt{
		TxHash:  hash,
		Status:  domain.ReceiptReverted,
		GasUsed: receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		out.Status = domain.ReceiptSuccess
	}
	return out, nil
}

// RevertReason replays a mined call from sender against the state at
// blockNumber and returns the reason the ledger gives for rejecting it. An
// empty reason with a nil error means the replay did not revert or the node
// gave no reason.
func (c *Client) RevertReason(ctx context.Context, sender common.Address, spec domain.CallSpec, blockNumber uint64) (string, error) {
	to := spec.Contract
	msg := ethereum.CallMsg{From: sender, To: &to, Value: spec.Value, Data: spec.Data}
	block := new(big.Int).SetUint64(blockNumber)

	_, err := retryRead(ctx, c, spec.Method, func(ctx context.Context) ([]byte, error) {
		return c.backend.CallContract(ctx, msg, block)
	})
	if err == nil {
		return "", nil
	}
	var callErr *domain.ContractError
	if errors.As(err, &callErr) && callErr.Reverted {
		return callErr.Reason, nil
	}
	return "", err
}

func retryRead[T any](ctx context.Context, c *Client, method string, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := 0
	var (
		reverted bool
		reason   string
	)

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()

		v, err := op(callCtx)
		if err == nil {
			return v, nil
		}
		if r, ok := revertReason(err); ok {
			reverted, reason = true, r
			return v, backoff.Permanent(err)
		}
		if !isTransient(ctx, err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(c.retryDelay)),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Printf("WARN: rpc %s attempt %d failed, retrying in %s: %v", method, attempts, next, err)
		}),
	)
	if err != nil {
		var zero T
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return zero, domain.ErrReceiptNotFound
		}
		if reverted {
			return zero, &domain.ContractError{Method: method, Reverted: true, Reason: reason, Err: err}
		}
		return zero, &domain.RPCError{Method: method, Attempts: attempts, Err: err}
	}
	return res, nil
}
