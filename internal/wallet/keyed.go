// Package wallet implements the signing capability the orchestration layer
// submits through. The keyed wallet holds one secp256k1 key and signs EIP-1559
// transactions for the connected network.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/cimillas/attendance-nft/internal/clock"
	"github.com/cimillas/attendance-nft/internal/domain"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend is the node surface needed to sign and broadcast. *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type Keyed struct {
	backend  Backend
	key      *ecdsa.PrivateKey
	account  common.Address
	maxValue *big.Int
	clock    clock.Clock
}

type Option func(*Keyed)

// WithSpendingLimit makes the wallet refuse calls whose value exceeds limit,
// the same way a user would decline an unexpectedly expensive request.
func WithSpendingLimit(limit *big.Int) Option {
	return func(w *Keyed) {
		if limit != nil {
			w.maxValue = new(big.Int).Set(limit)
		}
	}
}

func WithClock(clk clock.Clock) Option {
	return func(w *Keyed) {
		if clk != nil {
			w.clock = clk
		}
	}
}

// NewKeyed builds a wallet for the hex-encoded private key. An empty key yields
// a wallet with no account; every operation then reports ErrWalletUnavailable.
func NewKeyed(backend Backend, hexKey string, opts ...Option) (*Keyed, error) {
	w := &Keyed{backend: backend, clock: clock.NewSystem()}
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey != "" {
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			return nil, fmt.Errorf("parse signer key: %w", err)
		}
		w.key = key
		w.account = crypto.PubkeyToAddress(key.PublicKey)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// CurrentAccount returns the signing address.
func (w *Keyed) CurrentAccount(_ context.Context) (common.Address, error) {
	if w.key == nil {
		return common.Address{}, domain.ErrWalletUnavailable
	}
	return w.account, nil
}

// NetworkID returns the chain id of the node the wallet broadcasts to.
func (w *Keyed) NetworkID(ctx context.Context) (uint64, error) {
	id, err := w.backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: chain id: %v", domain.ErrWalletUnavailable, err)
	}
	return id.Uint64(), nil
}

// SignAndSend signs spec as a dynamic-fee transaction and broadcasts it.
func (w *Keyed) SignAndSend(ctx context.Context, spec domain.CallSpec) (domain.TxHandle, error) {
	if w.key == nil {
		return domain.TxHandle{}, domain.ErrWalletUnavailable
	}
	value := new(big.Int)
	if spec.Value != nil {
		value.Set(spec.Value)
	}
	if w.maxValue != nil && value.Cmp(w.maxValue) > 0 {
		return domain.TxHandle{}, fmt.Errorf("%w: value %s exceeds spending limit %s", domain.ErrUserRejected, value, w.maxValue)
	}

	chainID, err := w.backend.ChainID(ctx)
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("%w: chain id: %v", domain.ErrWalletUnavailable, err)
	}
	nonce, err := w.backend.PendingNonceAt(ctx, w.account)
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("pending nonce: %w", err)
	}
	tip, err := w.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("suggest tip: %w", err)
	}
	head, err := w.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("latest header: %w", err)
	}
	if head.BaseFee == nil {
		return domain.TxHandle{}, errors.New("latest header has no base fee")
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	to := spec.Contract
	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:      w.account,
		To:        &to,
		GasFeeCap: feeCap,
		GasTipCap: tip,
		Value:     value,
		Data:      spec.Data,
	})
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      spec.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("sign: %w", err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return domain.TxHandle{}, fmt.Errorf("send: %w", err)
	}

	return domain.TxHandle{
		Hash:        signed.Hash(),
		From:        w.account,
		Nonce:       nonce,
		SubmittedAt: w.clock.Now(),
	}, nil
}
