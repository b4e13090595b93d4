package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cimillas/attendance-nft/internal/domain"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Registry reads and encodes calls for the event NFT registry at a fixed address.
type Registry struct {
	client  *Client
	address common.Address
}

func NewRegistry(client *Client, address common.Address) *Registry {
	return &Registry{client: client, address: address}
}

func (r *Registry) Address() common.Address {
	return r.address
}

func (r *Registry) VerifyDeployed(ctx context.Context) (bool, error) {
	return r.client.VerifyDeployed(ctx, r.address)
}

func (r *Registry) Name(ctx context.Context) (string, error) {
	out, err := r.read(ctx, MethodName)
	if err != nil {
		return "", err
	}
	return result[string](MethodName, out, 0)
}

func (r *Registry) Owner(ctx context.Context) (common.Address, error) {
	out, err := r.read(ctx, MethodOwner)
	if err != nil {
		return common.Address{}, err
	}
	return result[common.Address](MethodOwner, out, 0)
}

func (r *Registry) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := r.read(ctx, MethodTotalSupply)
	if err != nil {
		return nil, err
	}
	return result[*big.Int](MethodTotalSupply, out, 0)
}

func (r *Registry) MintingFee(ctx context.Context) (*big.Int, error) {
	out, err := r.read(ctx, MethodMintingFee)
	if err != nil {
		return nil, err
	}
	return result[*big.Int](MethodMintingFee, out, 0)
}

// TokenIDByEventCode returns zero for unregistered codes.
func (r *Registry) TokenIDByEventCode(ctx context.Context, code string) (*big.Int, error) {
	out, err := r.read(ctx, MethodGetTokenIDByEventCode, code)
	if err != nil {
		return nil, err
	}
	return result[*big.Int](MethodGetTokenIDByEventCode, out, 0)
}

func (r *Registry) EventData(ctx context.Context, tokenID *big.Int) (domain.EventRecord, error) {
	out, err := r.read(ctx, MethodGetEventData, tokenID)
	if err != nil {
		return domain.EventRecord{}, err
	}

	d := &decoder{method: MethodGetEventData, out: out}
	rec := domain.EventRecord{
		EventCode:   field[string](d, 0),
		EventName:   field[string](d, 1),
		Location:    field[string](d, 2),
		HostName:    field[string](d, 4),
		ContentHash: field[string](d, 6),
		IsActive:    field[bool](d, 7),
		TokenID:     new(big.Int).Set(tokenID),
	}
	timestamp := field[*big.Int](d, 3)
	attendees := field[*big.Int](d, 5)
	if d.err != nil {
		return domain.EventRecord{}, d.err
	}
	rec.Timestamp = timestamp.Int64()
	rec.AttendeeCount = attendees.Uint64()
	return rec, nil
}

func (r *Registry) HasUserMinted(ctx context.Context, code string, account common.Address) (bool, error) {
	out, err := r.read(ctx, MethodHasUserMinted, code, account)
	if err != nil {
		return false, err
	}
	return result[bool](MethodHasUserMinted, out, 0)
}

// RegisterEventCall encodes registerEvent for rec. The content hash is sent as given.
func (r *Registry) RegisterEventCall(rec domain.EventRecord) (domain.CallSpec, error) {
	data, err := registryABI.Pack(MethodRegisterEvent,
		rec.EventCode,
		rec.EventName,
		rec.Location,
		big.NewInt(rec.Timestamp),
		rec.HostName,
		new(big.Int).SetUint64(rec.AttendeeCount),
		rec.ContentHash,
	)
	if err != nil {
		return domain.CallSpec{}, fmt.Errorf("pack %s: %w", MethodRegisterEvent, err)
	}
	return domain.CallSpec{
		Contract:  r.address,
		Method:    MethodRegisterEvent,
		EventCode: rec.EventCode,
		Data:      data,
		Value:     new(big.Int),
	}, nil
}

// MintEventCall encodes the payable mintEventNFT call with fee attached.
func (r *Registry) MintEventCall(code, contentHash string, fee *big.Int) (domain.CallSpec, error) {
	data, err := registryABI.Pack(MethodMintEventNFT, code, contentHash)
	if err != nil {
		return domain.CallSpec{}, fmt.Errorf("pack %s: %w", MethodMintEventNFT, err)
	}
	value := new(big.Int)
	if fee != nil {
		value.Set(fee)
	}
	return domain.CallSpec{
		Contract:  r.address,
		Method:    MethodMintEventNFT,
		EventCode: code,
		Data:      data,
		Value:     value,
	}, nil
}

func (r *Registry) read(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := registryABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := r.client.Call(ctx, method, ethereum.CallMsg{To: &r.address, Data: input})
	if err != nil {
		return nil, err
	}
	out, err := registryABI.Unpack(method, raw)
	if err != nil {
		return nil, &domain.ContractError{Method: method, Err: fmt.Errorf("decode: %w", err)}
	}
	return out, nil
}

// decoder keeps the first decode error across several outputs.
type decoder struct {
	method string
	out    []any
	err    error
}

func field[T any](d *decoder, i int) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := result[T](d.method, d.out, i)
	if err != nil {
		d.err = err
		return zero
	}
	return v
}

func result[T any](method string, out []any, i int) (T, error) {
	var zero T
	if i >= len(out) {
		return zero, &domain.ContractError{Method: method, Err: fmt.Errorf("decode: missing output %d", i)}
	}
	v, ok := out[i].(T)
	if !ok {
		return zero, &domain.ContractError{Method: method, Err: fmt.Errorf("decode: output %d has type %T", i, out[i])}
	}
	return v, nil
}
