package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// fakeBackend answers registry calls by ABI-encoding canned outputs.
type fakeBackend struct {
	mu sync.Mutex

	code     []byte
	codeErrs []error

	outputs  map[string][]any
	callErrs map[string][]error
	lastArgs map[string][]any

	lastMsg   ethereum.CallMsg
	lastBlock *big.Int

	receipts   map[common.Hash]*types.Receipt
	receiptErr error

	calls map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		outputs:  map[string][]any{},
		callErrs: map[string][]error{},
		lastArgs: map[string][]any{},
		receipts: map[common.Hash]*types.Receipt{},
		calls:    map[string]int{},
	}
}

func (f *fakeBackend) CodeAt(_ context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getCode"]++
	if len(f.codeErrs) > 0 {
		err := f.codeErrs[0]
		f.codeErrs = f.codeErrs[1:]
		return nil, err
	}
	return f.code, nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMsg = msg
	f.lastBlock = block
	if len(msg.Data) < 4 {
		return nil, errors.New("short calldata")
	}
	method, err := registryABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	f.calls[method.Name]++
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	f.lastArgs[method.Name] = args

	if errs := f.callErrs[method.Name]; len(errs) > 0 {
		f.callErrs[method.Name] = errs[1:]
		return nil, errs[0]
	}
	values, ok := f.outputs[method.Name]
	if !ok {
		return []byte{}, nil
	}
	return method.Outputs.Pack(values...)
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getReceipt"]++
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	r, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// revertError mimics the JSON-RPC error geth returns for a reverted eth_call.
type revertError struct {
	data string
}

func (e revertError) Error() string          { return "execution reverted" }
func (e revertError) ErrorCode() int         { return codeExecutionReverted }
func (e revertError) ErrorData() interface{} { return e.data }

func newRevertError(reason string) revertError {
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	payload, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	if err != nil {
		panic(err)
	}
	selector := []byte{0x08, 0xc3, 0x79, 0xa0}
	return revertError{data: hexutil.Encode(append(selector, payload...))}
}

// rpcCodeError is a plain JSON-RPC error response.
type rpcCodeError struct {
	code int
	msg  string
}

func (e rpcCodeError) Error() string  { return e.msg }
func (e rpcCodeError) ErrorCode() int { return e.code }
