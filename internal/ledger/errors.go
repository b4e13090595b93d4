package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/cimillas/attendance-nft/internal/domain"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	codeExecutionReverted = 3
	codeLimitExceeded     = -32005
	codeInternalError     = -32603
)

// revertReason reports whether err is a contract revert and extracts the
// Error(string) payload when the node returned one.
func revertReason(err error) (string, bool) {
	var rpcErr rpc.Error
	reverted := errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeExecutionReverted
	if !reverted && !strings.Contains(err.Error(), "execution reverted") {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if raw, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(raw); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason, true
				}
			}
		}
	}
	return "", true
}

// isTransient separates network trouble from answers the node will repeat.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ethereum.NotFound) || errors.Is(err, domain.ErrReceiptNotFound) {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeLimitExceeded, codeInternalError:
			return true
		default:
			return false
		}
	}
	return true
}
