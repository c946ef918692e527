package txflow

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// revertReason replays the transaction as a call on the state of the parent
// block and decodes the Error(string) payload. Transactions mined earlier in
// the same block are not applied, so a revert that depends on them may yield
// a different reason or none. It returns "" when nothing can be recovered;
// the lookup never turns a confirmation into a failure.
func revertReason(ctx context.Context, backend Backend, p *PendingTransaction, receipt *types.Receipt) string {
	tx := p.tx
	if tx == nil {
		return ""
	}
	msg := ethereum.CallMsg{
		From:  p.From,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := backend.CallContract(ctx, msg, parentBlockOf(receipt))
	if err == nil {
		return ""
	}
	return reasonFromError(err)
}

// reasonFromError extracts a revert reason from a JSON-RPC error, preferring
// the ABI-encoded revert data over the node's message.
func reasonFromError(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := unpackRevertData(dataErr.ErrorData()); ok {
			return reason
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, "execution reverted: "); i >= 0 {
		return msg[i+len("execution reverted: "):]
	}
	return msg
}

func unpackRevertData(data any) (string, bool) {
	var raw []byte
	switch v := data.(type) {
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return "", false
		}
		raw = b
	case []byte:
		raw = v
	default:
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}
