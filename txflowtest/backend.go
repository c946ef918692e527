// Package txflowtest provides an in-memory network backend for tests.
package txflowtest

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TestKey is the first Anvil/Hardhat development account key.
const TestKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// DefaultCode is installed at addresses created by deployments.
var DefaultCode = []byte{0x60, 0x80, 0x60, 0x40, 0x52}

// Backend is a recording stub of an EVM JSON-RPC endpoint. Transactions are
// "mined" when sent unless Hold is set. All methods are safe for concurrent use.
type Backend struct {
	// Hold keeps every transaction pending forever.
	Hold bool
	// PendingPolls is how many receipt lookups answer not-found before a
	// sent transaction's receipt becomes visible.
	PendingPolls int
	// Revert marks mined transactions as reverted with RevertReason.
	Revert       bool
	RevertReason string
	// SendErr is returned by SendTransaction when set. Use NewRPCError for a
	// node rejection.
	SendErr error
	// CodeErr is returned by PendingCodeAt when set.
	CodeErr error
	// ReceiptErr is returned by TransactionReceipt when set.
	ReceiptErr error
	// NextContractAddress overrides the CREATE address of the next deployment.
	NextContractAddress common.Address
	// OmitContractAddress leaves creation receipts without an address.
	OmitContractAddress bool
	// GasPrice is the suggested legacy gas price.
	GasPrice *big.Int

	mu       sync.Mutex
	calls    map[string]int
	code     map[common.Address][]byte
	nonces   map[common.Address]uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	polls    map[common.Hash]int
	block    uint64
	replays  []*big.Int
}

// NewBackend returns an empty stub backend.
func NewBackend() *Backend {
	return &Backend{
		GasPrice: big.NewInt(1_000_000_000),
		calls:    make(map[string]int),
		code:     make(map[common.Address][]byte),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		polls:    make(map[common.Hash]int),
		block:    1,
	}
}

// SetCode installs contract code at addr.
func (b *Backend) SetCode(addr common.Address, code []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.code[addr] = append([]byte(nil), code...)
}

// Calls returns the total number of backend invocations.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// CallCount returns how many times method was invoked.
func (b *Backend) CallCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// Sent returns the transactions accepted by SendTransaction.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

func (b *Backend) record(method string) {
	b.mu.Lock()
	b.calls[method]++
	b.mu.Unlock()
}

// CallBlocks returns the block numbers passed to CallContract, nil meaning
// latest.
func (b *Backend) CallBlocks() []*big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*big.Int(nil), b.replays...)
}

// CodeAt implements bind.ContractCaller.
func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	b.record("CodeAt")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code[contract], nil
}

// CallContract implements bind.ContractCaller. With Revert set it answers
// like a node replaying a reverted call.
func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.record("CallContract")
	b.mu.Lock()
	b.replays = append(b.replays, blockNumber)
	b.mu.Unlock()
	if b.Revert {
		return nil, NewRevertError(b.RevertReason)
	}
	return nil, nil
}

// HeaderByNumber implements bind.ContractTransactor. Headers carry no base
// fee, so bind builds legacy transactions.
func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.record("HeaderByNumber")
	b.mu.Lock()
	defer b.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(b.block)}, nil
}

// PendingCodeAt implements bind.ContractTransactor.
func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	b.record("PendingCodeAt")
	if b.CodeErr != nil {
		return nil, b.CodeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code[account], nil
}

// PendingNonceAt implements bind.ContractTransactor.
func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.record("PendingNonceAt")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[account], nil
}

// SuggestGasPrice implements bind.ContractTransactor.
func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	b.record("SuggestGasPrice")
	return new(big.Int).Set(b.GasPrice), nil
}

// SuggestGasTipCap implements bind.ContractTransactor.
func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	b.record("SuggestGasTipCap")
	return big.NewInt(1), nil
}

// EstimateGas implements bind.ContractTransactor.
func (b *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	b.record("EstimateGas")
	return 500_000, nil
}

// SendTransaction implements bind.ContractTransactor.
func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.record("SendTransaction")
	if b.SendErr != nil {
		return b.SendErr
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if tx.Nonce() != b.nonces[from] {
		return NewRPCError(-32000, "nonce too low")
	}
	b.nonces[from]++
	b.sent = append(b.sent, tx)
	if b.Hold {
		return nil
	}

	b.block++
	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		GasUsed:           21_000,
		CumulativeGasUsed: 21_000,
		BlockNumber:       new(big.Int).SetUint64(b.block),
		BlockHash:         blockHash(b.block),
	}
	if b.Revert {
		receipt.Status = types.ReceiptStatusFailed
	}
	if tx.To() == nil && !b.OmitContractAddress {
		addr := b.NextContractAddress
		if addr == (common.Address{}) {
			addr = crypto.CreateAddress(from, tx.Nonce())
		}
		b.NextContractAddress = common.Address{}
		receipt.ContractAddress = addr
		if !b.Revert {
			b.code[addr] = append([]byte(nil), DefaultCode...)
		}
	}
	b.receipts[tx.Hash()] = receipt
	return nil
}

// TransactionReceipt implements bind.DeployBackend. Unknown or still pending
// transactions answer ethereum.NotFound, as ethclient does.
func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.record("TransactionReceipt")
	if b.ReceiptErr != nil {
		return nil, b.ReceiptErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if b.polls[txHash] < b.PendingPolls {
		b.polls[txHash]++
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// FilterLogs implements bind.ContractFilterer.
func (b *Backend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	b.record("FilterLogs")
	return nil, nil
}

// SubscribeFilterLogs implements bind.ContractFilterer.
func (b *Backend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	b.record("SubscribeFilterLogs")
	return nil, errors.New("txflowtest: subscriptions not supported")
}

func blockHash(n uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return crypto.Keccak256Hash(buf[:])
}

// RevertError mimics the JSON-RPC error a node returns for a reverted call.
type RevertError struct {
	reason string
	data   string
}

// NewRevertError builds a revert error carrying Error(string) data.
func NewRevertError(reason string) *RevertError {
	return &RevertError{reason: reason, data: hexutil.Encode(PackRevert(reason))}
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.reason
}

// ErrorCode returns the JSON-RPC error code nodes use for reverts.
func (e *RevertError) ErrorCode() int {
	return 3
}

// ErrorData returns the hex-encoded revert payload.
func (e *RevertError) ErrorData() interface{} {
	return e.data
}

// RPCError is a JSON-RPC error answer from the node.
type RPCError struct {
	Code    int
	Message string
}

// NewRPCError returns a JSON-RPC error with code and message.
func NewRPCError(code int, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}

func (e *RPCError) Error() string {
	return e.Message
}

// ErrorCode returns the JSON-RPC error code.
func (e *RPCError) ErrorCode() int {
	return e.Code
}

// PackRevert ABI-encodes reason as Error(string) revert data.
func PackRevert(reason string) []byte {
	stringTy, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringTy}}.Pack(reason)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return append(selector, packed...)
}
