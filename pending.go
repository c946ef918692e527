package txflow

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Status is the on-chain outcome of a mined transaction.
type Status uint8

const (
	// StatusSuccess means the execution completed.
	StatusSuccess Status = iota

	// StatusReverted means the transaction was mined but its effects were rolled back.
	StatusReverted
)

func (s Status) String() string {
	if s == StatusReverted {
		return "reverted"
	}
	return "success"
}

// PendingTransaction is a broadcast transaction whose fate is not yet known.
// It is consumed by exactly one call to Confirm.
type PendingTransaction struct {
	Hash        common.Hash
	Nonce       uint64
	From        common.Address
	To          *common.Address // nil for contract creation
	Operation   string
	SubmittedAt time.Time

	orch     *Orchestrator
	tx       *types.Transaction
	consumed atomic.Bool
}

// Transaction returns the signed transaction that was broadcast.
func (p *PendingTransaction) Transaction() *types.Transaction {
	return p.tx
}

// Confirm blocks until the transaction is mined, timeout elapses or ctx ends.
// A non-positive timeout relies on ctx alone. A reverted transaction is a
// successful confirmation with Status set to StatusReverted.
func (p *PendingTransaction) Confirm(ctx context.Context, timeout time.Duration) (*ConfirmedTransaction, error) {
	return p.orch.confirm(ctx, p, timeout)
}

// ConfirmedTransaction is the network's report on a mined transaction.
type ConfirmedTransaction struct {
	Hash         common.Hash
	BlockNumber  uint64
	BlockHash    common.Hash
	GasUsed      uint64
	Status       Status
	RevertReason string
	Receipt      *types.Receipt
}

func newConfirmed(r *types.Receipt) *ConfirmedTransaction {
	c := &ConfirmedTransaction{
		Hash:      r.TxHash,
		BlockHash: r.BlockHash,
		GasUsed:   r.GasUsed,
		Status:    StatusSuccess,
		Receipt:   r,
	}
	if r.BlockNumber != nil {
		c.BlockNumber = r.BlockNumber.Uint64()
	}
	if r.Status != types.ReceiptStatusSuccessful {
		c.Status = StatusReverted
	}
	return c
}

// Succeeded reports whether the execution completed without reverting.
func (c *ConfirmedTransaction) Succeeded() bool {
	return c.Status == StatusSuccess
}

// Err returns a RevertError for reverted transactions and nil otherwise.
func (c *ConfirmedTransaction) Err() error {
	if c.Status == StatusSuccess {
		return nil
	}
	return &RevertError{TxHash: c.Hash, Reason: c.RevertReason}
}

func isNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}

// parentBlockOf returns the number of the block before the receipt's, or nil
// for the latest block when the receipt has no usable number.
func parentBlockOf(r *types.Receipt) *big.Int {
	if r == nil || r.BlockNumber == nil || r.BlockNumber.Sign() <= 0 {
		return nil
	}
	return new(big.Int).Sub(r.BlockNumber, big.NewInt(1))
}
