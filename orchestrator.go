package txflow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend is the network endpoint used for submission and confirmation.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Orchestrator submits transactions for one NetworkBinding and waits for
// their receipts. It does not coordinate nonces between concurrent callers.
type Orchestrator struct {
	binding *NetworkBinding
	backend Backend
	cfg     *config
}

// NewOrchestrator creates an Orchestrator that signs with binding and talks
// to backend.
func NewOrchestrator(binding *NetworkBinding, backend Backend, opts ...Option) *Orchestrator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Orchestrator{
		binding: binding,
		backend: backend,
		cfg:     cfg,
	}
}

// Binding returns the orchestrator's network binding.
func (o *Orchestrator) Binding() *NetworkBinding {
	return o.binding
}

// Resolve binds address and desc to the orchestrator's binding.
func (o *Orchestrator) Resolve(address string, desc *Descriptor) (*ContractReference, error) {
	return Resolve(o.binding, address, desc)
}

// Submit validates args, then signs and broadcasts a call to operation.
// Argument problems are reported before any backend call. The returned
// PendingTransaction must be confirmed exactly once.
func (o *Orchestrator) Submit(ctx context.Context, ref *ContractReference, operation string, args ...any) (*PendingTransaction, error) {
	call, err := ref.Prepare(operation, args...)
	if err != nil {
		return nil, err
	}
	return o.SubmitCall(ctx, call)
}

// SubmitCall broadcasts a prepared call.
func (o *Orchestrator) SubmitCall(ctx context.Context, call *Call) (*PendingTransaction, error) {
	ref := call.Contract()
	if ref.binding != o.binding {
		return nil, &ConfigurationError{
			Network: o.binding.Name(),
			Err:     errors.New("contract reference was resolved under a different binding"),
		}
	}
	rec := &sendRecorder{Backend: o.backend}

	code, err := o.backend.PendingCodeAt(ctx, ref.address)
	if err != nil {
		return nil, o.submitFailure(call.Operation(), ref.address, rec, err)
	}
	if len(code) == 0 {
		return nil, &SubmissionError{Operation: call.Operation(), Target: ref.address, Err: ErrNoCode}
	}

	opts, err := o.transactOpts(ctx)
	if err != nil {
		return nil, err
	}
	opts.Value = call.EthValue()

	bound := bind.NewBoundContract(ref.address, ref.descriptor.abi, rec, rec, rec)
	tx, err := bound.RawTransact(opts, call.Calldata())
	if err != nil {
		return nil, o.submitFailure(call.Operation(), ref.address, rec, err)
	}

	pending := o.newPending(tx, call.Operation())
	o.cfg.logger.Info("tx submitted",
		"network", o.binding.Name(),
		"operation", call.Operation(),
		"to", ref.address.Hex(),
		"hash", tx.Hash().Hex(),
		"nonce", tx.Nonce(),
	)
	return pending, nil
}

// Transact submits a call and waits for its confirmation.
func (o *Orchestrator) Transact(ctx context.Context, timeout time.Duration, ref *ContractReference, operation string, args ...any) (*ConfirmedTransaction, error) {
	pending, err := o.Submit(ctx, ref, operation, args...)
	if err != nil {
		return nil, err
	}
	return pending.Confirm(ctx, timeout)
}

// sendRecorder remembers the transaction handed to SendTransaction.
type sendRecorder struct {
	Backend
	tx *types.Transaction
}

func (r *sendRecorder) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	r.tx = tx
	return r.Backend.SendTransaction(ctx, tx)
}

// submitFailure classifies an error raised while building or broadcasting a
// transaction. A JSON-RPC error is a rejection by the node; anything else is
// a TransportError, marked as possibly received once SendTransaction was
// reached over an established connection.
func (o *Orchestrator) submitFailure(operation string, target common.Address, rec *sendRecorder, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &SubmissionError{Operation: operation, Target: target, Err: err}
	}
	trErr := &TransportError{Network: o.binding.Name(), Op: "submit " + operation, Err: err}
	if rec.tx != nil && !isDialFailure(err) {
		trErr.TxHash = rec.tx.Hash()
	}
	return trErr
}

func isDialFailure(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (o *Orchestrator) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := o.binding.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	opts.GasLimit = o.cfg.gasLimit
	if o.cfg.gasPrice != nil {
		opts.GasPrice = o.cfg.gasPrice
	}
	return opts, nil
}

func (o *Orchestrator) newPending(tx *types.Transaction, operation string) *PendingTransaction {
	return &PendingTransaction{
		Hash:        tx.Hash(),
		Nonce:       tx.Nonce(),
		From:        o.binding.From(),
		To:          tx.To(),
		Operation:   operation,
		SubmittedAt: o.cfg.now(),
		orch:        o,
		tx:          tx,
	}
}

// waitMined polls for the receipt of p until it appears or ctx ends.
// Only a not-found answer is polled through; any other backend error ends
// the wait as a NetworkError.
func (o *Orchestrator) waitMined(ctx context.Context, p *PendingTransaction, timeout time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(o.cfg.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := o.backend.TransactionReceipt(ctx, p.Hash)
		switch {
		case err == nil && receipt != nil:
			return receipt, nil
		case ctx.Err() != nil:
			return nil, &TimeoutError{TxHash: p.Hash, Timeout: timeout, Err: ctx.Err()}
		case err != nil && !isNotFound(err):
			return nil, &NetworkError{TxHash: p.Hash, Err: err}
		}

		o.cfg.logger.Debug("tx not yet mined", "hash", p.Hash.Hex())
		select {
		case <-ctx.Done():
			return nil, &TimeoutError{TxHash: p.Hash, Timeout: timeout, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// confirm consumes p, waits for its receipt and builds the outcome.
func (o *Orchestrator) confirm(ctx context.Context, p *PendingTransaction, timeout time.Duration) (*ConfirmedTransaction, error) {
	if !p.consumed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyConsumed, p.Hash.Hex())
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	receipt, err := o.waitMined(waitCtx, p, timeout)
	if err != nil {
		o.cfg.logger.Warn("tx confirmation failed", "hash", p.Hash.Hex(), "err", err)
		return nil, err
	}

	confirmed := newConfirmed(receipt)
	if confirmed.Status == StatusReverted {
		// The reason lookup runs on ctx, not the wait deadline.
		confirmed.RevertReason = revertReason(ctx, o.backend, p, receipt)
		o.cfg.logger.Warn("tx reverted",
			"hash", p.Hash.Hex(),
			"block", confirmed.BlockNumber,
			"reason", confirmed.RevertReason,
		)
		return confirmed, nil
	}

	o.cfg.logger.Info("tx confirmed",
		"hash", p.Hash.Hex(),
		"block", confirmed.BlockNumber,
		"gas_used", confirmed.GasUsed,
	)
	return confirmed, nil
}
