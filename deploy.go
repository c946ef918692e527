package txflow

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

const constructorOperation = "constructor"

// DeploymentResult is the outcome of a confirmed contract creation.
type DeploymentResult struct {
	Address   common.Address
	Confirmed *ConfirmedTransaction
}

// PendingDeployment is a broadcast contract creation.
type PendingDeployment struct {
	*PendingTransaction

	// Predicted is the CREATE address derived from the sender and nonce.
	// The confirmed address comes from the receipt.
	Predicted  common.Address
	Descriptor *Descriptor
}

// SubmitDeployment validates constructor args against desc, then signs and
// broadcasts the creation transaction.
func (o *Orchestrator) SubmitDeployment(ctx context.Context, desc *Descriptor, bytecode []byte, args ...any) (*PendingDeployment, error) {
	if desc == nil {
		return nil, &ConfigurationError{Network: o.binding.Name(), Err: ErrNoDescriptor}
	}
	if len(bytecode) == 0 {
		return nil, &ArgumentMismatchError{Operation: constructorOperation, Index: -1, Err: ErrNoBytecode}
	}
	coerced, err := coerceArgs(constructorOperation, desc.abi.Constructor.Inputs, args)
	if err != nil {
		return nil, err
	}
	if _, err := desc.abi.Pack("", coerced...); err != nil {
		return nil, &ArgumentMismatchError{Operation: constructorOperation, Index: -1, Err: err}
	}

	opts, err := o.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	rec := &sendRecorder{Backend: o.backend}
	predicted, tx, _, err := bind.DeployContract(opts, desc.abi, bytecode, rec, coerced...)
	if err != nil {
		return nil, o.submitFailure(desc.Name()+"."+constructorOperation, common.Address{}, rec, err)
	}

	pending := o.newPending(tx, constructorOperation)
	o.cfg.logger.Info("deployment submitted",
		"network", o.binding.Name(),
		"contract", desc.Name(),
		"hash", tx.Hash().Hex(),
		"nonce", tx.Nonce(),
		"predicted", predicted.Hex(),
	)
	return &PendingDeployment{
		PendingTransaction: pending,
		Predicted:          predicted,
		Descriptor:         desc,
	}, nil
}

// Confirm waits for the creation receipt and extracts the new address.
// A reverted creation or a receipt without an address is a
// DeploymentFailedError.
func (d *PendingDeployment) Confirm(ctx context.Context, timeout time.Duration) (*DeploymentResult, error) {
	confirmed, err := d.PendingTransaction.Confirm(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if confirmed.Status == StatusReverted {
		return nil, &DeploymentFailedError{TxHash: d.Hash, Confirmed: confirmed, Err: ErrDeploymentReverted}
	}

	addr := confirmed.Receipt.ContractAddress
	if addr == (common.Address{}) {
		return nil, &DeploymentFailedError{TxHash: d.Hash, Confirmed: confirmed, Err: ErrNoContractAddress}
	}
	if addr != d.Predicted {
		d.orch.cfg.logger.Debug("deployed address differs from prediction",
			"predicted", d.Predicted.Hex(),
			"actual", addr.Hex(),
		)
	}

	d.orch.cfg.logger.Info("contract deployed",
		"contract", d.Descriptor.Name(),
		"address", addr.Hex(),
		"block", confirmed.BlockNumber,
	)
	return &DeploymentResult{Address: addr, Confirmed: confirmed}, nil
}

// Deploy submits a contract creation and waits for it to be confirmed.
func (o *Orchestrator) Deploy(ctx context.Context, timeout time.Duration, desc *Descriptor, bytecode []byte, args ...any) (*DeploymentResult, error) {
	pending, err := o.SubmitDeployment(ctx, desc, bytecode, args...)
	if err != nil {
		return nil, err
	}
	return pending.Confirm(ctx, timeout)
}
