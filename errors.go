package txflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for common failure conditions.
var (
	// ErrUnknownNetwork indicates the requested network name is not configured.
	ErrUnknownNetwork = errors.New("txflow: unknown network")

	// ErrInvalidNetwork indicates a configured network is missing its endpoint or chain id.
	ErrInvalidNetwork = errors.New("txflow: invalid network definition")

	// ErrMissingCredential indicates the credential source has no value for the signer.
	ErrMissingCredential = errors.New("txflow: credential not found")

	// ErrMalformedKey indicates the credential is not a secp256k1 private key.
	ErrMalformedKey = errors.New("txflow: malformed private key")

	// ErrChainMismatch indicates the endpoint serves a different chain than configured.
	ErrChainMismatch = errors.New("txflow: endpoint chain id does not match network")

	// ErrUnknownOperation indicates the descriptor has no operation with the given name.
	ErrUnknownOperation = errors.New("txflow: operation not found in descriptor")

	// ErrNotStateChanging indicates a read-only operation was submitted as a transaction.
	ErrNotStateChanging = errors.New("txflow: operation is read-only")

	// ErrArityMismatch indicates the wrong number of arguments was supplied.
	ErrArityMismatch = errors.New("txflow: argument count does not match operation")

	// ErrNotPayable indicates value was attached to a non-payable operation.
	ErrNotPayable = errors.New("txflow: operation is not payable")

	// ErrNoBytecode indicates a deployment was requested without creation bytecode.
	ErrNoBytecode = errors.New("txflow: empty creation bytecode")

	// ErrNoCode indicates there is no contract code at the target address.
	ErrNoCode = errors.New("txflow: no contract code at address")

	// ErrAlreadyConsumed indicates Confirm was called twice on the same pending value.
	ErrAlreadyConsumed = errors.New("txflow: pending transaction already consumed")

	// ErrReverted indicates a mined transaction was reverted by the contract.
	ErrReverted = errors.New("txflow: transaction reverted")

	// ErrNoContractAddress indicates a creation receipt carried no contract address.
	ErrNoContractAddress = errors.New("txflow: receipt has no contract address")

	// ErrDeploymentReverted indicates the contract creation transaction was reverted.
	ErrDeploymentReverted = errors.New("txflow: contract creation reverted")

	// ErrNoDescriptor indicates a contract was resolved or deployed without an interface descriptor.
	ErrNoDescriptor = errors.New("txflow: nil contract descriptor")
)

// ConfigurationError indicates the network or credential configuration is unusable.
type ConfigurationError struct {
	Network string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("txflow: configuration for network %q: %v", e.Network, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// InvalidAddressError indicates a contract address failed syntactic validation.
type InvalidAddressError struct {
	Input  string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("txflow: invalid address %q: %s", e.Input, e.Reason)
}

// ArgumentMismatchError indicates the arguments do not fit the operation signature.
// Index is -1 when the error is not tied to a single argument.
type ArgumentMismatchError struct {
	Operation string
	Index     int
	Expected  string
	Err       error
}

func (e *ArgumentMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("txflow: operation %q: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("txflow: argument %d for operation %q (want %s): %v",
		e.Index, e.Operation, e.Expected, e.Err)
}

func (e *ArgumentMismatchError) Unwrap() error {
	return e.Err
}

// SubmissionError indicates the network refused the transaction before inclusion.
type SubmissionError struct {
	Operation string
	Target    common.Address
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Target == (common.Address{}) {
		return fmt.Sprintf("txflow: submit %s (contract creation): %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("txflow: submit %s to %s: %v", e.Operation, e.Target.Hex(), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// TransportError indicates a request to the endpoint failed without a JSON-RPC
// answer. TxHash is zero when the signed transaction cannot have reached the
// node; otherwise it may have been received.
type TransportError struct {
	Network string
	Op      string
	TxHash  common.Hash
	Err     error
}

func (e *TransportError) Error() string {
	if e.TxHash == (common.Hash{}) {
		return fmt.Sprintf("txflow: %s on %s: %v", e.Op, e.Network, e.Err)
	}
	return fmt.Sprintf("txflow: %s on %s (%s may have been received): %v", e.Op, e.Network, e.TxHash.Hex(), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Sent reports whether the signed transaction may have reached the node.
func (e *TransportError) Sent() bool {
	return e.TxHash != (common.Hash{})
}

// NetworkError indicates the connection failed while waiting for a receipt.
// The transaction may or may not have been mined.
type NetworkError struct {
	TxHash common.Hash
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("txflow: waiting for %s: %v", e.TxHash.Hex(), e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates no receipt was observed before the deadline.
// The transaction may still be mined later; re-query instead of resubmitting.
type TimeoutError struct {
	TxHash  common.Hash
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if errors.Is(e.Err, context.Canceled) {
		return fmt.Sprintf("txflow: wait for %s cancelled", e.TxHash.Hex())
	}
	if e.Timeout > 0 {
		return fmt.Sprintf("txflow: %s not mined within %s", e.TxHash.Hex(), e.Timeout)
	}
	return fmt.Sprintf("txflow: %s not mined: %v", e.TxHash.Hex(), e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// DeploymentFailedError indicates a creation transaction was mined but no
// contract can be attributed to it.
type DeploymentFailedError struct {
	TxHash    common.Hash
	Confirmed *ConfirmedTransaction
	Err       error
}

func (e *DeploymentFailedError) Error() string {
	if e.Confirmed != nil && e.Confirmed.RevertReason != "" {
		return fmt.Sprintf("txflow: deployment %s: %v: %s", e.TxHash.Hex(), e.Err, e.Confirmed.RevertReason)
	}
	return fmt.Sprintf("txflow: deployment %s: %v", e.TxHash.Hex(), e.Err)
}

func (e *DeploymentFailedError) Unwrap() error {
	return e.Err
}

// RevertError is returned by ConfirmedTransaction.Err for reverted transactions.
type RevertError struct {
	TxHash common.Hash
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("txflow: transaction %s reverted", e.TxHash.Hex())
	}
	return fmt.Sprintf("txflow: transaction %s reverted: %s", e.TxHash.Hex(), e.Reason)
}

func (e *RevertError) Unwrap() error {
	return ErrReverted
}

// Fate describes what is known about a transaction when an error is returned.
type Fate uint8

const (
	// FateNone means the error is not a txflow error.
	FateNone Fate = iota

	// FateNotSent means the request never left the process.
	FateNotSent

	// FateUnknown means the transaction was broadcast but its outcome is unknown.
	FateUnknown

	// FateKnown means the network reported a definitive outcome.
	FateKnown
)

func (f Fate) String() string {
	switch f {
	case FateNotSent:
		return "not-sent"
	case FateUnknown:
		return "unknown"
	case FateKnown:
		return "known"
	default:
		return "none"
	}
}

// FateOf classifies err by how far the transaction got.
func FateOf(err error) Fate {
	var (
		cfgErr    *ConfigurationError
		addrErr   *InvalidAddressError
		argErr    *ArgumentMismatchError
		subErr    *SubmissionError
		netErr    *NetworkError
		timeErr   *TimeoutError
		deployErr *DeploymentFailedError
		trErr     *TransportError
	)
	switch {
	case err == nil:
		return FateNone
	case errors.As(err, &trErr):
		if trErr.Sent() {
			return FateUnknown
		}
		return FateNotSent
	case errors.As(err, &cfgErr), errors.As(err, &addrErr), errors.As(err, &argErr):
		return FateNotSent
	case errors.As(err, &timeErr), errors.As(err, &netErr):
		return FateUnknown
	case errors.As(err, &subErr), errors.As(err, &deployErr), errors.Is(err, ErrReverted):
		return FateKnown
	default:
		return FateNone
	}
}
