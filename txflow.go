// Package txflow deploys EVM contracts and drives state-changing calls
// against them through a two-phase submit/confirm lifecycle.
//
// # Basic Usage
//
// Bind a network and signer, resolve a contract, submit and confirm:
//
//	binding, err := txflow.NewNetworkBinding(txflow.DefaultNetworks(), "sepolia", txflow.EnvSource{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := txflow.Dial(ctx, binding)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	orch := txflow.NewOrchestrator(binding, client, txflow.WithLogger(logger))
//
//	ref, err := orch.Resolve("0x4e3f362386086d6c9ebbcb4a17faf52d103831f5", desc)
//	pending, err := orch.Submit(ctx, ref, "mint", binding.From(), "ipfs://token-uri")
//	confirmed, err := pending.Confirm(ctx, 2*time.Minute)
//	if confirmed.Status == txflow.StatusReverted {
//	    // mined, but the contract rolled it back
//	}
//
// # Lifecycle
//
// Submit validates the operation and its arguments against the contract's
// Descriptor before any network call, then signs and broadcasts the
// transaction and returns a PendingTransaction. Confirm is the only blocking
// step; it polls for the receipt until the transaction is mined or the
// deadline passes. A PendingTransaction can be confirmed once.
//
// Deployments follow the same path through SubmitDeployment and
// PendingDeployment.Confirm, which reports the new contract address taken
// from the receipt.
//
// # Errors
//
// Every failure is a typed error, and FateOf tells how far the transaction got:
//
//   - FateNotSent: ConfigurationError, InvalidAddressError, ArgumentMismatchError,
//     TransportError before the signed transaction left the process
//   - FateUnknown: TimeoutError, NetworkError, TransportError once the signed
//     transaction may have been received
//   - FateKnown: SubmissionError, DeploymentFailedError, RevertError
package txflow
