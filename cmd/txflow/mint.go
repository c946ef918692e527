package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	txflow "github.com/branched-services/go-txflow"
)

func newMintCmd(a *app) *cobra.Command {
	var (
		contract  string
		to        string
		tokenURI  string
		operation string
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a token on a deployed collection",
		Long: `Call the collection's mint operation with (recipient, tokenURI) and wait
for the transaction to be mined.

The contract defaults to the address recorded by "txflow deploy" under the
configured deployment key. The recipient defaults to the signer. The
operation name is configurable (mint.operation) because collections differ
between mint and safeMint.

Examples:
  txflow mint --token-uri ipfs://bafy...
  txflow mint --contract 0x4e3f362386086d6c9ebbcb4a17faf52d103831f5 --operation safeMint --token-uri ipfs://...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("contract") {
				contract = a.cfg.Mint.Contract
			}
			if !cmd.Flags().Changed("to") {
				to = a.cfg.Mint.To
			}
			if !cmd.Flags().Changed("token-uri") {
				tokenURI = a.cfg.Mint.TokenURI
			}
			if !cmd.Flags().Changed("operation") {
				operation = a.cfg.Mint.Operation
			}
			if tokenURI == "" {
				return errors.New("a token URI is required (--token-uri or mint.token_uri)")
			}
			return a.runMint(cmd, contract, to, tokenURI, operation)
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "collection address (default: recorded deployment)")
	cmd.Flags().StringVar(&to, "to", "", "recipient address (default: signer)")
	cmd.Flags().StringVar(&tokenURI, "token-uri", "", "token metadata URI")
	cmd.Flags().StringVar(&operation, "operation", "", "mint operation name (default mint)")
	return cmd
}

func (a *app) runMint(cmd *cobra.Command, contract, to, tokenURI, operation string) error {
	ctx := cmd.Context()

	desc, err := a.mintDescriptor(operation)
	if err != nil {
		return err
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if contract == "" {
		rec, err := a.records().Lookup(chainID(s.binding), a.cfg.Deploy.Key)
		if err != nil {
			return fmt.Errorf("no --contract given and %w", err)
		}
		contract = rec.Address
	}
	if to == "" {
		to = s.binding.From().Hex()
	}

	ref, err := s.orch.Resolve(contract, desc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printStep(out, "Interacting with contract at: %s", ref.Address().Hex())
	printStep(out, "Using signer: %s", s.binding.From().Hex())
	printStep(out, "Minting a new token...")

	pending, err := s.orch.Submit(ctx, ref, operation, to, tokenURI)
	if err != nil {
		return err
	}
	printStep(out, "Transaction sent! Hash: %s", pending.Hash.Hex())

	confirmed, err := pending.Confirm(ctx, a.cfg.Confirm.Timeout)
	if err != nil {
		return err
	}
	if err := confirmed.Err(); err != nil {
		printConfirmed(out, confirmed)
		return err
	}

	printSuccess(out, "Token minted successfully!")
	printField(out, "Recipient", to)
	printConfirmed(out, confirmed)
	return nil
}

// mintDescriptor prefers the deploy artifact's ABI and falls back to a
// static (address, string) signature when no artifact is present.
func (a *app) mintDescriptor(operation string) (*txflow.Descriptor, error) {
	artifact, err := txflow.LoadArtifact(a.cfg.Deploy.Artifact)
	switch {
	case err == nil:
		return artifact.Descriptor, nil
	case errors.Is(err, fs.ErrNotExist):
		return txflow.NewDescriptor("ERC721", txflow.OperationSpec{
			Name:       operation,
			Inputs:     []string{"address", "string"},
			Mutability: txflow.StateChanging,
		})
	default:
		return nil, err
	}
}
