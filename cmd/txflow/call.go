package main

import (
	"github.com/spf13/cobra"

	txflow "github.com/branched-services/go-txflow"
)

func newCallCmd(a *app) *cobra.Command {
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "call <address> <operation> [args...]",
		Short: "Send a state-changing call to a contract",
		Long: `Send any state-changing operation declared in the artifact's ABI. Arguments
are given as strings and converted per parameter type: addresses as hex,
integers in decimal or 0x hex, bytes as 0x hex, booleans as true/false.

Examples:
  txflow call 0x4E3F... transferFrom 0xFrom 0xTo 1 --artifact artifacts/contracts/ERC721.sol/ERC721.json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("artifact") {
				artifactPath = a.cfg.Deploy.Artifact
			}
			return a.runCall(cmd, artifactPath, args[0], args[1], args[2:])
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "compiled contract artifact providing the ABI")
	return cmd
}

func (a *app) runCall(cmd *cobra.Command, artifactPath, address, operation string, callArgs []string) error {
	ctx := cmd.Context()

	artifact, err := txflow.LoadArtifact(artifactPath)
	if err != nil {
		return err
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	ref, err := s.orch.Resolve(address, artifact.Descriptor)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printStep(out, "Calling %s.%s%s at %s", artifact.ContractName, operation, describeArgs(callArgs), ref.Address().Hex())

	pending, err := s.orch.Submit(ctx, ref, operation, stringArgs(callArgs)...)
	if err != nil {
		return err
	}
	printStep(out, "Transaction sent! Hash: %s", pending.Hash.Hex())

	confirmed, err := pending.Confirm(ctx, a.cfg.Confirm.Timeout)
	if err != nil {
		return err
	}
	printConfirmed(out, confirmed)
	if err := confirmed.Err(); err != nil {
		return err
	}
	printSuccess(out, "%s confirmed", operation)
	return nil
}
