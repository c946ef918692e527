package main

import (
	"time"

	"github.com/spf13/cobra"

	txflow "github.com/branched-services/go-txflow"
	"github.com/branched-services/go-txflow/record"
)

func newDeployCmd(a *app) *cobra.Command {
	var (
		artifactPath string
		key          string
		ctorArgs     []string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a compiled contract and record its address",
		Long: `Deploy a compiled contract artifact with constructor arguments, wait for
the creation to be mined and record the new address under the deployment key.

Examples:
  # Deploy the configured artifact with the configured arguments
  txflow deploy

  # Explicit artifact and constructor arguments
  txflow deploy --artifact out/ERC721.sol/ERC721.json --arg ProfilePics --arg PFP`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("artifact") {
				artifactPath = a.cfg.Deploy.Artifact
			}
			if !cmd.Flags().Changed("key") {
				key = a.cfg.Deploy.Key
			}
			if !cmd.Flags().Changed("arg") {
				ctorArgs = a.cfg.Deploy.Args
			}
			return a.runDeploy(cmd, artifactPath, key, ctorArgs)
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "compiled contract artifact (Hardhat or Foundry JSON)")
	cmd.Flags().StringVar(&key, "key", "", "deployment record key (e.g. ERC721#ERC721)")
	cmd.Flags().StringArrayVar(&ctorArgs, "arg", nil, "constructor argument, repeatable, in order")
	return cmd
}

func (a *app) runDeploy(cmd *cobra.Command, artifactPath, key string, ctorArgs []string) error {
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

	out := cmd.OutOrStdout()
	printStep(out, "Deploying %s%s to %s", artifact.ContractName, describeArgs(ctorArgs), s.binding.Name())
	printStep(out, "Using signer: %s", s.binding.From().Hex())

	pending, err := s.orch.SubmitDeployment(ctx, artifact.Descriptor, artifact.Bytecode, stringArgs(ctorArgs)...)
	if err != nil {
		return err
	}
	printStep(out, "Transaction sent! Hash: %s", pending.Hash.Hex())

	result, err := pending.Confirm(ctx, a.cfg.Confirm.Timeout)
	if err != nil {
		return err
	}

	rec := record.Record{
		Key:         key,
		Contract:    artifact.ContractName,
		Address:     result.Address.Hex(),
		TxHash:      result.Confirmed.Hash.Hex(),
		BlockNumber: result.Confirmed.BlockNumber,
		Network:     s.binding.Name(),
		ChainID:     chainID(s.binding),
		RunID:       a.runID,
		DeployedAt:  time.Now().UTC(),
	}
	if key != "" {
		if err := a.records().Save(rec); err != nil {
			return err
		}
	}

	printSuccess(out, "%s deployed", artifact.ContractName)
	printField(out, "Address", colorBold(result.Address.Hex()))
	printConfirmed(out, result.Confirmed)
	if key != "" {
		printField(out, "Record", a.records().Path(rec.ChainID))
	}
	return nil
}
