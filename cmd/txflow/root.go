package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "txflow",
		Short: "Deploy a contract and send transactions to it",
		Long: `txflow deploys a compiled contract to an EVM network and sends
state-changing calls to deployed instances, waiting for each transaction
to be mined.

Network endpoints and signer key variables come from txflow.yaml (or
--config); keys are read from the environment or the configured .env file.

Examples:
  # Deploy ERC721("ProfilePics", "PFP") to Sepolia
  txflow deploy --network sepolia

  # Mint a token on the recorded deployment
  txflow mint --network sepolia --token-uri ipfs://...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default txflow.yaml in ., ./config, $HOME/.txflow)")
	root.PersistentFlags().StringVarP(&a.network, "network", "n", "", "network name (overrides config)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "confirmation timeout (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newDeployCmd(a))
	root.AddCommand(newMintCmd(a))
	root.AddCommand(newCallCmd(a))
	root.AddCommand(newNetworksCmd(a))
	root.AddCommand(newRecordsCmd(a))
	return root
}
