package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := a.cfg.NetworkTable()
			names := make([]string, 0, len(table))
			for name := range table {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tNAME\tCHAIN ID\tURL\tKEY VAR")
			for _, name := range names {
				n := table[name]
				marker := ""
				if name == a.cfg.Network {
					marker = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", marker, name, n.ChainID, n.URL, n.KeyVar)
			}
			return w.Flush()
		},
	}
}

func newRecordsCmd(a *app) *cobra.Command {
	var chain uint64

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List recorded deployments for the selected network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chain == 0 {
				n, ok := a.cfg.NetworkTable()[a.cfg.Network]
				if !ok {
					return fmt.Errorf("unknown network %q", a.cfg.Network)
				}
				chain = n.ChainID
			}
			recs, err := a.records().List(chain)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printStep(cmd.OutOrStdout(), "No deployments recorded for chain %d", chain)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tADDRESS\tBLOCK\tDEPLOYED")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Key, r.Address, r.BlockNumber, r.DeployedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Uint64Var(&chain, "chain-id", 0, "chain id (default: selected network)")
	return cmd
}
