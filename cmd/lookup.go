package cmd

import (
	"fmt"
	"net/netip"

	"github.com/encodeous/rtsim/state"
	"github.com/spf13/cobra"
)

var (
	lookupAS   string
	lookupNode string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "Finds the route a node uses to reach an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := netip.ParseAddr(args[0])
		if err != nil {
			return err
		}
		e, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()
		tables, err := e.BuildRoutingTable(cmd.Context(), lookupAS)
		if err != nil {
			return err
		}
		tbl, ok := tables[state.NodeId(lookupNode)]
		if !ok {
			return fmt.Errorf("%w: %s is not a member of %s", state.ErrUnknownNode, lookupNode, lookupAS)
		}
		out := cmd.OutOrStdout()
		prefix, entries, ok := tbl.Lookup(addr)
		if !ok {
			fmt.Fprintf(out, "%s: no route to %s\n", lookupNode, addr)
			return nil
		}
		fmt.Fprintf(out, "%s: %s matches %s\n", lookupNode, addr, prefix)
		for _, entry := range entries {
			fmt.Fprintf(out, "  %s\n", entry)
		}
		return nil
	},
	GroupID: "build",
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupAS, "as", "", "autonomous system to route in")
	lookupCmd.Flags().StringVar(&lookupNode, "node", "", "node performing the lookup")
	_ = lookupCmd.MarkFlagRequired("as")
	_ = lookupCmd.MarkFlagRequired("node")
}
