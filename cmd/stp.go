package cmd

import (
	"fmt"

	"github.com/encodeous/rtsim/state"
	"github.com/spf13/cobra"
)

var (
	stpAS   string
	stpFail []string
)

var stpCmd = &cobra.Command{
	Use:   "stp",
	Short: "Elects the root bridge and prints the spanning tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()
		if err := failLinks(e, stpFail); err != nil {
			return err
		}
		tree, err := e.BuildSpanningTree(stpAS)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "root %s\n", tree.Root)
		edges := make([]state.Pair[string, state.LinkId], 0, len(tree.Designated))
		for _, id := range tree.Links() {
			l, err := e.Topology.Link(id)
			if err != nil {
				return err
			}
			ends := state.MakeSortedPair(l.Source(), l.Destination())
			edges = append(edges, state.Pair[string, state.LinkId]{
				V1: fmt.Sprintf("%s -- %s", ends.V1, ends.V2),
				V2: id,
			})
		}
		state.SortPairs(edges)
		for _, p := range edges {
			fmt.Fprintf(out, "  %s (%s)\n", p.V1, p.V2)
		}
		return nil
	},
	GroupID: "build",
}

func init() {
	rootCmd.AddCommand(stpCmd)

	stpCmd.Flags().StringVar(&stpAS, "as", "", "spanning tree system")
	stpCmd.Flags().StringSliceVar(&stpFail, "fail", nil, "links to fail before building")
	_ = stpCmd.MarkFlagRequired("as")
}
