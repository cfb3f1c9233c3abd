package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/rtsim/core"
	"github.com/encodeous/rtsim/state"
	"github.com/spf13/cobra"
)

var (
	routesAS      string
	routesNode    string
	routesFail    []string
	routesSummary bool
	routesTrace   bool
)

var routesCmd = &cobra.Command{
	Use:     "routes",
	Aliases: []string{"r"},
	Short:   "Computes and prints routing tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()
		if err := failLinks(e, routesFail); err != nil {
			return err
		}

		if routesTrace {
			events, unsubscribe := e.Trace.Subscribe(64)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for ev := range events {
					te := ev.(core.TraceEvent)
					fmt.Fprintf(os.Stderr, "trace: %s %s %s %s\n", te.Event, te.System, te.Node, te.Desc)
				}
			}()
			defer func() {
				unsubscribe()
				<-done
			}()
		}

		systems := e.Topology.SystemNames()
		if routesAS != "" {
			systems = []string{routesAS}
		}
		out := cmd.OutOrStdout()
		for _, name := range systems {
			as, err := e.Topology.System(name)
			if err != nil {
				return err
			}
			if !core.ComputesRoutes(as.Protocol) {
				if routesAS != "" {
					return fmt.Errorf("%w: %s runs %s", state.ErrNotSupported, name, as.Protocol)
				}
				continue
			}
			tables, err := e.BuildRoutingTable(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "== %s (%s) ==\n", name, as.Protocol)
			nodes := sortedNodes(tables)
			if routesNode != "" {
				nodes = []state.NodeId{state.NodeId(routesNode)}
				if _, ok := tables[nodes[0]]; !ok {
					return fmt.Errorf("%w: %s is not a member of %s", state.ErrUnknownNode, routesNode, name)
				}
			}
			for _, id := range nodes {
				tbl := tables[id]
				writeTable(out, id, tbl)
				if routesSummary {
					fmt.Fprintf(out, "  summary:")
					for _, p := range state.CoalescePrefix(tbl.Prefixes()) {
						fmt.Fprintf(out, " %s", p)
					}
					fmt.Fprintln(out)
				}
			}
		}
		return nil
	},
	GroupID: "build",
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVar(&routesAS, "as", "", "only build this autonomous system")
	routesCmd.Flags().StringVar(&routesNode, "node", "", "only print this node's table")
	routesCmd.Flags().StringSliceVar(&routesFail, "fail", nil, "links to fail before building")
	routesCmd.Flags().BoolVar(&routesSummary, "summary", false, "print the coalesced prefixes each node reaches")
	routesCmd.Flags().BoolVar(&routesTrace, "trace", false, "print engine events to stderr")
}
