package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/encodeous/rtsim/core"
	"github.com/encodeous/rtsim/state"
)

// openEngine loads the topology file and returns an engine over it, along with the parsed
// file. The returned function releases the engine and the log file.
func openEngine() (*core.Engine, *state.TopologyCfg, func(), error) {
	log, closeLog, err := core.NewLogger(logLevel(), logPath, "")
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := state.ReadTopologyConfig(topologyPath)
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	t, err := core.LoadTopology(cfg)
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	e := core.NewEngine(t, log)
	return e, cfg, func() {
		e.Close()
		closeLog()
	}, nil
}

func failLinks(e *core.Engine, ids []string) error {
	for _, id := range ids {
		if err := e.FailLink(state.LinkId(id)); err != nil {
			return err
		}
	}
	return nil
}

// writeTable prints a routing table one subnet per line, equal cost entries indented below.
func writeTable(w io.Writer, node state.NodeId, tbl *state.RouteTable) {
	fmt.Fprintf(w, "%s:\n", node)
	if tbl == nil {
		fmt.Fprintln(w, "  (no table)")
		return
	}
	for _, prefix := range tbl.Prefixes() {
		for i, e := range tbl.Routes(prefix) {
			dst := prefix.String()
			if i > 0 {
				dst = strings.Repeat(" ", len(dst))
			}
			if e.Type == state.RouteConnected {
				fmt.Fprintf(w, "  %-5s %s is directly connected, %s\n", e.Type, dst, e.Interface)
				continue
			}
			fmt.Fprintf(w, "  %-5s %s [%g] via %s (%s), %s\n", e.Type, dst, e.Metric, e.NextHopAddr, e.NextHop, e.Interface)
		}
	}
}

func sortedNodes(tables map[state.NodeId]*state.RouteTable) []state.NodeId {
	nodes := make([]state.NodeId, 0, len(tables))
	for id := range tables {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)
	return nodes
}
