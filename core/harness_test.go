package core

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/netip"
	"slices"
	"testing"

	"github.com/encodeous/rtsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// topoBuilder assembles test topologies. Link n gets subnet 10.0.n.0/24, the source end .1
// and the destination end .2; interfaces are named after the far node.
type topoBuilder struct {
	t    *testing.T
	topo *state.Topology
	n    int
}

func newTopo(t *testing.T) *topoBuilder {
	return &topoBuilder{t: t, topo: state.NewTopology()}
}

func (b *topoBuilder) node(id state.NodeId, kind state.NodeKind, mac string) *state.Node {
	var hw []byte
	if mac != "" {
		hw = state.MustParseMAC(mac)
	}
	n := state.NewNode(id, kind, hw)
	require.NoError(b.t, b.topo.AddNode(n))
	return n
}

func (b *topoBuilder) routers(ids ...state.NodeId) {
	for _, id := range ids {
		b.node(id, state.KindRouter, "")
	}
}

func (b *topoBuilder) link(id state.LinkId, src, dst state.NodeId, bw float64) *state.Link {
	b.n++
	subnet := netip.MustParsePrefix(fmt.Sprintf("10.0.%d.0/24", b.n))
	l := state.NewLink(id,
		state.Endpoint{Node: src, Interface: "to-" + string(dst) + "-" + string(id), Address: subnet.Addr().Next()},
		state.Endpoint{Node: dst, Interface: "to-" + string(src) + "-" + string(id), Address: subnet.Addr().Next().Next()},
		subnet, bw)
	require.NoError(b.t, b.topo.AddLink(l))
	return l
}

// all returns every node and link as members, in id order.
func (b *topoBuilder) all() []state.Member {
	out := make([]state.Member, 0)
	for _, id := range sortedKeys(b.topo.Nodes) {
		out = append(out, b.topo.Nodes[id])
	}
	for _, id := range sortedKeys(b.topo.Links) {
		out = append(out, b.topo.Links[id])
	}
	return out
}

func (b *topoBuilder) members(ids ...string) []state.Member {
	out := make([]state.Member, 0, len(ids))
	for _, id := range ids {
		if n, ok := b.topo.Nodes[state.NodeId(id)]; ok {
			out = append(out, n)
			continue
		}
		l, ok := b.topo.Links[state.LinkId(id)]
		require.True(b.t, ok, "unknown member %s", id)
		out = append(out, l)
	}
	return out
}

// cost sets the cost of a link in both directions.
func (b *topoBuilder) cost(as *state.AS, id state.LinkId, c float64) {
	l := b.topo.Links[id]
	require.NoError(b.t, SetLinkCost(b.topo, as, l, state.SideSource, c))
	require.NoError(b.t, SetLinkCost(b.topo, as, l, state.SideDestination, c))
}

func (b *topoBuilder) subnet(id state.LinkId) netip.Prefix {
	return b.topo.Links[id].Subnet
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

func testEngine(t *testing.T, topo *state.Topology) *Engine {
	e := NewEngine(topo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		require.NoError(t, e.Close())
	})
	return e
}

// buildTable computes the table of a single source without going through the engine.
func buildTable(t *testing.T, topo *state.Topology, as *state.AS, source state.NodeId) *state.RouteTable {
	spec, err := specFor(as.Protocol)
	require.NoError(t, err)
	refreshBorderRouters(topo, as)
	tbl, err := computeRoutes(topo, as, topo.Nodes[source], allowedSets(topo, as), spec.newClassifier(as))
	require.NoError(t, err)
	return tbl
}

var tableOpts = cmp.Options{cmpopts.EquateComparable(netip.Addr{}, netip.Prefix{})}

func snapshots(tables map[state.NodeId]*state.RouteTable) map[state.NodeId]map[netip.Prefix][]state.RouteEntry {
	out := make(map[state.NodeId]map[netip.Prefix][]state.RouteEntry, len(tables))
	for id, tbl := range tables {
		out[id] = tbl.Snapshot()
	}
	return out
}
