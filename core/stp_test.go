package core

import (
	"testing"

	"github.com/encodeous/rtsim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bridges(t *testing.T, macs map[state.NodeId]string) *topoBuilder {
	b := newTopo(t)
	for _, id := range sortedKeys(macs) {
		b.node(id, state.KindSwitch, macs[id])
	}
	return b
}

func setPriority(t *testing.T, b *topoBuilder, as *state.AS, id state.NodeId, prio int) {
	m, ok := b.topo.Nodes[id].Membership(as.Name)
	require.True(t, ok)
	m.Props.Priority = prio
}

func TestElectRoot_LowestPriority(t *testing.T) {
	b := bridges(t, map[state.NodeId]string{
		"s1": "00:00:00:00:00:03",
		"s2": "00:00:00:00:00:02",
		"s3": "00:00:00:00:00:01",
	})
	as, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false, b.all()...)
	require.NoError(t, err)
	setPriority(t, b, as, "s3", 4096)

	root, err := ElectRoot(b.topo, as)
	require.NoError(t, err)
	assert.Equal(t, state.NodeId("s3"), root)
}

func TestElectRoot_HighestMAC(t *testing.T) {
	b := bridges(t, map[state.NodeId]string{
		"s1": "00:00:00:00:00:0f",
		"s2": "00:00:00:00:00:10",
		"s3": "00:00:00:00:00:0A",
	})
	as, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false, b.all()...)
	require.NoError(t, err)

	root, err := ElectRoot(b.topo, as)
	require.NoError(t, err)
	assert.Equal(t, state.NodeId("s2"), root)
}

func TestElectRoot_PriorityTie(t *testing.T) {
	b := bridges(t, map[state.NodeId]string{
		"s1": "00:00:00:00:00:02",
		"s2": "00:00:00:00:00:01",
	})
	as, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false, b.all()...)
	require.NoError(t, err)

	root, err := ElectRoot(b.topo, as)
	require.NoError(t, err)
	assert.Equal(t, state.NodeId("s1"), root)
}

func TestElectRoot_ExactTieKeepsLowestId(t *testing.T) {
	b := bridges(t, map[state.NodeId]string{
		"s2": "00:00:00:00:00:01",
		"s1": "00:00:00:00:00:01",
	})
	as, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false, b.all()...)
	require.NoError(t, err)

	root, err := ElectRoot(b.topo, as)
	require.NoError(t, err)
	assert.Equal(t, state.NodeId("s1"), root)
}

func TestElectRoot_Empty(t *testing.T) {
	b := newTopo(t)
	as, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false)
	require.NoError(t, err)
	_, err = ElectRoot(b.topo, as)
	assert.ErrorIs(t, err, state.ErrEmptyTopology)
}

// triangle of bridges with root r:
//
//	r --ra-- a
//	 \      /
//	  rb   ab
//	   \  /
//	    b
func stpTriangle(t *testing.T) (*topoBuilder, *state.AS) {
	b := bridges(t, map[state.NodeId]string{
		"a": "00:00:00:00:00:01",
		"b": "00:00:00:00:00:02",
		"r": "00:00:00:00:00:03",
	})
	b.link("ra", "r", "a", 1e6)
	b.link("rb", "r", "b", 1e6)
	b.link("ab", "a", "b", 1e6)
	as, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false, b.all()...)
	require.NoError(t, err)
	return b, as
}

func TestSpanningTree(t *testing.T) {
	b, as := stpTriangle(t)
	e := testEngine(t, b.topo)

	tree, err := e.BuildSpanningTree("stp")
	require.NoError(t, err)
	assert.Equal(t, state.NodeId("r"), tree.Root)
	assert.Equal(t, []state.LinkId{"ra", "rb"}, tree.Links())
	assert.Same(t, tree, as.SpanningTree())
}

func TestSpanningTree_FailedLink(t *testing.T) {
	b, _ := stpTriangle(t)
	e := testEngine(t, b.topo)
	require.NoError(t, e.FailLink("ra"))

	tree, err := e.BuildSpanningTree("stp")
	require.NoError(t, err)
	assert.Equal(t, []state.LinkId{"ab", "rb"}, tree.Links())

	require.NoError(t, e.RestoreLink("ra"))
	tree, err = e.BuildSpanningTree("stp")
	require.NoError(t, err)
	assert.Equal(t, []state.LinkId{"ra", "rb"}, tree.Links())
}

func TestSpanningTree_Costs(t *testing.T) {
	b, as := stpTriangle(t)
	b.cost(as, "rb", 5)
	e := testEngine(t, b.topo)

	tree, err := e.BuildSpanningTree("stp")
	require.NoError(t, err)
	// b is cheaper through a (1+1) than directly (5)
	assert.Equal(t, []state.LinkId{"ab", "ra"}, tree.Links())
}

func TestSpanningTree_IPOnlyLinksIgnored(t *testing.T) {
	b := bridges(t, map[state.NodeId]string{
		"a": "00:00:00:00:00:01",
		"r": "00:00:00:00:00:03",
	})
	b.link("ra", "r", "a", 1e6)
	ip := state.NewLink("ip", state.Endpoint{Node: "r"}, state.Endpoint{Node: "a"}, b.subnet("ra"), 1e6)
	ip.Layers = state.LayerNetwork
	require.NoError(t, b.topo.AddLink(ip))
	_, err := CreateAS(b.topo, "stp", 1, state.ProtocolSTP, false, b.all()...)
	require.NoError(t, err)

	e := testEngine(t, b.topo)
	tree, err := e.BuildSpanningTree("stp")
	require.NoError(t, err)
	assert.Equal(t, []state.LinkId{"ra"}, tree.Links())
}
