package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/encodeous/rtsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid builds a w x h mesh of routers with unit costs, which has many equal cost paths.
func grid(t *testing.T, w, h int, proto state.Protocol) *topoBuilder {
	b := newTopo(t)
	id := func(x, y int) state.NodeId { return state.NodeId(fmt.Sprintf("g%d-%d", x, y)) }
	for x := range w {
		for y := range h {
			b.routers(id(x, y))
		}
	}
	for x := range w {
		for y := range h {
			if x+1 < w {
				b.link(state.LinkId(fmt.Sprintf("h%d-%d", x, y)), id(x, y), id(x+1, y), 1e6)
			}
			if y+1 < h {
				b.link(state.LinkId(fmt.Sprintf("v%d-%d", x, y)), id(x, y), id(x, y+1), 1e6)
			}
		}
	}
	_, err := CreateAS(b.topo, "grid", 1, proto, false, b.all()...)
	require.NoError(t, err)
	return b
}

func TestEngine_Deterministic(t *testing.T) {
	for _, proto := range []state.Protocol{state.ProtocolRIP, state.ProtocolOSPF, state.ProtocolISIS} {
		t.Run(proto.String(), func(t *testing.T) {
			serial := testEngine(t, grid(t, 4, 4, proto).topo)
			serial.Parallelism = 1
			parallel := testEngine(t, grid(t, 4, 4, proto).topo)
			parallel.Parallelism = 8

			want, err := serial.BuildRoutingTable(context.Background(), "grid")
			require.NoError(t, err)
			got, err := parallel.BuildRoutingTable(context.Background(), "grid")
			require.NoError(t, err)
			if diff := cmp.Diff(snapshots(want), snapshots(got), tableOpts); diff != "" {
				t.Errorf("tables differ between serial and parallel builds (-want +got):\n%s", diff)
			}

			again := testEngine(t, grid(t, 4, 4, proto).topo)
			third, err := again.BuildRoutingTable(context.Background(), "grid")
			require.NoError(t, err)
			if diff := cmp.Diff(snapshots(want), snapshots(third), tableOpts); diff != "" {
				t.Errorf("tables differ between runs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_InstallsTables(t *testing.T) {
	b, _ := diamond(t)
	e := testEngine(t, b.topo)
	tables, err := e.BuildRoutingTable(context.Background(), "rip")
	require.NoError(t, err)
	assert.Len(t, tables, 5)
	for id, tbl := range tables {
		assert.Same(t, tbl, b.topo.Nodes[id].RoutingTable("rip"))
	}
	// every node reaches every subnet
	for _, tbl := range tables {
		assert.Equal(t, 5, tbl.Len())
	}
}

func TestEngine_ReusesUnchangedResult(t *testing.T) {
	b, _ := diamond(t)
	e := testEngine(t, b.topo)
	first, err := e.BuildRoutingTable(context.Background(), "rip")
	require.NoError(t, err)
	second, err := e.BuildRoutingTable(context.Background(), "rip")
	require.NoError(t, err)
	assert.Same(t, first["a"], second["a"])

	require.NoError(t, e.FailLink("bd"))
	third, err := e.BuildRoutingTable(context.Background(), "rip")
	require.NoError(t, err)
	assert.NotSame(t, first["a"], third["a"])
	routes := third["a"].Routes(b.subnet("de"))
	require.Len(t, routes, 1)
	assert.Equal(t, state.NodeId("c"), routes[0].NextHop)
}

func TestEngine_FailedBuildInstallsNothing(t *testing.T) {
	b, as := diamond(t)
	m, _ := b.topo.Nodes["e"].Membership(as.Name)
	m.Props.LoadBalance = 0

	e := testEngine(t, b.topo)
	_, err := e.BuildRoutingTable(context.Background(), "rip")
	assert.ErrorIs(t, err, state.ErrMissingProperty)
	for _, n := range b.topo.Nodes {
		assert.Nil(t, n.RoutingTable("rip"), n.Id)
	}
}

func TestEngine_Errors(t *testing.T) {
	b, _ := stpTriangle(t)
	_, err := CreateAS(b.topo, "empty", 2, state.ProtocolRIP, false)
	require.NoError(t, err)
	_, err = CreateAS(b.topo, "bgp", 3, state.ProtocolBGP, false, b.all()...)
	require.NoError(t, err)
	e := testEngine(t, b.topo)
	ctx := context.Background()

	_, err = e.BuildRoutingTable(ctx, "nope")
	assert.ErrorIs(t, err, state.ErrUnknownAS)
	_, err = e.BuildRoutingTable(ctx, "stp")
	assert.ErrorIs(t, err, state.ErrNotSupported)
	_, err = e.BuildRoutingTable(ctx, "bgp")
	assert.ErrorIs(t, err, state.ErrNotSupported)
	_, err = e.BuildRoutingTable(ctx, "empty")
	assert.ErrorIs(t, err, state.ErrEmptyTopology)
	_, err = e.BuildSpanningTree("empty")
	assert.ErrorIs(t, err, state.ErrNotSupported)
	assert.ErrorIs(t, e.FailLink("nope"), state.ErrUnknownLink)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	g := grid(t, 2, 2, state.ProtocolRIP)
	ge := testEngine(t, g.topo)
	_, err = ge.BuildRoutingTable(cancelled, "grid")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_BuildAll(t *testing.T) {
	b, _ := stpTriangle(t)
	_, err := CreateAS(b.topo, "rip", 2, state.ProtocolRIP, false, b.all()...)
	require.NoError(t, err)
	_, err = CreateAS(b.topo, "vlan", 3, state.ProtocolVLAN, false, b.all()...)
	require.NoError(t, err)
	e := testEngine(t, b.topo)

	require.NoError(t, e.BuildAll(context.Background()))
	assert.NotNil(t, b.topo.Systems["stp"].SpanningTree())
	assert.NotNil(t, b.topo.Nodes["a"].RoutingTable("rip"))
	assert.Nil(t, b.topo.Nodes["a"].RoutingTable("vlan"))
}

func TestEngine_Trace(t *testing.T) {
	b, _ := diamond(t)
	e := testEngine(t, b.topo)
	events, unsubscribe := e.Trace.Subscribe(16)

	_, err := e.BuildRoutingTable(context.Background(), "rip")
	require.NoError(t, err)

	timeout := time.After(5 * time.Second)
	var got TraceEvent
wait:
	for {
		select {
		case ev := <-events:
			got = ev.(TraceEvent)
			if got.Event == TableRebuilt {
				break wait
			}
		case <-timeout:
			t.Fatal("no TableRebuilt event")
		}
	}
	assert.Equal(t, "rip", got.System)
	assert.Equal(t, "TableRebuilt", got.Event.String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range events {
		}
	}()
	unsubscribe()
	<-done
}

func TestEngine_ECMPBound(t *testing.T) {
	b := grid(t, 4, 3, state.ProtocolRIP)
	as := b.topo.Systems["grid"]
	for _, id := range as.SortedNodes() {
		m, _ := b.topo.Nodes[id].Membership(as.Name)
		m.Props.LoadBalance = 2
	}
	e := testEngine(t, b.topo)
	tables, err := e.BuildRoutingTable(context.Background(), "grid")
	require.NoError(t, err)
	for id, tbl := range tables {
		for _, prefix := range tbl.Prefixes() {
			routes := tbl.Routes(prefix)
			assert.LessOrEqual(t, len(routes), 2, "%s %s", id, prefix)
			for _, r := range routes[1:] {
				assert.Equal(t, routes[0].Metric, r.Metric, "%s %s", id, prefix)
			}
		}
	}
}
