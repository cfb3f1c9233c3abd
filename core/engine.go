package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/encodeous/rtsim/perf"
	"github.com/encodeous/rtsim/state"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/errgroup"
)

// buildResult is the outcome of one routing table build of a system.
type buildResult struct {
	revision uint64
	tables   map[state.NodeId]*state.RouteTable
}

// Engine drives route and spanning tree computations over a topology.
//
// Builds of different systems may not run concurrently with each other, or with mutations of
// the topology. A single build computes every source in parallel.
type Engine struct {
	Topology *state.Topology
	Log      *slog.Logger
	Trace    *Trace

	// Parallelism bounds the number of sources computed at once. Zero uses GOMAXPROCS.
	Parallelism int

	mu      sync.Mutex
	results *ttlcache.Cache[string, buildResult]
}

func NewEngine(t *state.Topology, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		Topology: t,
		Log:      log,
		Trace:    NewTrace(),
		results: ttlcache.New[string, buildResult](
			ttlcache.WithTTL[string, buildResult](state.ResultCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, buildResult](),
		),
	}
}

func (e *Engine) Close() error {
	return e.Trace.Close()
}

func (e *Engine) emit(event EngineEvent, system string, node state.NodeId, desc string, args ...any) {
	msg := fmt.Sprintf("%s %s", event.String(), desc)
	if event >= BuildFailed {
		e.Log.Warn(msg, args...)
	} else {
		e.Log.Debug(msg, args...)
	}
	e.Trace.Publish(TraceEvent{
		Event:  event,
		System: system,
		Node:   node,
		Desc:   desc,
	})
}

// BuildRoutingTable computes the routing table of every member node of the named system.
// Tables are installed only once every source has been computed; on error no table changes.
func (e *Engine) BuildRoutingTable(ctx context.Context, name string) (map[state.NodeId]*state.RouteTable, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.Topology
	as, err := t.System(name)
	if err != nil {
		return nil, err
	}
	spec, err := specFor(as.Protocol)
	if err != nil {
		return nil, err
	}
	if spec.newClassifier == nil {
		return nil, fmt.Errorf("%w: %s does not compute routing tables", state.ErrNotSupported, as.Protocol)
	}
	if len(as.Nodes) == 0 {
		return nil, fmt.Errorf("%w: %s has no members", state.ErrEmptyTopology, as.Name)
	}

	rev := t.Revision()
	if item := e.results.Get(name); item != nil && item.Value().revision == rev {
		perf.ReusedResults.Add(1)
		e.emit(ResultReused, name, "", "topology unchanged", "system", name, "revision", rev)
		return item.Value().tables, nil
	}

	start := time.Now()
	refreshBorderRouters(t, as)
	a := allowedSets(t, as)
	sources := as.SortedNodes()
	tables := make([]*state.RouteTable, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	limit := e.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, id := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := t.Node(id)
			if err != nil {
				return err
			}
			nodeStart := time.Now()
			tbl, err := computeRoutes(t, as, n, a, spec.newClassifier(as))
			if err != nil {
				return fmt.Errorf("node %s: %w", id, err)
			}
			perf.NodeBuildLatency.Add(float64(time.Since(nodeStart).Microseconds()))
			tables[i] = tbl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		perf.FailedBuilds.Add(1)
		e.emit(BuildFailed, name, "", "routing table build failed", "system", name, "error", err)
		return nil, err
	}

	out := make(map[state.NodeId]*state.RouteTable, len(sources))
	routes := 0
	for i, id := range sources {
		t.Nodes[id].InstallTable(name, tables[i])
		out[id] = tables[i]
		routes += tables[i].Len()
	}
	e.results.Set(name, buildResult{revision: rev, tables: out}, ttlcache.DefaultTTL)

	elapsed := time.Since(start)
	perf.Rebuilds.Add(1)
	perf.RoutesInstalled.Add(float64(routes))
	perf.BuildLatency.Add(float64(elapsed.Microseconds()))
	e.emit(TableRebuilt, name, "", "installed routing tables", "system", name, "nodes", len(sources), "routes", routes, "elapsed", elapsed)
	if elapsed > state.SlowBuildThreshold {
		e.emit(SlowBuild, name, "", "routing table build took a long time!", "system", name, "elapsed", elapsed)
	}
	return out, nil
}

// BuildSpanningTree elects the root of the named system and computes its spanning tree.
func (e *Engine) BuildSpanningTree(name string) (*state.SpanningTree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.Topology
	as, err := t.System(name)
	if err != nil {
		return nil, err
	}
	spec, err := specFor(as.Protocol)
	if err != nil {
		return nil, err
	}
	if !spec.spanningTree {
		return nil, fmt.Errorf("%w: %s does not compute a spanning tree", state.ErrNotSupported, as.Protocol)
	}
	start := time.Now()
	root, err := ElectRoot(t, as)
	if err != nil {
		perf.FailedBuilds.Add(1)
		e.emit(BuildFailed, name, "", "root election failed", "system", name, "error", err)
		return nil, err
	}
	e.emit(RootElected, name, root, "elected root bridge", "system", name, "root", root)
	tree, err := computeSpanningTree(t, as, root, allowedSets(t, as))
	if err != nil {
		perf.FailedBuilds.Add(1)
		e.emit(BuildFailed, name, root, "spanning tree build failed", "system", name, "error", err)
		return nil, err
	}
	as.InstallTree(tree)
	perf.TreeLatency.Add(float64(time.Since(start).Microseconds()))
	e.emit(TreeRebuilt, name, root, "installed spanning tree", "system", name, "designated", len(tree.Designated))
	return tree, nil
}

// BuildAll rebuilds every system in name order. Systems whose protocol computes neither
// routing tables nor a spanning tree are skipped.
func (e *Engine) BuildAll(ctx context.Context) error {
	for _, name := range e.Topology.SystemNames() {
		as := e.Topology.Systems[name]
		switch {
		case ComputesRoutes(as.Protocol):
			if _, err := e.BuildRoutingTable(ctx, name); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		case ComputesSpanningTree(as.Protocol):
			if _, err := e.BuildSpanningTree(name); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		default:
			e.Log.Debug("skipping system", "system", name, "protocol", as.Protocol)
		}
	}
	return nil
}

// FailLink excludes a link from every subsequent build until it is restored.
func (e *Engine) FailLink(id state.LinkId) error {
	return e.Topology.Fail(id)
}

func (e *Engine) RestoreLink(id state.LinkId) error {
	return e.Topology.Restore(id)
}
