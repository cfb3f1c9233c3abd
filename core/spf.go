package core

import (
	"container/heap"
	"fmt"
	"net/netip"
	"slices"

	"github.com/encodeous/rtsim/state"
)

// classifier decides how a discovered path is recorded in the source's table.
// A classifier instance serves exactly one source.
type classifier interface {
	prepare(r *spfRunner) error
	offer(r *spfRunner, c candidate)
}

// candidate is a popped path from the source: egress is its first link, dest its last.
type candidate struct {
	node   state.NodeId
	dest   *state.Link
	egress *state.Link
	entry  state.RouteEntry
}

// allowed is the restriction a build runs under. It is shared read-only by every per-node search.
type allowed struct {
	nodes map[state.NodeId]struct{}
	links map[state.LinkId]struct{}
}

// allowedSets returns the members of as, minus every link in the failed-link set.
func allowedSets(t *state.Topology, as *state.AS) allowed {
	a := allowed{
		nodes: make(map[state.NodeId]struct{}, len(as.Nodes)),
		links: make(map[state.LinkId]struct{}, len(as.Links)),
	}
	for id := range as.Nodes {
		a.nodes[id] = struct{}{}
	}
	for id := range as.Links {
		if !t.IsFailed(id) {
			a.links[id] = struct{}{}
		}
	}
	return a
}

// spfRunner holds the mutable state of one route computation from one source.
type spfRunner struct {
	topo    *state.Topology
	as      *state.AS
	source  *state.Node
	k       int
	allowed allowed
	table   *state.RouteTable
	cls     classifier
	pq      routeQueue
	seq     uint64
	visited map[state.Pair[state.NodeId, string]]struct{}
}

// computeRoutes builds the routing table of source for system as.
func computeRoutes(t *state.Topology, as *state.AS, source *state.Node, a allowed, cls classifier) (*state.RouteTable, error) {
	props, err := source.Props(as.Name)
	if err != nil {
		return nil, err
	}
	if props.LoadBalance < 1 {
		return nil, fmt.Errorf("%w: node %s has no load-balance paths in %s", state.ErrMissingProperty, source.Id, as.Name)
	}
	r := &spfRunner{
		topo:    t,
		as:      as,
		source:  source,
		k:       props.LoadBalance,
		allowed: a,
		table:   state.NewRouteTable(),
		cls:     cls,
		visited: make(map[state.Pair[state.NodeId, string]]struct{}),
	}
	if err := cls.prepare(r); err != nil {
		return nil, err
	}
	if err := r.process(); err != nil {
		return nil, err
	}
	return r.table, nil
}

func (r *spfRunner) push(cost float64, node state.NodeId, path []*state.Link, exit string) {
	heap.Push(&r.pq, &routeItem{
		cost: cost,
		seq:  r.seq,
		node: node,
		path: path,
		exit: exit,
	})
	r.seq++
}

func (r *spfRunner) process() error {
	heap.Init(&r.pq)
	r.push(0, r.source.Id, nil, "")
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*routeItem)
		key := state.Pair[state.NodeId, string]{V1: item.node, V2: item.exit}
		if _, ok := r.visited[key]; !ok {
			r.visited[key] = struct{}{}
			if err := r.expand(item); err != nil {
				return err
			}
		}
		if len(item.path) > 0 {
			c, err := r.candidate(item)
			if err != nil {
				return err
			}
			r.cls.offer(r, c)
		}
	}
	return nil
}

// expand pushes every allowed neighbour of item. Links taken straight off the source
// seed connected routes at metric 0.
func (r *spfRunner) expand(item *routeItem) error {
	atSource := item.node == r.source.Id
	if atSource && len(item.path) > 0 {
		return nil
	}
	adj, err := r.topo.Neighbors(item.node, r.as.Layer)
	if err != nil {
		return err
	}
	for _, a := range adj {
		l := a.Link
		if slices.Contains(item.path, l) {
			continue
		}
		if _, ok := r.allowed.nodes[a.Neighbor]; !ok {
			continue
		}
		if _, ok := r.allowed.links[l.Id]; !ok {
			continue
		}
		exit := item.exit
		if atSource {
			entry, err := r.entryVia(l)
			if err != nil {
				return err
			}
			entry.Type = state.RouteConnected
			entry.Metric = 0
			r.addECMP(l.Subnet, entry)
			exit = entry.Interface
		}
		cost, err := LinkCost(r.as, l, item.node)
		if err != nil {
			return err
		}
		path := make([]*state.Link, len(item.path), len(item.path)+1)
		copy(path, item.path)
		r.push(item.cost+cost, a.Neighbor, append(path, l), exit)
	}
	return nil
}

// entryVia fills the next hop fields of an entry leaving the source over egress.
func (r *spfRunner) entryVia(egress *state.Link) (state.RouteEntry, error) {
	side, err := egress.SideOf(r.source.Id)
	if err != nil {
		return state.RouteEntry{}, err
	}
	far := egress.Ends[side.Opposite()]
	return state.RouteEntry{
		NextHopAddr: far.Address,
		Interface:   interfaceName(egress, side),
		NextHop:     far.Node,
		Egress:      egress.Id,
	}, nil
}

// interfaceName falls back to the link id so unnamed interfaces stay distinct.
func interfaceName(l *state.Link, side state.Side) string {
	if name := l.Ends[side].Interface; name != "" {
		return name
	}
	return string(l.Id)
}

func (r *spfRunner) candidate(item *routeItem) (candidate, error) {
	egress := item.path[0]
	entry, err := r.entryVia(egress)
	if err != nil {
		return candidate{}, err
	}
	entry.Metric = item.cost
	return candidate{
		node:   item.node,
		dest:   item.path[len(item.path)-1],
		egress: egress,
		entry:  entry,
	}, nil
}

// addECMP applies the shared insertion rule: the first entry claims the subnet, a strictly
// better metric replaces the set, and an equal metric is added while the set is below K.
func (r *spfRunner) addECMP(prefix netip.Prefix, entry state.RouteEntry) bool {
	best, ok := r.table.Best(prefix)
	switch {
	case !ok || entry.Metric < best:
		r.table.Set(prefix, entry)
		return true
	case entry.Metric == best && len(r.table.Routes(prefix)) < r.k:
		if slices.Contains(r.table.Routes(prefix), entry) {
			return false
		}
		r.table.Add(prefix, entry)
		return true
	}
	return false
}

// routeItem is a queue entry: the accumulated cost, the node reached, the links taken and
// the interface the path left the source through.
type routeItem struct {
	cost float64
	seq  uint64
	node state.NodeId
	path []*state.Link
	exit string
}

// routeQueue is a min-heap ordered by (cost, seq, node). seq increases with every push so
// equal cost items pop in insertion order.
type routeQueue []*routeItem

func (pq routeQueue) Len() int { return len(pq) }

func (pq routeQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	if pq[i].seq != pq[j].seq {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].node < pq[j].node
}

func (pq routeQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *routeQueue) Push(x any) { *pq = append(*pq, x.(*routeItem)) }

func (pq *routeQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
