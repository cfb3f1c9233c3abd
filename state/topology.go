package state

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Adjacency is one (neighbour, link) pair of a node.
type Adjacency struct {
	Neighbor NodeId
	Link     *Link
}

// Topology is the graph plus every autonomous system defined over it.
//
// Mutations (adding nodes, links and systems, changing membership) must happen on a single goroutine.
// Builds only read the topology, apart from the failed-link set which is safe for concurrent use.
type Topology struct {
	Nodes   map[NodeId]*Node
	Links   map[LinkId]*Link
	Systems map[string]*AS

	adjacency map[NodeId]map[Layer][]Adjacency

	failedMu sync.RWMutex
	failed   map[LinkId]struct{}

	revision atomic.Uint64
}

func NewTopology() *Topology {
	return &Topology{
		Nodes:     make(map[NodeId]*Node),
		Links:     make(map[LinkId]*Link),
		Systems:   make(map[string]*AS),
		adjacency: make(map[NodeId]map[Layer][]Adjacency),
		failed:    make(map[LinkId]struct{}),
	}
}

// Revision increases on every change to the topology, membership or failed-link set.
func (t *Topology) Revision() uint64 {
	return t.revision.Load()
}

// Touch marks the topology as changed.
func (t *Topology) Touch() {
	t.revision.Add(1)
}

func (t *Topology) AddNode(n *Node) error {
	if _, ok := t.Nodes[n.Id]; ok {
		return fmt.Errorf("duplicate node %s", n.Id)
	}
	t.Nodes[n.Id] = n
	t.adjacency[n.Id] = make(map[Layer][]Adjacency)
	t.Touch()
	return nil
}

func (t *Topology) AddLink(l *Link) error {
	if _, ok := t.Links[l.Id]; ok {
		return fmt.Errorf("duplicate link %s", l.Id)
	}
	src, dst := l.Source(), l.Destination()
	if _, ok := t.Nodes[src]; !ok {
		return fmt.Errorf("%w: link %s source %s", ErrUnknownNode, l.Id, src)
	}
	if _, ok := t.Nodes[dst]; !ok {
		return fmt.Errorf("%w: link %s destination %s", ErrUnknownNode, l.Id, dst)
	}
	if src == dst {
		return fmt.Errorf("link %s is a self loop on %s", l.Id, src)
	}
	t.Links[l.Id] = l
	for _, layer := range []Layer{LayerDataLink, LayerNetwork} {
		if !l.Layers.Has(layer) {
			continue
		}
		t.adjacency[src][layer] = append(t.adjacency[src][layer], Adjacency{Neighbor: dst, Link: l})
		t.adjacency[dst][layer] = append(t.adjacency[dst][layer], Adjacency{Neighbor: src, Link: l})
	}
	t.Touch()
	return nil
}

// Neighbors returns the (neighbour, link) pairs of node at the given layer.
func (t *Topology) Neighbors(node NodeId, layer Layer) ([]Adjacency, error) {
	adj, ok := t.adjacency[node]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}
	return adj[layer], nil
}

func (t *Topology) Node(id NodeId) (*Node, error) {
	n, ok := t.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return n, nil
}

func (t *Topology) Link(id LinkId) (*Link, error) {
	l, ok := t.Links[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLink, id)
	}
	return l, nil
}

func (t *Topology) System(name string) (*AS, error) {
	as, ok := t.Systems[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAS, name)
	}
	return as, nil
}

// SystemNames returns the names of every system in sorted order.
func (t *Topology) SystemNames() []string {
	return slices.Sorted(maps.Keys(t.Systems))
}

// Fail adds a link to the failed-link set.
func (t *Topology) Fail(id LinkId) error {
	if _, ok := t.Links[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLink, id)
	}
	t.failedMu.Lock()
	t.failed[id] = struct{}{}
	t.failedMu.Unlock()
	t.Touch()
	return nil
}

// Restore removes a link from the failed-link set.
func (t *Topology) Restore(id LinkId) error {
	if _, ok := t.Links[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLink, id)
	}
	t.failedMu.Lock()
	delete(t.failed, id)
	t.failedMu.Unlock()
	t.Touch()
	return nil
}

func (t *Topology) IsFailed(id LinkId) bool {
	t.failedMu.RLock()
	defer t.failedMu.RUnlock()
	_, ok := t.failed[id]
	return ok
}

// FailedLinks returns a sorted copy of the failed-link set.
func (t *Topology) FailedLinks() []LinkId {
	t.failedMu.RLock()
	defer t.failedMu.RUnlock()
	return slices.Sorted(maps.Keys(t.failed))
}
