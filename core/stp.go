package core

import (
	"container/heap"
	"fmt"

	"github.com/encodeous/rtsim/state"
)

// ElectRoot picks the root bridge of as: the lowest bridge priority, then the highest
// link-layer address. Members are scanned in id order, so an exact tie on both keeps the
// lowest id.
func ElectRoot(t *state.Topology, as *state.AS) (state.NodeId, error) {
	if len(as.Nodes) == 0 {
		return "", fmt.Errorf("%w: %s has no members", state.ErrEmptyTopology, as.Name)
	}
	var root *state.Node
	var rootPrio int
	for _, id := range as.SortedNodes() {
		n, err := t.Node(id)
		if err != nil {
			return "", err
		}
		props, err := n.Props(as.Name)
		if err != nil {
			return "", err
		}
		switch {
		case root == nil,
			props.Priority < rootPrio,
			props.Priority == rootPrio && state.CompareHardwareAddr(n.MAC, root.MAC) > 0:
			root = n
			rootPrio = props.Priority
		}
	}
	return root.Id, nil
}

// computeSpanningTree runs a single path search from the root, visited strictly by node.
// The last link of each node's path becomes a designated link.
func computeSpanningTree(t *state.Topology, as *state.AS, root state.NodeId, a allowed) (*state.SpanningTree, error) {
	tree := &state.SpanningTree{
		Root:       root,
		Designated: make(map[state.LinkId]struct{}),
	}
	visited := make(map[state.NodeId]struct{}, len(a.nodes))
	r := &spfRunner{topo: t, as: as}
	heap.Init(&r.pq)
	r.push(0, root, nil, "")
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*routeItem)
		if _, ok := visited[item.node]; ok {
			continue
		}
		visited[item.node] = struct{}{}
		if len(item.path) > 0 {
			tree.Designated[item.path[len(item.path)-1].Id] = struct{}{}
		}
		adj, err := t.Neighbors(item.node, as.Layer)
		if err != nil {
			return nil, err
		}
		for _, adjacent := range adj {
			l := adjacent.Link
			if _, ok := visited[adjacent.Neighbor]; ok {
				continue
			}
			if _, ok := a.nodes[adjacent.Neighbor]; !ok {
				continue
			}
			if _, ok := a.links[l.Id]; !ok {
				continue
			}
			cost, err := LinkCost(as, l, item.node)
			if err != nil {
				return nil, err
			}
			path := make([]*state.Link, len(item.path), len(item.path)+1)
			copy(path, item.path)
			r.push(item.cost+cost, adjacent.Neighbor, append(path, l), "")
		}
	}
	return tree, nil
}
