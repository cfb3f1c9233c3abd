package state

import (
	"fmt"
	"net"
	"sync"
)

// NodeProps is the per-system record of a node.
type NodeProps struct {
	Priority    int
	LoadBalance int // K, the maximum number of equal cost routes kept per subnet
	Router      bool
	Bridge      bool
	RouterId    string
}

type NodeMembership struct {
	Props NodeProps
	Areas map[string]struct{}
}

type Node struct {
	Id      NodeId
	Kind    NodeKind
	MAC     net.HardwareAddr
	Systems map[string]*NodeMembership

	tblMu  sync.RWMutex
	tables map[string]*RouteTable
}

func NewNode(id NodeId, kind NodeKind, mac net.HardwareAddr) *Node {
	return &Node{
		Id:      id,
		Kind:    kind,
		MAC:     mac,
		Systems: make(map[string]*NodeMembership),
		tables:  make(map[string]*RouteTable),
	}
}

func (n *Node) Membership(as string) (*NodeMembership, bool) {
	m, ok := n.Systems[as]
	return m, ok
}

func (n *Node) Props(as string) (NodeProps, error) {
	m, ok := n.Systems[as]
	if !ok {
		return NodeProps{}, fmt.Errorf("%w: node %s is not a member of %s", ErrMissingProperty, n.Id, as)
	}
	return m.Props, nil
}

// RoutingTable returns the table last installed for system as, or nil.
func (n *Node) RoutingTable(as string) *RouteTable {
	n.tblMu.RLock()
	defer n.tblMu.RUnlock()
	return n.tables[as]
}

// InstallTable replaces the node's table for system as. A nil table clears it.
func (n *Node) InstallTable(as string, tbl *RouteTable) {
	n.tblMu.Lock()
	defer n.tblMu.Unlock()
	if tbl == nil {
		delete(n.tables, as)
		return
	}
	n.tables[as] = tbl
}

func (n *Node) String() string {
	return string(n.Id)
}

// Member is anything that can join a system: *Node or *Link.
type Member interface {
	MemberId() string
}

func (n *Node) MemberId() string {
	return string(n.Id)
}
