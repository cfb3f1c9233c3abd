package state

import (
	"fmt"
	"net/netip"
	"slices"
)

type Endpoint struct {
	Node      NodeId
	Interface string
	Address   netip.Addr
}

// Properties is the per-endpoint property record a link carries for each system it belongs to.
type Properties map[Attribute]float64

// LinkMembership is what a link stores for one system: a property record per side
// and the set of areas it is in. Systems without areas keep the set empty.
type LinkMembership struct {
	Props [2]Properties
	Areas map[string]struct{}
}

type Link struct {
	Id        LinkId
	Ends      [2]Endpoint
	Subnet    netip.Prefix
	Bandwidth float64
	Layers    Layer
	Systems   map[string]*LinkMembership
}

func NewLink(id LinkId, src, dst Endpoint, subnet netip.Prefix, bandwidth float64) *Link {
	return &Link{
		Id:        id,
		Ends:      [2]Endpoint{src, dst},
		Subnet:    subnet,
		Bandwidth: bandwidth,
		Layers:    LayerAll,
		Systems:   make(map[string]*LinkMembership),
	}
}

func (l *Link) Source() NodeId {
	return l.Ends[SideSource].Node
}

func (l *Link) Destination() NodeId {
	return l.Ends[SideDestination].Node
}

// SideOf returns the side of the link attached to node.
func (l *Link) SideOf(node NodeId) (Side, error) {
	switch node {
	case l.Ends[SideSource].Node:
		return SideSource, nil
	case l.Ends[SideDestination].Node:
		return SideDestination, nil
	}
	return 0, fmt.Errorf("%w: %s is not an endpoint of link %s", ErrUnknownNode, node, l.Id)
}

// Far returns the endpoint opposite to node.
func (l *Link) Far(node NodeId) (Endpoint, error) {
	side, err := l.SideOf(node)
	if err != nil {
		return Endpoint{}, err
	}
	return l.Ends[side.Opposite()], nil
}

func (l *Link) Membership(as string) (*LinkMembership, bool) {
	m, ok := l.Systems[as]
	return m, ok
}

// Get returns a numeric attribute of the given side of the link as seen by system as.
// Bandwidth is a raw link attribute and does not require membership.
func (l *Link) Get(as string, attr Attribute, side Side) (float64, error) {
	if !attr.Numeric() {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrNotSupported, attr)
	}
	if attr == AttrBandwidth {
		return l.Bandwidth, nil
	}
	m, ok := l.Systems[as]
	if !ok {
		return 0, fmt.Errorf("%w: link %s is not a member of %s", ErrMissingProperty, l.Id, as)
	}
	v, ok := m.Props[side][attr]
	if !ok {
		return 0, fmt.Errorf("%w: link %s has no %s on %s side in %s", ErrMissingProperty, l.Id, attr, side, as)
	}
	return v, nil
}

// Value returns any attribute of the given side of the link as seen by system as: a float64
// for numeric attributes, a netip.Addr for AttrAddress and a string for AttrInterface.
func (l *Link) Value(as string, attr Attribute, side Side) (any, error) {
	switch attr {
	case AttrAddress:
		return l.Ends[side].Address, nil
	case AttrInterface:
		return l.Ends[side].Interface, nil
	}
	return l.Get(as, attr, side)
}

// Set writes a numeric attribute on one side of the link for system as. Endpoint addresses
// and interfaces belong to the link itself and are not set per system.
func (l *Link) Set(as string, attr Attribute, side Side, value float64) error {
	if !attr.Numeric() {
		return fmt.Errorf("%w: %s is not set per system", ErrNotSupported, attr)
	}
	m, ok := l.Systems[as]
	if !ok {
		return fmt.Errorf("%w: link %s is not a member of %s", ErrMissingProperty, l.Id, as)
	}
	m.Props[side][attr] = value
	return nil
}

// CostFrom is the cost of leaving node over this link in system as.
func (l *Link) CostFrom(as string, node NodeId) (float64, error) {
	side, err := l.SideOf(node)
	if err != nil {
		return 0, err
	}
	return l.Get(as, AttrCost, side)
}

func (l *Link) String() string {
	return string(l.Id)
}

func (l *Link) MemberId() string {
	return string(l.Id)
}

// InArea reports whether the link is in the named area of system as.
func (l *Link) InArea(as, area string) bool {
	m, ok := l.Systems[as]
	if !ok {
		return false
	}
	_, ok = m.Areas[area]
	return ok
}

// SharedAreas returns the sorted areas of system as that both links belong to.
func (l *Link) SharedAreas(as string, other *Link) []string {
	a, ok := l.Systems[as]
	if !ok {
		return nil
	}
	b, ok := other.Systems[as]
	if !ok {
		return nil
	}
	shared := make([]string, 0)
	for area := range a.Areas {
		if _, ok := b.Areas[area]; ok {
			shared = append(shared, area)
		}
	}
	slices.Sort(shared)
	return shared
}
