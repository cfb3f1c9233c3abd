package state

import (
	"maps"
	"slices"
	"sync"
)

type Area struct {
	Name  string
	Id    int
	Nodes map[NodeId]struct{}
	Links map[LinkId]struct{}
}

func NewArea(name string, id int) *Area {
	return &Area{
		Name:  name,
		Id:    id,
		Nodes: make(map[NodeId]struct{}),
		Links: make(map[LinkId]struct{}),
	}
}

// AreaPartition is the optional capability of hierarchical systems to split their members into areas.
type AreaPartition struct {
	areas map[string]*Area
}

func NewAreaPartition() *AreaPartition {
	return &AreaPartition{areas: make(map[string]*Area)}
}

func (p *AreaPartition) Get(name string) (*Area, bool) {
	a, ok := p.areas[name]
	return a, ok
}

func (p *AreaPartition) Put(a *Area) {
	p.areas[a.Name] = a
}

func (p *AreaPartition) Delete(name string) {
	delete(p.areas, name)
}

// Names returns the area names in sorted order.
func (p *AreaPartition) Names() []string {
	return slices.Sorted(maps.Keys(p.areas))
}

func (p *AreaPartition) Len() int {
	return len(p.areas)
}

// SpanningTree is the output of an STP build.
type SpanningTree struct {
	Root       NodeId
	Designated map[LinkId]struct{}
}

func (t *SpanningTree) Links() []LinkId {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.Designated))
}

// AS is an autonomous system: one protocol instance over a set of member nodes and links.
type AS struct {
	Name     string
	Id       int
	Protocol Protocol
	Layer    Layer

	Nodes map[NodeId]struct{}
	Links map[LinkId]struct{}

	// Areas is nil for systems without areas.
	Areas *AreaPartition

	RefBandwidth  float64
	BorderRouters map[NodeId]struct{}

	treeMu sync.RWMutex
	tree   *SpanningTree
}

func NewAS(name string, id int, proto Protocol, layer Layer) *AS {
	return &AS{
		Name:          name,
		Id:            id,
		Protocol:      proto,
		Layer:         layer,
		Nodes:         make(map[NodeId]struct{}),
		Links:         make(map[LinkId]struct{}),
		BorderRouters: make(map[NodeId]struct{}),
	}
}

func (a *AS) HasAreas() bool {
	return a.Areas != nil
}

func (a *AS) HasNode(id NodeId) bool {
	_, ok := a.Nodes[id]
	return ok
}

func (a *AS) HasLink(id LinkId) bool {
	_, ok := a.Links[id]
	return ok
}

func (a *AS) IsBorderRouter(id NodeId) bool {
	_, ok := a.BorderRouters[id]
	return ok
}

// SortedNodes returns member node ids in ascending order.
func (a *AS) SortedNodes() []NodeId {
	return slices.Sorted(maps.Keys(a.Nodes))
}

func (a *AS) SortedLinks() []LinkId {
	return slices.Sorted(maps.Keys(a.Links))
}

func (a *AS) SpanningTree() *SpanningTree {
	a.treeMu.RLock()
	defer a.treeMu.RUnlock()
	return a.tree
}

func (a *AS) InstallTree(t *SpanningTree) {
	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	a.tree = t
}

func (a *AS) String() string {
	return a.Name
}
