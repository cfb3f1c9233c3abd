package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/encodeous/rtsim/state"
)

// CreateAS registers a new autonomous system over members. Hierarchical systems that are not
// imported get a Backbone area holding every initial member; imported systems restore their
// areas explicitly.
func CreateAS(t *state.Topology, name string, id int, proto state.Protocol, imported bool, members ...state.Member) (*state.AS, error) {
	if _, ok := t.Systems[name]; ok {
		return nil, fmt.Errorf("%w: %s", state.ErrDuplicateAS, name)
	}
	spec, err := specFor(proto)
	if err != nil {
		return nil, err
	}
	as := state.NewAS(name, id, proto, spec.layer)
	if spec.refBW != nil {
		as.RefBandwidth = spec.refBW()
	}
	if spec.areas {
		as.Areas = state.NewAreaPartition()
	}
	t.Systems[name] = as
	if err := populateAS(t, as, spec, imported, members); err != nil {
		// nothing of a failed system stays registered
		_ = Leave(t, as, membersOf(t, as)...)
		delete(t.Systems, name)
		t.Touch()
		return nil, err
	}
	t.Touch()
	return as, nil
}

func populateAS(t *state.Topology, as *state.AS, spec protocolSpec, imported bool, members []state.Member) error {
	if err := Join(t, as, members...); err != nil {
		return err
	}
	if spec.areas && !imported {
		if _, err := CreateArea(t, as, state.BackboneArea, spec.backboneId); err != nil {
			return err
		}
		if err := AssignArea(t, as, state.BackboneArea, members...); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAS removes the system and every member's per-system record.
func DeleteAS(t *state.Topology, name string) error {
	as, err := t.System(name)
	if err != nil {
		return err
	}
	if err := Leave(t, as, membersOf(t, as)...); err != nil {
		return err
	}
	delete(t.Systems, name)
	t.Touch()
	return nil
}

func membersOf(t *state.Topology, as *state.AS) []state.Member {
	out := make([]state.Member, 0, len(as.Nodes)+len(as.Links))
	for _, id := range as.SortedNodes() {
		if n, ok := t.Nodes[id]; ok {
			out = append(out, n)
		}
	}
	for _, id := range as.SortedLinks() {
		if l, ok := t.Links[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Join adds members to as and installs the protocol's default per-system properties.
// Members that already belong to as keep their current record.
func Join(t *state.Topology, as *state.AS, members ...state.Member) error {
	spec, err := specFor(as.Protocol)
	if err != nil {
		return err
	}
	if err := checkMembers(as, members); err != nil {
		return err
	}
	for _, m := range members {
		switch m := m.(type) {
		case *state.Node:
			if as.HasNode(m.Id) {
				continue
			}
			as.Nodes[m.Id] = struct{}{}
			m.Systems[as.Name] = &state.NodeMembership{
				Props: defaultNodeProps(spec, m),
				Areas: make(map[string]struct{}),
			}
		case *state.Link:
			if as.HasLink(m.Id) {
				continue
			}
			as.Links[m.Id] = struct{}{}
			m.Systems[as.Name] = &state.LinkMembership{
				Props: defaultLinkProps(as, spec, m),
				Areas: make(map[string]struct{}),
			}
		}
	}
	t.Touch()
	return nil
}

// checkMembers rejects anything that is not a node or a link before any member is touched.
func checkMembers(as *state.AS, members []state.Member) error {
	for _, m := range members {
		switch m.(type) {
		case *state.Node, *state.Link:
		default:
			return fmt.Errorf("cannot join %T to %s", m, as.Name)
		}
	}
	return nil
}

func defaultNodeProps(spec protocolSpec, n *state.Node) state.NodeProps {
	props := state.NodeProps{}
	switch spec.layer {
	case state.LayerNetwork:
		props.Router = n.Kind == state.KindRouter
		props.LoadBalance = state.DefaultLoadBalance
	case state.LayerDataLink:
		props.Bridge = n.Kind != state.KindHost
		props.Priority = int(state.DefaultBridgePriority)
		props.LoadBalance = 1
	}
	return props
}

func defaultLinkProps(as *state.AS, spec protocolSpec, l *state.Link) [2]state.Properties {
	c := defaultCost(as, spec, l)
	var props [2]state.Properties
	for side := range props {
		props[side] = state.Properties{state.AttrCost: c}
		if spec.layer == state.LayerDataLink {
			props[side][state.AttrPriority] = state.DefaultLinkPriority
		}
	}
	return props
}

// Leave removes members from as. Each member is removed from every area of as,
// its per-system record is discarded and any routing table it held for as is cleared.
func Leave(t *state.Topology, as *state.AS, members ...state.Member) error {
	if err := RemoveFromArea(t, as, members...); err != nil {
		return err
	}
	for _, m := range members {
		switch m := m.(type) {
		case *state.Node:
			delete(as.Nodes, m.Id)
			delete(as.BorderRouters, m.Id)
			delete(m.Systems, as.Name)
			m.InstallTable(as.Name, nil)
		case *state.Link:
			delete(as.Links, m.Id)
			delete(m.Systems, as.Name)
		default:
			return fmt.Errorf("cannot remove %T from %s", m, as.Name)
		}
	}
	t.Touch()
	return nil
}

// CreateArea returns the named area of as, creating it if needed.
func CreateArea(t *state.Topology, as *state.AS, name string, id int) (*state.Area, error) {
	if !as.HasAreas() {
		return nil, fmt.Errorf("%w: %s", state.ErrNoAreas, as.Name)
	}
	if a, ok := as.Areas.Get(name); ok {
		return a, nil
	}
	a := state.NewArea(name, id)
	as.Areas.Put(a)
	t.Touch()
	return a, nil
}

// DeleteArea removes an area. Its members stay in the system without that area.
func DeleteArea(t *state.Topology, as *state.AS, name string) error {
	if !as.HasAreas() {
		return fmt.Errorf("%w: %s", state.ErrNoAreas, as.Name)
	}
	a, ok := as.Areas.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s in %s", state.ErrUnknownArea, name, as.Name)
	}
	for id := range a.Nodes {
		if n, ok := t.Nodes[id]; ok {
			if m, ok := n.Membership(as.Name); ok {
				delete(m.Areas, name)
			}
		}
	}
	for id := range a.Links {
		if l, ok := t.Links[id]; ok {
			if m, ok := l.Membership(as.Name); ok {
				delete(m.Areas, name)
			}
		}
	}
	as.Areas.Delete(name)
	t.Touch()
	return nil
}

// AssignArea puts members into an area of as, joining them to as first when needed.
func AssignArea(t *state.Topology, as *state.AS, area string, members ...state.Member) error {
	if !as.HasAreas() {
		return fmt.Errorf("%w: %s", state.ErrNoAreas, as.Name)
	}
	a, ok := as.Areas.Get(area)
	if !ok {
		return fmt.Errorf("%w: %s in %s", state.ErrUnknownArea, area, as.Name)
	}
	if err := Join(t, as, members...); err != nil {
		return err
	}
	for _, m := range members {
		switch m := m.(type) {
		case *state.Node:
			a.Nodes[m.Id] = struct{}{}
			m.Systems[as.Name].Areas[area] = struct{}{}
		case *state.Link:
			a.Links[m.Id] = struct{}{}
			m.Systems[as.Name].Areas[area] = struct{}{}
		}
	}
	t.Touch()
	return nil
}

// RemoveFromArea takes members out of every area of as. They remain members of as.
func RemoveFromArea(t *state.Topology, as *state.AS, members ...state.Member) error {
	if !as.HasAreas() {
		return nil
	}
	for _, m := range members {
		switch m := m.(type) {
		case *state.Node:
			ms, ok := m.Membership(as.Name)
			if !ok {
				continue
			}
			for _, name := range slices.Sorted(maps.Keys(ms.Areas)) {
				if a, ok := as.Areas.Get(name); ok {
					delete(a.Nodes, m.Id)
				}
				delete(ms.Areas, name)
			}
		case *state.Link:
			ms, ok := m.Membership(as.Name)
			if !ok {
				continue
			}
			for _, name := range slices.Sorted(maps.Keys(ms.Areas)) {
				if a, ok := as.Areas.Get(name); ok {
					delete(a.Links, m.Id)
				}
				delete(ms.Areas, name)
			}
		default:
			return fmt.Errorf("cannot remove %T from areas of %s", m, as.Name)
		}
	}
	t.Touch()
	return nil
}

// LeaveArea takes members out of a single area of as.
func LeaveArea(t *state.Topology, as *state.AS, area string, members ...state.Member) error {
	if !as.HasAreas() {
		return fmt.Errorf("%w: %s", state.ErrNoAreas, as.Name)
	}
	a, ok := as.Areas.Get(area)
	if !ok {
		return fmt.Errorf("%w: %s in %s", state.ErrUnknownArea, area, as.Name)
	}
	for _, m := range members {
		switch m := m.(type) {
		case *state.Node:
			delete(a.Nodes, m.Id)
			if ms, ok := m.Membership(as.Name); ok {
				delete(ms.Areas, area)
			}
		case *state.Link:
			delete(a.Links, m.Id)
			if ms, ok := m.Membership(as.Name); ok {
				delete(ms.Areas, area)
			}
		}
	}
	t.Touch()
	return nil
}

// refreshBorderRouters recomputes the border-router set: nodes in more than one area of as.
func refreshBorderRouters(t *state.Topology, as *state.AS) {
	clear(as.BorderRouters)
	if !as.HasAreas() {
		return
	}
	for id := range as.Nodes {
		n, ok := t.Nodes[id]
		if !ok {
			continue
		}
		if m, ok := n.Membership(as.Name); ok && len(m.Areas) > 1 {
			as.BorderRouters[id] = struct{}{}
		}
	}
}
