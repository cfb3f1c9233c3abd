package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/encodeous/rtsim/state"
)

// isisClassifier implements the two level hierarchy.
//
// A level-1-only source (not a border router, home area not the Backbone) installs one default
// route towards the nearest border router and L1 routes for its own area only.
// A level-1/level-2 source installs L1 routes inside shared non-Backbone areas and L2 routes
// elsewhere, subject to two Backbone constraints checked in offer.
//
// Each subnet keeps a single entry. An L1 route may replace an L2 route, never the reverse.
type isisClassifier struct {
	as      *state.AS
	level1  bool
	srcArea string
}

func newISISClassifier(as *state.AS) classifier {
	return &isisClassifier{as: as}
}

func (i *isisClassifier) prepare(r *spfRunner) error {
	m, ok := r.source.Membership(i.as.Name)
	if !ok {
		return fmt.Errorf("%w: node %s is not a member of %s", state.ErrMissingProperty, r.source.Id, i.as.Name)
	}
	if i.as.IsBorderRouter(r.source.Id) {
		i.level1 = false
		return nil
	}
	areas := slices.Sorted(maps.Keys(m.Areas))
	if len(areas) == 0 {
		return fmt.Errorf("%w: node %s has no area in %s", state.ErrMissingProperty, r.source.Id, i.as.Name)
	}
	i.srcArea = areas[0]
	i.level1 = i.srcArea != state.BackboneArea
	return nil
}

func (i *isisClassifier) offer(r *spfRunner, c candidate) {
	if i.level1 {
		i.offerLevel1(r, c)
		return
	}
	i.offerLevel2(r, c)
}

func (i *isisClassifier) offerLevel1(r *spfRunner, c candidate) {
	if i.as.IsBorderRouter(c.node) && !r.table.Has(state.DefaultRoute) {
		entry := c.entry
		entry.Type = state.RouteL1Default
		r.table.Set(state.DefaultRoute, entry)
	}
	if len(c.dest.SharedAreas(i.as.Name, c.egress)) == 0 {
		return
	}
	if r.table.Has(c.dest.Subnet) {
		return
	}
	c.entry.Type = state.RouteL1Internal
	r.table.Set(c.dest.Subnet, c.entry)
}

func (i *isisClassifier) offerLevel2(r *spfRunner, c candidate) {
	name := i.as.Name
	shared := c.dest.SharedAreas(name, c.egress)
	c.entry.Type = state.RouteL2Internal
	for _, area := range shared {
		if area != state.BackboneArea {
			c.entry.Type = state.RouteL1Internal
			break
		}
	}
	// Backbone subnets are only reached through a Backbone egress.
	if len(shared) == 0 && c.dest.InArea(name, state.BackboneArea) {
		return
	}
	// A border router reaches foreign level-1 areas through the Backbone, never through its own area.
	if c.entry.Type == state.RouteL2Internal && i.as.IsBorderRouter(r.source.Id) && !c.egress.InArea(name, state.BackboneArea) {
		return
	}
	prefix := c.dest.Subnet
	existing := r.table.Routes(prefix)
	switch {
	case len(existing) == 0:
		r.table.Set(prefix, c.entry)
	case existing[0].Type == state.RouteL2Internal && c.entry.Type == state.RouteL1Internal:
		r.table.Set(prefix, c.entry)
	}
}
