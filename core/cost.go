package core

import (
	"fmt"

	"github.com/encodeous/rtsim/state"
)

// defaultCost is the cost a link receives in both directions when it joins as.
// Bandwidth referenced costs are fractional and never rounded.
func defaultCost(as *state.AS, spec protocolSpec, l *state.Link) float64 {
	if spec.cost == costBandwidth && l.Bandwidth > 0 {
		return as.RefBandwidth / l.Bandwidth
	}
	return state.DefaultCost
}

// LinkCost is the cost of leaving from over l in system as.
func LinkCost(as *state.AS, l *state.Link, from state.NodeId) (float64, error) {
	return l.CostFrom(as.Name, from)
}

// SetReferenceBandwidth changes the reference bandwidth of a bandwidth referenced system
// and recomputes the cost of every member link in both directions.
func SetReferenceBandwidth(t *state.Topology, as *state.AS, bw float64) error {
	spec, err := specFor(as.Protocol)
	if err != nil {
		return err
	}
	if spec.cost != costBandwidth {
		return fmt.Errorf("%w: %s uses a fixed cost", state.ErrNotSupported, as.Protocol)
	}
	if bw <= 0 {
		return fmt.Errorf("reference bandwidth must be positive, got %g", bw)
	}
	as.RefBandwidth = bw
	for _, id := range as.SortedLinks() {
		l, err := t.Link(id)
		if err != nil {
			return err
		}
		c := defaultCost(as, spec, l)
		for _, side := range []state.Side{state.SideSource, state.SideDestination} {
			if err := l.Set(as.Name, state.AttrCost, side, c); err != nil {
				return err
			}
		}
	}
	t.Touch()
	return nil
}

// SetLinkCost overrides the cost of leaving the given side of l in system as.
func SetLinkCost(t *state.Topology, as *state.AS, l *state.Link, side state.Side, cost float64) error {
	if cost < 0 {
		return fmt.Errorf("link %s: cost must not be negative, got %g", l.Id, cost)
	}
	if err := l.Set(as.Name, state.AttrCost, side, cost); err != nil {
		return err
	}
	t.Touch()
	return nil
}
