package core

import (
	"fmt"
	"net"

	"github.com/encodeous/rtsim/state"
)

// LoadTopology validates cfg and builds the topology and systems it describes.
func LoadTopology(cfg *state.TopologyCfg) (*state.Topology, error) {
	if err := state.TopologyConfigValidator(cfg); err != nil {
		return nil, err
	}
	t := state.NewTopology()
	for _, nc := range cfg.Nodes {
		var mac net.HardwareAddr
		if nc.MAC != "" {
			var err error
			mac, err = net.ParseMAC(nc.MAC)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nc.Id, err)
			}
		}
		if err := t.AddNode(state.NewNode(nc.Id, nc.Kind, mac)); err != nil {
			return nil, err
		}
	}
	for _, lc := range cfg.Links {
		layers := lc.Layers
		if layers == 0 {
			layers = state.LayerAll
		}
		l := state.NewLink(lc.Id,
			state.Endpoint{Node: lc.Source, Interface: lc.SourceEnd.Interface, Address: lc.SourceEnd.Address},
			state.Endpoint{Node: lc.Destination, Interface: lc.DestinationEnd.Interface, Address: lc.DestinationEnd.Address},
			lc.Subnet.Masked(), lc.Bandwidth)
		l.Layers = layers
		if err := t.AddLink(l); err != nil {
			return nil, err
		}
		if lc.Failed {
			if err := t.Fail(l.Id); err != nil {
				return nil, err
			}
		}
	}

	groups, err := state.ParseGroups(cfg.Groups, cfg.Symbols())
	if err != nil {
		return nil, err
	}
	for i := range cfg.Systems {
		if err := loadSystem(t, cfg, groups, &cfg.Systems[i]); err != nil {
			return nil, fmt.Errorf("system %s: %w", cfg.Systems[i].Name, err)
		}
	}
	return t, nil
}

func resolveMembers(t *state.Topology, cfg *state.TopologyCfg, groups map[string][]string, entries []string) ([]state.Member, error) {
	names, err := state.ExpandMembers(entries, groups, cfg.Symbols())
	if err != nil {
		return nil, err
	}
	members := make([]state.Member, 0, len(names))
	for _, name := range names {
		if n, ok := t.Nodes[state.NodeId(name)]; ok {
			members = append(members, n)
			continue
		}
		l, err := t.Link(state.LinkId(name))
		if err != nil {
			return nil, err
		}
		members = append(members, l)
	}
	return members, nil
}

func loadSystem(t *state.Topology, cfg *state.TopologyCfg, groups map[string][]string, sc *state.SystemCfg) error {
	members, err := resolveMembers(t, cfg, groups, sc.Members)
	if err != nil {
		return err
	}
	// explicit areas replace the default Backbone
	imported := sc.Imported || len(sc.Areas) > 0
	as, err := CreateAS(t, sc.Name, sc.Id, sc.Protocol, imported, members...)
	if err != nil {
		return err
	}
	if sc.RefBandwidth > 0 {
		if err := SetReferenceBandwidth(t, as, sc.RefBandwidth); err != nil {
			return err
		}
	}
	for _, ac := range sc.Areas {
		if _, err := CreateArea(t, as, ac.Name, ac.Id); err != nil {
			return err
		}
		areaMembers, err := resolveMembers(t, cfg, groups, ac.Members)
		if err != nil {
			return err
		}
		if err := AssignArea(t, as, ac.Name, areaMembers...); err != nil {
			return err
		}
	}
	for _, o := range sc.LinkOverride {
		l, err := t.Link(o.Link)
		if err != nil {
			return err
		}
		if o.Cost != nil {
			reverse := *o.Cost
			if o.ReverseCost != nil {
				reverse = *o.ReverseCost
			}
			if err := SetLinkCost(t, as, l, state.SideSource, *o.Cost); err != nil {
				return err
			}
			if err := SetLinkCost(t, as, l, state.SideDestination, reverse); err != nil {
				return err
			}
		} else if o.ReverseCost != nil {
			if err := SetLinkCost(t, as, l, state.SideDestination, *o.ReverseCost); err != nil {
				return err
			}
		}
		if o.Priority != nil {
			for _, side := range []state.Side{state.SideSource, state.SideDestination} {
				if err := l.Set(as.Name, state.AttrPriority, side, *o.Priority); err != nil {
					return err
				}
			}
		}
	}
	for _, o := range sc.NodeOverride {
		n, err := t.Node(o.Node)
		if err != nil {
			return err
		}
		m, ok := n.Membership(as.Name)
		if !ok {
			return fmt.Errorf("%w: node %s is not a member", state.ErrMissingProperty, n.Id)
		}
		if o.Priority != nil {
			m.Props.Priority = int(*o.Priority)
		}
		if o.LoadBalance != nil {
			m.Props.LoadBalance = *o.LoadBalance
		}
	}
	t.Touch()
	return nil
}
