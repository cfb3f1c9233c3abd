package state

import (
	"fmt"
	"net"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9a-zA-Z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func NodeConfigValidator(node *NodeCfg) error {
	if err := NameValidator(string(node.Id)); err != nil {
		return err
	}
	if node.Kind > KindHost {
		return fmt.Errorf("node %s: unknown node kind %s", node.Id, node.Kind)
	}
	if node.MAC != "" {
		if _, err := net.ParseMAC(node.MAC); err != nil {
			return fmt.Errorf("node %s: %w", node.Id, err)
		}
	}
	return nil
}

func LinkConfigValidator(cfg *TopologyCfg, link *LinkCfg) error {
	if err := NameValidator(string(link.Id)); err != nil {
		return err
	}
	if !cfg.IsNode(string(link.Source)) {
		return fmt.Errorf("link %s: node %s not defined", link.Id, link.Source)
	}
	if !cfg.IsNode(string(link.Destination)) {
		return fmt.Errorf("link %s: node %s not defined", link.Id, link.Destination)
	}
	if link.Source == link.Destination {
		return fmt.Errorf("link %s: source and destination are both %s", link.Id, link.Source)
	}
	if link.Bandwidth <= 0 {
		return fmt.Errorf("link %s: bandwidth must be positive, got %g", link.Id, link.Bandwidth)
	}
	if link.Layers&^LayerAll != 0 {
		return fmt.Errorf("link %s: unknown layer %s", link.Id, link.Layers)
	}
	return nil
}

func SystemConfigValidator(cfg *TopologyCfg, groups map[string][]string, sys *SystemCfg) error {
	if err := NameValidator(sys.Name); err != nil {
		return err
	}
	proto := sys.Protocol
	if proto == 0 {
		return fmt.Errorf("system %s: missing protocol", sys.Name)
	}
	if !proto.Valid() {
		return fmt.Errorf("system %s: unknown protocol %s", sys.Name, proto)
	}
	if sys.RefBandwidth < 0 {
		return fmt.Errorf("system %s: ref_bandwidth must not be negative", sys.Name)
	}
	symbols := cfg.Symbols()
	members, err := ExpandMembers(sys.Members, groups, symbols)
	if err != nil {
		return fmt.Errorf("system %s: %w", sys.Name, err)
	}
	areaNames := make([]string, 0, len(sys.Areas))
	for _, area := range sys.Areas {
		if proto != ProtocolOSPF && proto != ProtocolISIS {
			return fmt.Errorf("system %s: %s does not support areas", sys.Name, proto)
		}
		if slices.Contains(areaNames, area.Name) {
			return fmt.Errorf("system %s: duplicate area %s", sys.Name, area.Name)
		}
		areaNames = append(areaNames, area.Name)
		areaMembers, err := ExpandMembers(area.Members, groups, symbols)
		if err != nil {
			return fmt.Errorf("system %s area %s: %w", sys.Name, area.Name, err)
		}
		for _, m := range areaMembers {
			if !slices.Contains(members, m) {
				return fmt.Errorf("system %s area %s: %s is not a member of the system", sys.Name, area.Name, m)
			}
		}
	}
	for _, o := range sys.LinkOverride {
		if !slices.Contains(members, string(o.Link)) {
			return fmt.Errorf("system %s: override for non-member link %s", sys.Name, o.Link)
		}
	}
	for _, o := range sys.NodeOverride {
		if !slices.Contains(members, string(o.Node)) {
			return fmt.Errorf("system %s: override for non-member node %s", sys.Name, o.Node)
		}
		if o.LoadBalance != nil && *o.LoadBalance < 1 {
			return fmt.Errorf("system %s: node %s lb_paths must be at least 1", sys.Name, o.Node)
		}
	}
	return nil
}

func TopologyConfigValidator(cfg *TopologyCfg) error {
	ids := make([]string, 0)
	for i := range cfg.Nodes {
		if err := NodeConfigValidator(&cfg.Nodes[i]); err != nil {
			return err
		}
		ids = append(ids, string(cfg.Nodes[i].Id))
	}
	for i := range cfg.Links {
		if err := LinkConfigValidator(cfg, &cfg.Links[i]); err != nil {
			return err
		}
		ids = append(ids, string(cfg.Links[i].Id))
	}
	slices.Sort(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return fmt.Errorf("duplicate node/link id: %s", ids[i])
		}
	}
	groups, err := ParseGroups(cfg.Groups, cfg.Symbols())
	if err != nil {
		return err
	}
	names := make([]string, 0, len(cfg.Systems))
	for i := range cfg.Systems {
		sys := &cfg.Systems[i]
		if slices.Contains(names, sys.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateAS, sys.Name)
		}
		names = append(names, sys.Name)
		if err := SystemConfigValidator(cfg, groups, sys); err != nil {
			return err
		}
	}
	return nil
}
