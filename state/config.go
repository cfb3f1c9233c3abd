package state

import (
	"fmt"
	"maps"
	"net"
	"net/netip"
	"os"
	"slices"
	"strings"

	"github.com/cilium/cilium/pkg/ip"
	"github.com/goccy/go-yaml"
)

type NodeCfg struct {
	Id   NodeId
	Kind NodeKind `yaml:",omitempty"`
	MAC  string   `yaml:"mac,omitempty"`
}

type EndpointCfg struct {
	Interface string     `yaml:",omitempty"`
	Address   netip.Addr `yaml:",omitempty"`
}

type LinkCfg struct {
	Id             LinkId
	Source         NodeId
	Destination    NodeId
	Subnet         netip.Prefix
	Bandwidth      float64
	Layers         Layer       `yaml:",omitempty"` // ethernet, ip or all (default)
	SourceEnd      EndpointCfg `yaml:"source_end,omitempty"`
	DestinationEnd EndpointCfg `yaml:"destination_end,omitempty"`
	Failed         bool        `yaml:",omitempty"` // starts in the failed-link set
}

type AreaCfg struct {
	Name    string
	Id      int
	Members []string
}

// LinkOverrideCfg replaces the default per-system properties of a link. Cost applies when
// leaving the source, ReverseCost when leaving the destination (defaults to Cost).
type LinkOverrideCfg struct {
	Link        LinkId
	Cost        *float64 `yaml:",omitempty"`
	ReverseCost *float64 `yaml:"reverse_cost,omitempty"`
	Priority    *float64 `yaml:",omitempty"`
}

type NodeOverrideCfg struct {
	Node        NodeId
	Priority    *float64 `yaml:",omitempty"`
	LoadBalance *int     `yaml:"lb_paths,omitempty"`
}

type SystemCfg struct {
	Name         string
	Id           int
	Protocol     Protocol
	Members      []string
	RefBandwidth float64           `yaml:"ref_bandwidth,omitempty"`
	Imported     bool              `yaml:",omitempty"` // skip creating the default Backbone
	Areas        []AreaCfg         `yaml:",omitempty"`
	LinkOverride []LinkOverrideCfg `yaml:"link_overrides,omitempty"`
	NodeOverride []NodeOverrideCfg `yaml:"node_overrides,omitempty"`
}

// TopologyCfg is the on-disk description of a network and its autonomous systems.
type TopologyCfg struct {
	Nodes   []NodeCfg
	Links   []LinkCfg
	Groups  []string    `yaml:",omitempty"`
	Systems []SystemCfg `yaml:",omitempty"`
}

func ReadTopologyConfig(path string) (*TopologyCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTopologyConfig(file)
}

func ParseTopologyConfig(data []byte) (*TopologyCfg, error) {
	var cfg TopologyCfg
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Symbols returns every node and link id, which are the terminal names member lists expand to.
func (c *TopologyCfg) Symbols() []string {
	symbols := make([]string, 0, len(c.Nodes)+len(c.Links))
	for _, n := range c.Nodes {
		symbols = append(symbols, string(n.Id))
	}
	for _, l := range c.Links {
		symbols = append(symbols, string(l.Id))
	}
	slices.Sort(symbols)
	return slices.Compact(symbols)
}

func (c *TopologyCfg) IsNode(id string) bool {
	return slices.ContainsFunc(c.Nodes, func(cfg NodeCfg) bool {
		return string(cfg.Id) == id
	})
}

func (c *TopologyCfg) IsLink(id string) bool {
	return slices.ContainsFunc(c.Links, func(cfg LinkCfg) bool {
		return string(cfg.Id) == id
	})
}

func parseSymbolList(s string, validSymbols []string) ([]string, error) {
	spl := strings.Split(strings.TrimSpace(s), ",")
	line := make([]string, 0)
	for _, s := range spl {
		x := strings.TrimSpace(s)
		if x == "" {
			continue
		}
		if !slices.Contains(validSymbols, x) {
			return nil, fmt.Errorf(`%s is not a valid node/link/group`, x)
		}
		line = append(line, x)
	}
	if len(line) == 0 {
		return nil, fmt.Errorf(`node/link/group list must not be empty`)
	}
	slices.Sort(line)
	return line, nil
}

/*
ParseGroups evaluates group definitions down to terminal symbols. Syntax:

core = r1, r2, r1-r2

edge = r3, r4

all = core, edge // groups may reference other groups

symbols represents the set of unique terminal names (node and link ids) the groups evaluate down to
*/
func ParseGroups(defs []string, symbols []string) (map[string][]string, error) {
	groups := make(map[string][]string)
	allSymbols := slices.Clone(symbols)

	// pass 0, collect all group names
	for _, line := range defs {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		spl := strings.Split(line, "=")
		if len(spl) != 2 {
			return nil, fmt.Errorf("invalid group: %s. group definition must contain one '='", line)
		}
		grp := strings.TrimSpace(spl[0])
		if slices.Contains(symbols, grp) {
			return nil, fmt.Errorf("group name must not be a node or link name: %s", grp)
		}
		allSymbols = append(allSymbols, grp)
	}
	slices.Sort(allSymbols)
	allSymbols = slices.Compact(allSymbols)

	// used for topological sorting
	// map: group -> []<groups that the group depends on>
	topo := make(map[string][]string)
	expansion := make(map[string][]string)

	// pass 1, parse definitions
	for _, line := range defs {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		spl := strings.Split(line, "=")
		grp := strings.TrimSpace(spl[0])
		if _, ok := groups[grp]; ok {
			return nil, fmt.Errorf("duplicate group name: %s", grp)
		}
		lst, err := parseSymbolList(spl[1], allSymbols)
		if err != nil {
			return nil, err
		}
		deps := make([]string, 0)
		expansion[grp] = make([]string, 0)
		for _, l := range lst {
			if !slices.Contains(symbols, l) {
				deps = append(deps, l)
			} else {
				expansion[grp] = append(expansion[grp], l)
			}
		}
		slices.Sort(deps)
		topo[grp] = slices.Compact(deps)
		groups[grp] = lst
	}

	// pass 2, expand group names in dependency order
	for len(topo) > 0 {
		var group string
		for _, k := range slices.Sorted(maps.Keys(topo)) {
			if len(topo[k]) == 0 {
				group = k
				break
			}
		}
		if group == "" {
			cycleNodes := slices.Sorted(maps.Keys(topo))
			return nil, fmt.Errorf("cycle detected in groups: %v", cycleNodes)
		}
		delete(topo, group)

		for k, deps := range topo {
			if slices.Contains(deps, group) {
				expansion[k] = append(expansion[k], expansion[group]...)
				slices.Sort(expansion[k])
				expansion[k] = slices.Compact(expansion[k])
				topo[k] = slices.DeleteFunc(deps, func(dep string) bool {
					return dep == group
				})
			}
		}
	}
	for k := range expansion {
		slices.Sort(expansion[k])
		expansion[k] = slices.Compact(expansion[k])
	}
	return expansion, nil
}

// ExpandMembers resolves member entries ("r1, core", "l2") to terminal node and link ids.
func ExpandMembers(entries []string, groups map[string][]string, symbols []string) ([]string, error) {
	valid := slices.Clone(symbols)
	for g := range groups {
		valid = append(valid, g)
	}
	out := make([]string, 0)
	for _, entry := range entries {
		names, err := parseSymbolList(entry, valid)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if exp, ok := groups[name]; ok {
				out = append(out, exp...)
			} else {
				out = append(out, name)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func toIPNets(prefixes []netip.Prefix) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(prefixes))
	for _, p := range prefixes {
		if p.IsValid() {
			nets = append(nets, &net.IPNet{
				IP:   p.Addr().AsSlice(),
				Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
			})
		}
	}
	return nets
}

func fromIPNets(nets []*net.IPNet) []netip.Prefix {
	output := make([]netip.Prefix, 0, len(nets))
	for _, n := range nets {
		if addr, ok := netip.AddrFromSlice(n.IP); ok {
			ones, _ := n.Mask.Size()
			output = append(output, netip.PrefixFrom(addr.Unmap(), ones))
		}
	}
	return output
}

// CoalescePrefix merges adjacent and overlapping prefixes into the smallest covering set.
func CoalescePrefix(prefixes []netip.Prefix) []netip.Prefix {
	ipv4, ipv6 := ip.CoalesceCIDRs(toIPNets(prefixes))
	out := fromIPNets(append(ipv4, ipv6...))
	slices.SortFunc(out, ComparePrefix)
	return out
}
