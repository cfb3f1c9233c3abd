package state

import (
	"fmt"
	"strings"
)

type NodeId string
type LinkId string

// Layer selects which adjacency a link contributes to.
type Layer uint8

const (
	// LayerDataLink is the Ethernet adjacency used by STP and VLAN systems.
	LayerDataLink Layer = 1 << iota
	// LayerNetwork is the IP adjacency used by RIP, OSPF, ISIS and BGP systems.
	LayerNetwork

	LayerAll = LayerDataLink | LayerNetwork
)

func (l Layer) Has(other Layer) bool {
	return l&other == other
}

func (l Layer) String() string {
	switch l {
	case LayerDataLink:
		return "ethernet"
	case LayerNetwork:
		return "ip"
	case LayerAll:
		return "all"
	}
	return fmt.Sprintf("layer(%d)", uint8(l))
}

func ParseLayer(s string) (Layer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ethernet", "l2", "datalink":
		return LayerDataLink, nil
	case "ip", "l3", "network":
		return LayerNetwork, nil
	case "all", "":
		return LayerAll, nil
	}
	return 0, fmt.Errorf("unknown layer %q", s)
}

type Protocol uint8

const (
	ProtocolRIP Protocol = iota + 1
	ProtocolOSPF
	ProtocolISIS
	ProtocolSTP
	ProtocolVLAN
	ProtocolBGP
)

var protocolNames = map[Protocol]string{
	ProtocolRIP:  "RIP",
	ProtocolOSPF: "OSPF",
	ProtocolISIS: "ISIS",
	ProtocolSTP:  "STP",
	ProtocolVLAN: "VLAN",
	ProtocolBGP:  "BGP",
}

func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return fmt.Sprintf("protocol(%d)", uint8(p))
}

func (p Protocol) Valid() bool {
	_, ok := protocolNames[p]
	return ok
}

func ParseProtocol(s string) (Protocol, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for p, name := range protocolNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown protocol %q", s)
}

// Side identifies one endpoint of a link.
type Side uint8

const (
	SideSource Side = iota
	SideDestination
)

func (s Side) Opposite() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == SideSource {
		return "source"
	}
	return "destination"
}

// Attribute enumerates the per-endpoint link attributes recognised by Link.Value.
// Only the numeric ones are stored per system and served by Link.Get.
type Attribute uint8

const (
	AttrCost Attribute = iota
	AttrPriority
	AttrBandwidth
	AttrAddress
	AttrInterface
)

func (a Attribute) Numeric() bool {
	return a <= AttrBandwidth
}

func (a Attribute) String() string {
	switch a {
	case AttrCost:
		return "cost"
	case AttrPriority:
		return "priority"
	case AttrBandwidth:
		return "bandwidth"
	case AttrAddress:
		return "address"
	case AttrInterface:
		return "interface"
	}
	return fmt.Sprintf("attribute(%d)", uint8(a))
}

type NodeKind uint8

const (
	KindRouter NodeKind = iota
	KindSwitch
	KindHost
)

func (k NodeKind) String() string {
	switch k {
	case KindRouter:
		return "router"
	case KindSwitch:
		return "switch"
	case KindHost:
		return "host"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func ParseNodeKind(s string) (NodeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "router", "":
		return KindRouter, nil
	case "switch":
		return KindSwitch, nil
	case "host":
		return KindHost, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}
