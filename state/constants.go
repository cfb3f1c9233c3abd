package state

import (
	"net/netip"
	"time"
)

const (
	// BackboneArea is the name of the area every hierarchical system starts with.
	BackboneArea = "Backbone"

	OSPFBackboneId = 0
	ISISBackboneId = 2
)

var (
	DefaultCost           = 1.0
	DefaultBridgePriority = 32768.0
	DefaultLinkPriority   = 32768.0
	// DefaultLoadBalance is the number of equal cost routes a router keeps per subnet.
	DefaultLoadBalance = 4

	OSPFRefBandwidth = 1e8
	ISISRefBandwidth = 1e4

	DefaultRoute = netip.MustParsePrefix("0.0.0.0/0")

	// ResultCacheTTL bounds how long a build result is reused for an unchanged topology.
	ResultCacheTTL = time.Minute * 5
	// SlowBuildThreshold is the duration after which a rebuild is logged as a warning.
	SlowBuildThreshold = time.Millisecond * 250

	DefaultTopologyPath = "topology.yaml"
)
