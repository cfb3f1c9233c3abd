package core

import (
	"fmt"

	"github.com/encodeous/rtsim/state"
)

type costPolicy uint8

const (
	// costFixed counts hops.
	costFixed costPolicy = iota
	// costBandwidth divides the system's reference bandwidth by the link bandwidth.
	costBandwidth
)

// protocolSpec describes how a protocol behaves. Every protocol specific decision goes through this table.
type protocolSpec struct {
	layer      state.Layer
	areas      bool
	backboneId int
	refBW      func() float64
	cost       costPolicy
	// newClassifier is nil for protocols that do not compute routing tables.
	newClassifier func(as *state.AS) classifier
	spanningTree  bool
}

var protocols = map[state.Protocol]protocolSpec{
	state.ProtocolRIP: {
		layer:         state.LayerNetwork,
		cost:          costFixed,
		newClassifier: newRIPClassifier,
	},
	state.ProtocolOSPF: {
		layer:         state.LayerNetwork,
		areas:         true,
		backboneId:    state.OSPFBackboneId,
		refBW:         func() float64 { return state.OSPFRefBandwidth },
		cost:          costBandwidth,
		newClassifier: newOSPFClassifier,
	},
	state.ProtocolISIS: {
		layer:         state.LayerNetwork,
		areas:         true,
		backboneId:    state.ISISBackboneId,
		refBW:         func() float64 { return state.ISISRefBandwidth },
		cost:          costBandwidth,
		newClassifier: newISISClassifier,
	},
	state.ProtocolSTP: {
		layer:        state.LayerDataLink,
		cost:         costFixed,
		spanningTree: true,
	},
	state.ProtocolVLAN: {
		layer: state.LayerDataLink,
		cost:  costFixed,
	},
	state.ProtocolBGP: {
		layer: state.LayerNetwork,
		cost:  costFixed,
	},
}

func specFor(p state.Protocol) (protocolSpec, error) {
	spec, ok := protocols[p]
	if !ok {
		return protocolSpec{}, fmt.Errorf("%w: %s", state.ErrNotSupported, p)
	}
	return spec, nil
}

// ComputesRoutes reports whether systems running p build routing tables.
func ComputesRoutes(p state.Protocol) bool {
	spec, err := specFor(p)
	return err == nil && spec.newClassifier != nil
}

// ComputesSpanningTree reports whether systems running p build a spanning tree.
func ComputesSpanningTree(p state.Protocol) bool {
	spec, err := specFor(p)
	return err == nil && spec.spanningTree
}
