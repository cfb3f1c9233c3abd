package state

import "errors"

var (
	// ErrEmptyTopology is returned when a computation is asked to run over a system with no members.
	ErrEmptyTopology = errors.New("empty topology")

	// ErrUnknownNode is returned when a referenced node has no adjacency in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMissingProperty indicates a member of a system without its per-system property record.
	// The membership model installs these on join, so this is an invariant violation.
	ErrMissingProperty = errors.New("missing per-system property")

	ErrUnknownLink  = errors.New("unknown link")
	ErrUnknownAS    = errors.New("unknown autonomous system")
	ErrDuplicateAS  = errors.New("duplicate autonomous system")
	ErrUnknownArea  = errors.New("unknown area")
	ErrNoAreas      = errors.New("autonomous system has no areas")
	ErrNotSupported = errors.New("operation not supported by protocol")
)
