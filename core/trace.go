package core

import (
	"github.com/dustin/go-broadcast"
	"github.com/encodeous/rtsim/state"
)

type EngineEvent int

// trace events

const (
	TableRebuilt EngineEvent = iota
	TreeRebuilt
	RootElected
	ResultReused
)

// warn events

const (
	BuildFailed EngineEvent = iota + 1000
	SlowBuild
)

func (e EngineEvent) String() string {
	switch e {
	case TableRebuilt:
		return "TableRebuilt"
	case TreeRebuilt:
		return "TreeRebuilt"
	case RootElected:
		return "RootElected"
	case ResultReused:
		return "ResultReused"
	case BuildFailed:
		return "BuildFailed"
	case SlowBuild:
		return "SlowBuild"
	}
	return "EngineEvent(?)"
}

// TraceEvent is published to trace subscribers for every engine event.
type TraceEvent struct {
	Event  EngineEvent
	System string
	Node   state.NodeId
	Desc   string
}

// Trace fans engine events out to any number of subscribers.
type Trace struct {
	broadcast.Broadcaster
}

func NewTrace() *Trace {
	return &Trace{Broadcaster: broadcast.NewBroadcaster(1024)}
}

// Subscribe returns a channel receiving every subsequent TraceEvent and a function that
// unsubscribes and closes it. The channel must be drained until it is closed.
func (t *Trace) Subscribe(buf int) (<-chan any, func()) {
	ch := make(chan any, buf)
	t.Register(ch)
	return ch, func() {
		t.Unregister(ch)
		close(ch)
	}
}

func (t *Trace) Publish(ev TraceEvent) {
	t.TrySubmit(ev)
}
