package core

import "github.com/encodeous/rtsim/state"

// ripClassifier records every destination with the plain ECMP rule.
type ripClassifier struct{}

func newRIPClassifier(*state.AS) classifier {
	return ripClassifier{}
}

func (ripClassifier) prepare(*spfRunner) error {
	return nil
}

func (ripClassifier) offer(r *spfRunner, c candidate) {
	c.entry.Type = state.RouteRIP
	r.addECMP(c.dest.Subnet, c.entry)
}
