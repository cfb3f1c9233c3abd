package core

import "github.com/encodeous/rtsim/state"

// ospfClassifier tags routes intra-area when the destination link shares an area with the
// egress link, inter-area otherwise. Intra-area routes displace inter-area ones whatever
// their metric; the reverse never happens.
type ospfClassifier struct {
	as *state.AS
}

func newOSPFClassifier(as *state.AS) classifier {
	return &ospfClassifier{as: as}
}

func (o *ospfClassifier) prepare(*spfRunner) error {
	return nil
}

func (o *ospfClassifier) offer(r *spfRunner, c candidate) {
	c.entry.Type = state.RouteInterArea
	if len(c.dest.SharedAreas(o.as.Name, c.egress)) > 0 {
		c.entry.Type = state.RouteIntraArea
	}
	prefix := c.dest.Subnet
	existing := r.table.Routes(prefix)
	if len(existing) == 0 {
		r.table.Set(prefix, c.entry)
		return
	}
	switch cur := existing[0].Type; {
	case cur == state.RouteIntraArea && c.entry.Type == state.RouteInterArea:
		return
	case cur == state.RouteInterArea && c.entry.Type == state.RouteIntraArea:
		r.table.Set(prefix, c.entry)
	default:
		r.addECMP(prefix, c.entry)
	}
}
