package state

import (
	"cmp"
	"fmt"
	"maps"
	"net/netip"
	"slices"

	"github.com/gaissmai/bart"
)

type RouteType uint8

const (
	RouteConnected RouteType = iota
	RouteStatic
	RouteRIP
	RouteIntraArea
	RouteInterArea
	RouteL1Internal
	RouteL1Default
	RouteL2Internal
)

var routeTypeCodes = [...]string{
	RouteConnected:  "C",
	RouteStatic:     "S",
	RouteRIP:        "R",
	RouteIntraArea:  "O",
	RouteInterArea:  "O IA",
	RouteL1Internal: "i L1",
	RouteL1Default:  "i*L1",
	RouteL2Internal: "i L2",
}

// String returns the short code shown in routing table dumps.
func (t RouteType) String() string {
	if int(t) < len(routeTypeCodes) {
		return routeTypeCodes[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

type RouteEntry struct {
	Type        RouteType
	NextHopAddr netip.Addr
	Interface   string
	Metric      float64
	NextHop     NodeId
	Egress      LinkId
}

func (e RouteEntry) String() string {
	return fmt.Sprintf("%s via %s (%s) dev %s metric %g", e.Type, e.NextHop, e.NextHopAddr, e.Interface, e.Metric)
}

// RouteTable maps subnets to their set of route entries. Entries are kept in insertion order.
// Writes are not synchronised: a table is built by a single goroutine and published afterwards.
type RouteTable struct {
	routes map[netip.Prefix][]RouteEntry
	fib    bart.Table[netip.Prefix]
}

func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make(map[netip.Prefix][]RouteEntry)}
}

func (t *RouteTable) Len() int {
	return len(t.routes)
}

func (t *RouteTable) Has(prefix netip.Prefix) bool {
	_, ok := t.routes[prefix.Masked()]
	return ok
}

// Routes returns a copy of the entries stored for prefix.
func (t *RouteTable) Routes(prefix netip.Prefix) []RouteEntry {
	return slices.Clone(t.routes[prefix.Masked()])
}

// Set replaces all entries for prefix.
func (t *RouteTable) Set(prefix netip.Prefix, entries ...RouteEntry) {
	prefix = prefix.Masked()
	if len(entries) == 0 {
		t.Delete(prefix)
		return
	}
	t.routes[prefix] = slices.Clone(entries)
	t.fib.Insert(prefix, prefix)
}

// Add appends an entry to the set stored for prefix.
func (t *RouteTable) Add(prefix netip.Prefix, entry RouteEntry) {
	prefix = prefix.Masked()
	if _, ok := t.routes[prefix]; !ok {
		t.fib.Insert(prefix, prefix)
	}
	t.routes[prefix] = append(t.routes[prefix], entry)
}

func (t *RouteTable) Delete(prefix netip.Prefix) {
	prefix = prefix.Masked()
	delete(t.routes, prefix)
	t.fib.Delete(prefix)
}

// Best returns the lowest metric stored for prefix.
func (t *RouteTable) Best(prefix netip.Prefix) (float64, bool) {
	entries, ok := t.routes[prefix.Masked()]
	if !ok || len(entries) == 0 {
		return 0, false
	}
	best := entries[0].Metric
	for _, e := range entries[1:] {
		best = min(best, e.Metric)
	}
	return best, true
}

// Prefixes returns every subnet in the table in address order.
func (t *RouteTable) Prefixes() []netip.Prefix {
	return slices.SortedFunc(maps.Keys(t.routes), ComparePrefix)
}

// Lookup performs a longest-prefix match of addr against the table.
func (t *RouteTable) Lookup(addr netip.Addr) (netip.Prefix, []RouteEntry, bool) {
	prefix, ok := t.fib.Lookup(addr)
	if !ok {
		return netip.Prefix{}, nil, false
	}
	return prefix, t.Routes(prefix), true
}

// Snapshot returns a deep copy of the table contents.
func (t *RouteTable) Snapshot() map[netip.Prefix][]RouteEntry {
	out := make(map[netip.Prefix][]RouteEntry, len(t.routes))
	for prefix, entries := range t.routes {
		out[prefix] = slices.Clone(entries)
	}
	return out
}

func ComparePrefix(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return cmp.Compare(a.Bits(), b.Bits())
}
