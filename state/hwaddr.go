package state

import (
	"bytes"
	"cmp"
	"net"
)

// CompareHardwareAddr orders link-layer addresses group by group as numbers, so "0a" and "0A"
// compare equal and "00:00:00:00:00:10" sorts after "00:00:00:00:00:0f".
// Shorter addresses sort first. The result is a strict total order over parsed addresses.
func CompareHardwareAddr(a, b net.HardwareAddr) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return bytes.Compare(a, b)
}

// MustParseMAC is a test and config helper that panics on malformed input.
func MustParseMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}
