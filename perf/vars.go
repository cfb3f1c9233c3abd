package perf

import (
	"expvar"
	"fmt"
	"io"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	BuildLatency     = metric.NewHistogram("1m1s")
	NodeBuildLatency = metric.NewHistogram("1m1s")
	TreeLatency      = metric.NewHistogram("1m1s")
	Rebuilds         = metric.NewCounter("10s1s")
	ReusedResults    = metric.NewCounter("10s1s")
	RoutesInstalled  = metric.NewCounter("10s1s")
	FailedBuilds     = metric.NewCounter("10s1s")
)

// published lists the exported variables in the order WriteStats prints them.
var published = []struct {
	name string
	v    expvar.Var
}{
	{"rtsim:BuildLatency (µs)", BuildLatency},
	{"rtsim:NodeBuildLatency (µs)", NodeBuildLatency},
	{"rtsim:TreeLatency (µs)", TreeLatency},
	{"rtsim:Rebuilds/s", Rebuilds},
	{"rtsim:ReusedResults/s", ReusedResults},
	{"rtsim:RoutesInstalled/s", RoutesInstalled},
	{"rtsim:FailedBuilds/s", FailedBuilds},
}

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	for _, p := range published {
		expvar.Publish(p.name, p.v)
	}
}

// WriteStats prints every published variable as "name: value", one per line.
func WriteStats(w io.Writer) error {
	for _, p := range published {
		if _, err := fmt.Fprintf(w, "%s: %s\n", p.name, expvar.Get(p.name).String()); err != nil {
			return err
		}
	}
	return nil
}

// Serve exposes /debug/metrics and /debug/vars on addr until the listener fails.
func Serve(addr string) error {
	return http.ListenAndServe(addr, nil)
}
