package perf

import (
	"expvar"
	"strings"

	"github.com/encodeous/metric"
)

var (
	EngineLatency    = metric.NewHistogram("1m1s")
	RelaxationPasses = metric.NewHistogram("1m1s")
	TreesComputed    = metric.NewCounter("1m1s")
	ChangesApplied   = metric.NewCounter("1m1s")
)

func init() {
	expvar.Publish("routesim:EngineLatency (µs)", EngineLatency)
	expvar.Publish("routesim:RelaxationPasses", RelaxationPasses)
	expvar.Publish("routesim:TreesComputed", TreesComputed)
	expvar.Publish("routesim:ChangesApplied", ChangesApplied)
}

// Snapshot returns the current value of every published metric, keyed by name.
func Snapshot() map[string]string {
	out := make(map[string]string)
	expvar.Do(func(kv expvar.KeyValue) {
		if strings.HasPrefix(kv.Key, "routesim:") {
			out[kv.Key] = kv.Value.String()
		}
	})
	return out
}
