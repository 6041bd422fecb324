package lsm

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the per-process counters/gauges every engine instance
// reports through. They are registered once, lazily, so constructing
// engines in tests never touches a global registry more than once.
type metrics struct {
	inserts     *prometheus.CounterVec
	gets        *prometheus.CounterVec
	updates     *prometheus.CounterVec
	deletes     *prometheus.CounterVec
	flushes     *prometheus.CounterVec
	compactions *prometheus.CounterVec
	sstCount    *prometheus.GaugeVec
}

var (
	metricsOnce sync.Once
	sharedMetrics *metrics
)

func getMetrics() *metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &metrics{
			inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lsmdb_engine_inserts_total",
				Help: "Total number of successful insert calls, per table.",
			}, []string{"table"}),
			gets: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lsmdb_engine_gets_total",
				Help: "Total number of get calls, per table.",
			}, []string{"table"}),
			updates: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lsmdb_engine_updates_total",
				Help: "Total number of update calls, per table.",
			}, []string{"table"}),
			deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lsmdb_engine_deletes_total",
				Help: "Total number of delete calls, per table.",
			}, []string{"table"}),
			flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lsmdb_engine_flushes_total",
				Help: "Total number of memtable rollovers, per table.",
			}, []string{"table"}),
			compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lsmdb_engine_compactions_total",
				Help: "Total number of compaction rounds, per table.",
			}, []string{"table"}),
			sstCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "lsmdb_engine_sstables",
				Help: "Current number of on-disk sorted tables, per table.",
			}, []string{"table"}),
		}
		// Registering against the default registry is best-effort: a
		// second engine package imported twice in tests could already
		// have registered these, which AlreadyRegisteredError tolerates.
		for _, c := range []prometheus.Collector{
			sharedMetrics.inserts, sharedMetrics.gets, sharedMetrics.updates,
			sharedMetrics.deletes, sharedMetrics.flushes, sharedMetrics.compactions,
			sharedMetrics.sstCount,
		} {
			_ = prometheus.Register(c)
		}
	})
	return sharedMetrics
}
