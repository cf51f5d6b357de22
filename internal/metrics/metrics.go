// Package metrics exposes Prometheus counters for sync activity. Counters
// register against the default registry; embedding applications scrape them
// through promhttp alongside their own metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for MasterLookupsTotal. PushesTotal's status label carries
// the logging package's status values.
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupFailed = "failed"
)

var (
	// EventsPulledTotal counts snapshots mapped from pulled pages,
	// tombstones included.
	EventsPulledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftcal_events_pulled_total",
		Help: "Number of remote events pulled and mapped into snapshots.",
	})

	// EventsDroppedTotal counts pulled items rejected by the mapper.
	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftcal_events_dropped_total",
		Help: "Number of pulled items dropped due to malformed data.",
	})

	// PushesTotal counts outbox pushes by operation and outcome.
	PushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftcal_pushes_total",
		Help: "Number of outbox operations pushed to the remote calendar.",
	}, []string{"operation", "status"})

	// MasterLookupsTotal counts recurring-master rule lookups during pulls.
	MasterLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftcal_master_lookups_total",
		Help: "Number of series master lookups performed for rule backfill.",
	}, []string{"result"})
)
