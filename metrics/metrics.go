// Package metrics exposes Prometheus collectors for the caching middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HitCounter tracks responses served from cache.
	HitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respcache_hits_total",
		Help: "Total number of responses served from cache",
	})
	// MissCounter tracks cacheable requests that reached the handler.
	MissCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respcache_misses_total",
		Help: "Total number of cache misses",
	})
	// StoreCounter tracks responses written to the cache.
	StoreCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respcache_stores_total",
		Help: "Total number of responses stored in the cache",
	})
	// EvictionCounter tracks entries evicted by the size budget.
	EvictionCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respcache_evictions_total",
		Help: "Total number of entries evicted from the cache",
	})
	// CoalescedCounter tracks requests that waited behind another
	// population of the same key instead of executing the handler.
	CoalescedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "respcache_coalesced_total",
		Help: "Total number of requests coalesced by the stampede guard",
	})
)

// Register registers all middleware metrics on the provided registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(HitCounter, MissCounter, StoreCounter, EvictionCounter, CoalescedCounter)
}
