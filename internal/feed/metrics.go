package feed

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_lookups",
			Help: "Number of price lookups by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricefeed_cache_hits",
			Help: "Number of latest price lookups served from the cache.",
		},
	)
	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricefeed_cache_misses",
			Help: "Number of latest price lookups that went to the store.",
		},
	)
	publications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricefeed_publications",
			Help: "Number of prices written.",
		},
	)
	feedCollectors = []prometheus.Collector{
		lookups,
		cacheHits,
		cacheMisses,
		publications,
	}

	metricsOnce sync.Once
)

const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

func observeLookup(method string, rec *Record, err error) {
	outcome := outcomeFound
	switch {
	case err != nil && isInvalidArgument(err):
		outcome = outcomeInvalid
	case err != nil:
		outcome = outcomeError
	case rec == nil:
		outcome = outcomeNotFound
	}
	lookups.WithLabelValues(method, outcome).Inc()
}

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(feedCollectors...)
	})
}
