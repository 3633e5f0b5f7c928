// Package metrics exposes the service's Prometheus collectors. Everything
// registers on the default registry; the HTTP layer serves it on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jfstremio"

// Resolutions counts resolution requests by outcome: ok, not_found,
// invalid_id, invalid_config, unsafe_url or error.
var Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "resolver",
	Name:      "resolutions_total",
	Help:      "Resolution requests by outcome.",
}, []string{"outcome"})

// StreamsReturned observes how many streams a successful resolution
// produced.
var StreamsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "resolver",
	Name:      "streams_returned",
	Help:      "Stream count per successful resolution.",
	Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
})

// UpstreamRequests counts calls to the remote media server by status class
// ("2xx", "4xx", "5xx") or "network_error".
var UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "upstream",
	Name:      "requests_total",
	Help:      "Requests to the remote media server by status class.",
}, []string{"class"})

// RequestDuration observes inbound HTTP handling time per route.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "Inbound request duration by route.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// StatusClass renders an HTTP status code as its metric label class.
func StatusClass(status int) string {
	if status <= 0 {
		return "network_error"
	}
	return strconv.Itoa(status/100) + "xx"
}
