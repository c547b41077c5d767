package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "lyrics_search"

// Metrics holds the collectors for one process. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	lookups         *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Lyrics search requests by HTTP status code.",
		}, []string{"code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving a lyrics search request.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Calls from the endpoint into the lyrics searcher.",
		}, []string{"enhanced", "returned"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Calls into individual lyrics providers.",
		}, []string{"provider", "enhanced", "outcome"}),
	}

	m.Registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.lookups,
		m.providerCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one finished endpoint request.
func (m *Metrics) ObserveRequest(code string, took time.Duration) {
	m.requests.WithLabelValues(code).Inc()
	m.requestDuration.Observe(took.Seconds())
}

// ObserveLookup counts one searcher call. returned marks the call whose
// result goes back to the client.
func (m *Metrics) ObserveLookup(enhanced, returned bool) {
	m.lookups.WithLabelValues(strconv.FormatBool(enhanced), strconv.FormatBool(returned)).Inc()
}

// ObserveProviderCall implements music.CallObserver.
func (m *Metrics) ObserveProviderCall(provider string, enhanced bool, outcome string) {
	m.providerCalls.WithLabelValues(provider, strconv.FormatBool(enhanced), outcome).Inc()
}
