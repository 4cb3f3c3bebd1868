package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the poll board API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "votes_total",
			Help:      "Votes processed, labelled by outcome (created, changed, unchanged).",
		}, []string{"outcome"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncVote increments the votes_total counter for the given outcome.
func IncVote(outcome string) {
	if votesTotal == nil {
		return
	}
	votesTotal.WithLabelValues(outcome).Inc()
}
