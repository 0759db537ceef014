// Package metrics counts what the bot does so repeated failures of one
// kind are visible to operators instead of vanishing into logs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Errors counts request failures by taxonomy kind.
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipferry_errors_total",
		Help: "Request failures by error kind.",
	}, []string{"kind"})

	// Deliveries counts successful deliveries by method.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipferry_deliveries_total",
		Help: "Successful deliveries by method.",
	}, []string{"method"})

	// Fallbacks counts stream attempts that fell back to download.
	Fallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipferry_fallbacks_total",
		Help: "Stream deliveries that fell back to download.",
	})

	// Panics counts requests aborted by the recover guard.
	Panics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipferry_request_panics_total",
		Help: "Requests aborted by an unexpected panic.",
	})
)

// Handler serves the default registry; mounted only when an operator
// configures a metrics address.
func Handler() http.Handler {
	return promhttp.Handler()
}
