package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medfund",
		Name:      "request_transitions_total",
		Help:      "Donation request status transitions applied.",
	}, []string{"from", "to", "override"})

	DonationsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medfund",
		Name:      "donations_finalized_total",
		Help:      "Donations moved out of pending, by final status.",
	}, []string{"provider", "status"})

	ExchangeRateLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medfund",
		Name:      "exchange_rate_lookups_total",
		Help:      "Exchange rate lookups by the source that answered.",
	}, []string{"source"})
)

func ObserveTransition(from, to string, override bool) {
	RequestTransitions.WithLabelValues(from, to, strconv.FormatBool(override)).Inc()
}

func ObserveDonation(provider, status string) {
	DonationsFinalized.WithLabelValues(provider, status).Inc()
}

func ObserveRateLookup(source string) {
	ExchangeRateLookups.WithLabelValues(source).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
