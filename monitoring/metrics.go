package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lfg_active_tickets",
			Help: "Current number of open tickets",
		},
	)

	ticketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfg_tickets_total",
			Help: "Ticket lifecycle transitions",
		},
		[]string{"event", "offer"},
	)

	claimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfg_claims_total",
			Help: "Seat claim attempts by outcome",
		},
		[]string{"outcome"},
	)

	notifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lfg_notify_failures_total",
			Help: "Failed outbound platform calls",
		},
	)
)

func SetActiveTickets(n int) {
	activeTickets.Set(float64(n))
}

func TicketEvent(event, offer string) {
	ticketsTotal.WithLabelValues(event, offer).Inc()
}

func ClaimProcessed(outcome string) {
	claimsTotal.WithLabelValues(outcome).Inc()
}

func NotifyFailed() {
	notifyFailures.Inc()
}
