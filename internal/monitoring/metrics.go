package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_initiated_total",
			Help: "Total reservations initiated",
		},
		[]string{"ticket_type"},
	)

	ReservationsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_confirmed_total",
			Help: "Total reservation confirmation outcomes",
		},
		[]string{"outcome"},
	)

	TicketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued",
		},
		[]string{"ticket_type"},
	)

	InventoryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_decrement_rejections_total",
			Help: "Conditional inventory decrements rejected for lack of stock",
		},
		[]string{"ticket_type"},
	)

	ConfirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reservation_confirm_duration_seconds",
			Help:    "Duration of reservation confirmations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	ReservationsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_reaped_total",
			Help: "Stale pending reservations removed by the reaper",
		},
	)
)

// Confirmation outcomes.
const (
	OutcomeIssued    = "issued"
	OutcomeReplayed  = "replayed"
	OutcomeSoldOut   = "sold_out"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)
