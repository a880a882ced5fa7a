// Package metrics defines the custom Prometheus metrics of the commerce API.
// Every collector registers itself with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// ── Orders ────────────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts successful checkouts.
// Labels:
//   - shipping_method: "standard" or "express"
//   - replayed: "true" when an Idempotency-Key returned an earlier order
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed through checkout.",
	},
	[]string{"shipping_method", "replayed"},
)

// ── Documents ─────────────────────────────────────────────────────────────────

// InvoicesIssuedTotal counts new invoices.
// Label:
//   - source: "checkout" or "manual"
var InvoicesIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_issued_total",
		Help:      "Total number of invoices issued, by source.",
	},
	[]string{"source"},
)

var BillsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_issued_total",
		Help:      "Total number of bills issued by cashiers.",
	},
)

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// StatusTransitionsTotal counts accepted status changes.
// Labels:
//   - entity: "order", "invoice" or "bill"
//   - from, to: the statuses on either side of the change
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of accepted status transitions.",
	},
	[]string{"entity", "from", "to"},
)

// CascadesTotal counts follow-up changes one transition caused on another
// document.
// Label:
//   - cascade: "invoice_cancelled", "invoice_paid_kept" or "order_processing"
var CascadesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascades_total",
		Help:      "Total number of cross-document cascades, by outcome.",
	},
	[]string{"cascade"},
)

// ── Auth ──────────────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected credentials and tokens.
// Label:
//   - reason: "token_missing", "token_invalid", "token_expired",
//     "account_inactive", "invalid_credentials" or "forbidden"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of authentication and authorization failures.",
	},
	[]string{"reason"},
)
