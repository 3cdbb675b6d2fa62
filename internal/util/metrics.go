package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_opened_total",
		Help: "Total number of orders opened on tables",
	})

	OrderItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_order_items_added_total",
		Help: "Total number of item increments across orders",
	})

	TicketsDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_kitchen_tickets_dispatched_total",
		Help: "Total number of kitchen tickets dispatched",
	})

	TicketsFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_kitchen_tickets_finished_total",
		Help: "Total number of kitchen tickets marked done",
	})

	SalesClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_closed_total",
		Help: "Total number of bills closed, by payment method",
	}, []string{"method"})

	SalesRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_revenue_cop_total",
		Help: "Cumulative revenue of closed bills in COP",
	})

	OrdersAbandonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_abandoned_total",
		Help: "Total number of orders abandoned without payment",
	})

	OrderOperationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_operations_failed_total",
		Help: "Total number of refused order operations",
	}, []string{"operation", "reason"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_login_attempts_total",
		Help: "Total number of login attempts",
	}, []string{"status"})

	StateSaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_state_save_latency_seconds",
		Help:    "Latency of wholesale state document writes",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
