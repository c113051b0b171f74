package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TablesOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tables_opened_total",
		Help: "Total number of table sessions opened",
	})

	TablesClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tables_closed_total",
		Help: "Total number of table sessions closed and billed",
	})

	TableCloseRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "table_close_rejected_total",
		Help: "Total number of rejected table close attempts",
	}, []string{"reason"})

	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders submitted to the kitchen",
	})

	OrderSubmitFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submit_failed_total",
		Help: "Total number of failed order submissions",
	}, []string{"reason"})

	OrderStatusAdvancedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_advanced_total",
		Help: "Total number of order status advances",
	}, []string{"new_status"})

	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of cart line additions",
	})

	CartRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_rejections_total",
		Help: "Total number of rejected cart mutations",
	}, []string{"reason"})

	ComandaGrandTotalCentavos = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "comanda_grand_total_centavos",
		Help:    "Distribution of closed comanda grand totals in centavos",
		Buckets: prometheus.ExponentialBuckets(500, 2, 12),
	})

	CatalogLookupLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_lookup_latency_seconds",
		Help:    "Latency of product catalog lookups",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Catalog cache lookups by outcome",
	}, []string{"outcome"})

	ArchiveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "comanda_archive_latency_seconds",
		Help:    "Latency of comanda archival writes",
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
