package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	ledgerOperationsTotal   *prometheus.CounterVec
	ledgerOperationDuration prometheus.Histogram
	transferAmount          prometheus.Histogram
	accountsCreatedTotal    *prometheus.CounterVec
	userSearchDuration      prometheus.Histogram
	authEventsTotal         *prometheus.CounterVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		ledgerOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger operations by type and outcome",
			},
			[]string{"operation", "status"},
		),
		ledgerOperationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_milliseconds",
				Help:    "Ledger operation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		transferAmount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transfer_amount",
				Help:    "Transfer amount in base currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		accountsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_created_total",
				Help: "Total number of accounts created by type",
			},
			[]string{"account_type"},
		),
		userSearchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "user_search_duration_seconds",
				Help:    "User directory search duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		authEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "ledger_operation":
		operation := tags["operation"]
		status := tags["status"]
		if operation != "" && status != "" {
			m.ledgerOperationsTotal.WithLabelValues(operation, status).Inc()
		}
	case "account_created":
		if accountType := tags["account_type"]; accountType != "" {
			m.accountsCreatedTotal.WithLabelValues(accountType).Inc()
		}
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "ledger_operation":
		m.ledgerOperationDuration.Observe(float64(duration.Milliseconds()))
	case "user_search":
		m.userSearchDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	if name == "transfer_amount" {
		m.transferAmount.Observe(value)
	}
}
