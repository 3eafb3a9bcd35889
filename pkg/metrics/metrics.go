// Package metrics 提供 Prometheus helper，包含 HTTP、数据库与业务指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"net/http"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 业务指标
	InvestmentsTotal    prometheus.Counter
	InvestmentsRejected *prometheus.CounterVec
	InvestmentAmount    prometheus.Histogram
	OpportunitiesOpen   prometheus.Gauge
	KYCReviewsTotal     *prometheus.CounterVec
	FraudAlertsTotal    prometheus.Counter

	registry *prometheus.Registry
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		InvestmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "investments_total",
			Help:      "Total accepted investments",
		}),
		InvestmentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "investments_rejected_total",
			Help:      "Rejected investments by reason",
		}, []string{"reason"}),
		InvestmentAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "investment_amount_ghs",
			Help:      "Accepted investment amounts in GHS",
			Buckets:   []float64{50, 100, 500, 1000, 5000, 10000, 50000, 100000},
		}),
		OpportunitiesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "opportunities_open",
			Help:      "Number of open investment opportunities",
		}),
		KYCReviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "kyc_reviews_total",
			Help:      "Total KYC reviews by decision",
		}, []string{"decision"}),
		FraudAlertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "investghana",
			Subsystem: serviceName,
			Name:      "fraud_alerts_total",
			Help:      "Total fraud alerts raised",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.InvestmentsTotal,
		m.InvestmentsRejected,
		m.InvestmentAmount,
		m.OpportunitiesOpen,
		m.KYCReviewsTotal,
		m.FraudAlertsTotal,
	)

	return m
}

// Handler 返回 /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
