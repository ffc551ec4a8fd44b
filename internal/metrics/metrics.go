package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics CRM 服务指标。nil *Metrics 的方法均为空操作，便于测试
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	replenished   prometheus.Counter
	eventFailures *prometheus.CounterVec
}

// New 在 registry 上注册全部指标；registry 为 nil 时新建
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	f := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_mutations_total",
			Help: "Mutation outcomes by operation and result kind",
		}, []string{"operation", "outcome"}),
		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_job_runs_total",
			Help: "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_job_duration_seconds",
			Help:    "Scheduled job run time",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"job"}),
		replenished: f.NewCounter(prometheus.CounterOpts{
			Name: "crm_products_replenished_total",
			Help: "Products restocked by low-stock replenishment",
		}),
		eventFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_event_publish_failures_total",
			Help: "Domain events that could not be published",
		}, []string{"type"}),
	}
}

func (m *Metrics) ObserveHTTP(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncMutation outcome 为 "ok" 或错误 kind
func (m *Metrics) IncMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveJob(job, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) AddReplenished(n int) {
	if m == nil {
		return
	}
	m.replenished.Add(float64(n))
}

func (m *Metrics) IncEventFailure(eventType string) {
	if m == nil {
		return
	}
	m.eventFailures.WithLabelValues(eventType).Inc()
}
