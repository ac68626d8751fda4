package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinic", Name: "records_created_total", Help: "Number of records persisted by kind (service, doctor, booking)."},
		[]string{"kind"},
	)
	DuplicatesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinic", Name: "duplicates_rejected_total", Help: "Number of inserts rejected by a uniqueness constraint, by kind."},
		[]string{"kind"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinic", Name: "http_requests_total", Help: "Number of HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "clinic", Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RecordsCreated)
	reg.MustRegister(DuplicatesRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
}
