package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)

	TempFilesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "temp_files_deleted_total",
			Help: "Temporary upload files removed by the cleanup job",
		},
	)

	SignInTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sign_in_total",
			Help: "Sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, endpoint string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func CacheHit(namespace string) {
	CacheRequestsTotal.WithLabelValues(namespace, "hit").Inc()
}

func CacheMiss(namespace string) {
	CacheRequestsTotal.WithLabelValues(namespace, "miss").Inc()
}

// RegisterDB exposes connection pool statistics of conn.
func RegisterDB(conn *sql.DB, name string) error {
	err := prometheus.Register(collectors.NewDBStatsCollector(conn, name))
	if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return nil
	}
	return err
}
