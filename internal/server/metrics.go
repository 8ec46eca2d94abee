package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	unlockFailures *prometheus.CounterVec
	sessions       prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) (*metrics, error) {
	m := &metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seedvault",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "seedvault",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		unlockFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seedvault",
				Name:      "unlock_failures_total",
				Help:      "Rejected unlock attempts by reason.",
			},
			[]string{"reason"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seedvault",
			Name:      "sessions",
			Help:      "Currently unlocked sessions.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.unlockFailures, m.sessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

var knownPaths = map[string]bool{
	"/health": true, "/metrics": true,
	"/api/health": true, "/api/unlock": true, "/api/lock": true, "/api/session": true,
	"/api/accounts": true, "/api/accounts/current": true, "/api/accounts/select": true,
	"/api/seeds/unique": true, "/api/addresses": true, "/api/transfers": true,
	"/api/audit": true,
}

func (m *metrics) observe(method, path string, status int, d time.Duration) {
	if !knownPaths[path] {
		path = "other"
	}
	code := strconv.Itoa(status)
	m.requests.WithLabelValues(method, path, code).Inc()
	m.duration.WithLabelValues(method, path, code).Observe(d.Seconds())
}
