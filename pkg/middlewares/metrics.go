package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the request metrics of the receiver
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Panics   prometheus.Counter
}

// NewMetrics creates the request metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netilion",
			Subsystem: "receiver",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "netilion",
			Subsystem: "receiver",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netilion",
			Subsystem: "receiver",
			Name:      "http_panics_total",
			Help:      "Handler panics recovered",
		}),
	}

	for _, c := range []prometheus.Collector{m.Requests, m.Latency, m.Panics} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

type MetricsMw struct {
	metrics *Metrics
	next    http.Handler
}

func NewMetricsMw(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewMetricsHandler(metrics, next)
	}
}

func NewMetricsHandler(metrics *Metrics, next http.Handler) *MetricsMw {
	return &MetricsMw{metrics: metrics, next: next}
}

func (mw *MetricsMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rec := newStatusRecorder(rw, false)
	mw.next.ServeHTTP(rec, r)

	route := routeTemplate(r)
	mw.metrics.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	mw.metrics.Latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
}

// The route template, not the path, keeps label cardinality bounded
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}

	return "unmatched"
}
