package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the storefront's collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dreamcrest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dreamcrest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	pageViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dreamcrest",
			Name:      "page_views_total",
			Help:      "Public page views recorded.",
		},
		[]string{"route"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dreamcrest",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Read cache lookups by cache and result.",
		},
		[]string{"cache", "result"},
	)

	redirects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dreamcrest",
			Name:      "outbound_redirects_total",
			Help:      "Buy and WhatsApp redirects issued.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		pageViews,
		cacheLookups,
		redirects,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler counts requests and observes their duration.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := Route(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

func RecordPageView(path string) {
	pageViews.WithLabelValues(Route(path)).Inc()
}

func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordRedirect counts an outbound redirect, kind is "buy" or "whatsapp".
func RecordRedirect(kind string) {
	redirects.WithLabelValues(kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Route collapses a path to a low-cardinality label: ids under /product,
// /blog, /buy, /whatsapp and the admin resources are replaced with :id.
func Route(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "product", "blog", "buy", "whatsapp":
		if len(parts) > 1 {
			return "/" + parts[0] + "/:id"
		}
	case "static", "uploads":
		return "/" + parts[0]
	case "admin":
		if len(parts) > 2 {
			return "/admin/" + parts[1] + "/:id"
		}
	case "api":
		if len(parts) > 3 {
			return "/api/" + parts[1] + "/:id/" + parts[3]
		}
	}
	return "/" + trimmed
}
