package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of an image request, used as the "outcome" label of Served.
const (
	OutcomeImage       = "image"
	OutcomeRedirect    = "redirect"
	OutcomeNoMatch     = "no_match"
	OutcomeMissingFile = "missing_file"
	OutcomeBadAddress  = "bad_address"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		}, []string{"route", "code"},
	)
	Latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "image_http_request_duration_seconds",
		Help:    "Request latency seconds by route pattern",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"route"})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "image_http_in_flight",
		Help: "In-flight HTTP requests",
	})
	Served = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_served_total",
			Help: "Image requests by outcome (image, redirect, no_match, missing_file, bad_address)",
		}, []string{"outcome"},
	)
	Matches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_rule_matches_total",
			Help: "Rule evaluations by winning rule kind (none when nothing matched)",
		}, []string{"kind"},
	)
	GeoLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_geo_lookups_total",
			Help: "Geolocation lookups by provider and result",
		}, []string{"provider", "result"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, Latency, InFlight, Served, Matches, GeoLookups)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Measure records latency and status per chi route pattern, so unmatched
// paths collapse into one "unmatched" series instead of one per URL.
func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		Latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(route, strconv.Itoa(sr.code)).Inc()
	})
}
