package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fizl",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fizl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fizl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	calorieCalculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fizl",
			Subsystem: "calories",
			Name:      "calculations_total",
			Help:      "Total number of calorie estimations, by method.",
		},
		[]string{"method"},
	)

	streakUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fizl",
			Subsystem: "streaks",
			Name:      "updates_total",
			Help:      "Total number of streak recomputations persisted.",
		},
	)

	healthKitSamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fizl",
			Subsystem: "healthkit",
			Name:      "samples_ingested_total",
			Help:      "Total number of HealthKit samples ingested, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		calorieCalculations,
		streakUpdates,
		healthKitSamples,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func IncInFlight() { httpInFlight.Inc() }
func DecInFlight() { httpInFlight.Dec() }

func RecordCalorieCalculation(method string) {
	calorieCalculations.WithLabelValues(method).Inc()
}

func RecordStreakUpdate() {
	streakUpdates.Inc()
}

func RecordHealthKitSamples(kind string, count int) {
	healthKitSamples.WithLabelValues(kind).Add(float64(count))
}
