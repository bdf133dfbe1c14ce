// Package metrics declares the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenia_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenia_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Detection
	DetectionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenia_detection_requests_total",
			Help: "Calls to the hosted detection model by outcome",
		},
		[]string{"status"},
	)

	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "greenia_detection_duration_seconds",
			Help:    "Latency of the hosted detection model",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	// Recognition
	ItemsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenia_items_detected_total",
			Help: "Detected items by plastic type code",
		},
		[]string{"plastic_type"},
	)

	RecognitionBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenia_recognition_batches_total",
			Help: "Recognition batches by persistence outcome",
		},
		[]string{"status"},
	)

	CO2SavedKgTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenia_co2_saved_kg_total",
			Help: "Estimated CO2 savings recorded, in kg",
		},
	)

	// Accounts
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenia_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	UsersProvisionedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenia_users_provisioned_total",
			Help: "Users created by administrators",
		},
	)

	PasswordResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenia_password_resets_total",
			Help: "Password recovery events by stage and result",
		},
		[]string{"stage", "result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
