package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbook_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carbook_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	signupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbook_signups_total",
		Help: "Signup attempts by result",
	}, []string{"result"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbook_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	tokenVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbook_token_verifications_total",
		Help: "Bearer token verifications by result",
	}, []string{"result"})

	bookingOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbook_booking_operations_total",
		Help: "Booking operations by kind and result",
	}, []string{"operation", "result"})

	activeBookings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "carbook_bookings_active",
		Help: "Number of stored bookings",
	})
)

// ObserveHTTPRequest records one HTTP request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSignup records a signup attempt: success, conflict, invalid, error.
func ObserveSignup(result string) {
	signupsTotal.WithLabelValues(result).Inc()
}

// ObserveLogin records a login attempt: success, rejected, invalid, error.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveTokenVerification records a middleware verification: ok, missing,
// invalid.
func ObserveTokenVerification(result string) {
	tokenVerificationsTotal.WithLabelValues(result).Inc()
}

// ObserveBookingOp records a booking operation outcome.
func ObserveBookingOp(operation, result string) {
	bookingOpsTotal.WithLabelValues(operation, result).Inc()
}

// SetActiveBookings sets the stored bookings gauge.
func SetActiveBookings(count int) {
	if count < 0 {
		count = 0
	}
	activeBookings.Set(float64(count))
}
