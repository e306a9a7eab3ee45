package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "path", "status"},
	)

	guardDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_decisions_total",
			Help: "Total screen authorization decisions",
		},
		[]string{"screen", "decision"},
	)

	loginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total login attempts",
		},
		[]string{"result"},
	)

	authRateLimitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rate_limit_total",
			Help: "Total auth rate limit blocks",
		},
		[]string{"path"},
	)

	roomConfigLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_config_loads_total",
			Help: "Total room configuration loads",
		},
		[]string{"fallback"},
	)

	roomConfigLoadsDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "room_config_loads_discarded_total",
			Help: "Room configuration loads dropped as stale or late",
		},
	)

	roomConfigSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_config_saves_total",
			Help: "Total room configuration commits",
		},
		[]string{"result"},
	)

	activityEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_total",
			Help: "Activity log entries recorded and published",
		},
		[]string{"sink", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		guardDecisionsTotal,
		loginAttemptsTotal,
		authRateLimitTotal,
		roomConfigLoadsTotal,
		roomConfigLoadsDiscardedTotal,
		roomConfigSavesTotal,
		activityEventsTotal,
	)
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func ObserveHTTP(method, path, status string) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func ObserveHTTPDuration(method, path, status string, seconds float64) {
	httpRequestDurationSeconds.WithLabelValues(method, path, status).Observe(seconds)
}

// GuardDecision counts a decision; target is empty for render.
func GuardDecision(screen, target string) {
	decision := "render"
	if target != "" {
		decision = "redirect:" + target
	}
	guardDecisionsTotal.WithLabelValues(screen, decision).Inc()
}

func LoginAttempt(ok bool) {
	loginAttemptsTotal.WithLabelValues(result(ok)).Inc()
}

func AuthRateLimited(path string) {
	authRateLimitTotal.WithLabelValues(path).Inc()
}

func RoomConfigLoaded(fallback bool) {
	roomConfigLoadsTotal.WithLabelValues(strconv.FormatBool(fallback)).Inc()
}

func RoomConfigLoadDiscarded() {
	roomConfigLoadsDiscardedTotal.Inc()
}

func RoomConfigSaved(ok bool) {
	roomConfigSavesTotal.WithLabelValues(result(ok)).Inc()
}

func ActivityEvent(sink string, ok bool) {
	activityEventsTotal.WithLabelValues(sink, result(ok)).Inc()
}
