package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the portal edge service.
type Metrics struct {
	registry                *prometheus.Registry
	accessRequestsTotal     prometheus.Counter
	ratingsSubmittedTotal   prometheus.Counter
	postWebinarNoticesTotal prometheus.Counter
	playbackErrorsTotal     prometheus.Counter
	activeWatchSessions     prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	accessRequestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_webinar_access_requests_total",
		Help: "Total number of webinar access requests forwarded to the backend",
	})
	ratingsSubmittedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_ratings_submitted_total",
		Help: "Total number of service ratings submitted",
	})
	postWebinarNoticesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_post_webinar_notices_total",
		Help: "Total number of near-end post-webinar notices sent",
	})
	playbackErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_playback_errors_total",
		Help: "Total number of playback errors reported by viewers",
	})
	activeWatchSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "portal_active_watch_sessions",
		Help: "Number of currently connected watch sessions",
	})

	registry.MustRegister(
		accessRequestsTotal,
		ratingsSubmittedTotal,
		postWebinarNoticesTotal,
		playbackErrorsTotal,
		activeWatchSessions,
	)

	return &Metrics{
		registry:                registry,
		accessRequestsTotal:     accessRequestsTotal,
		ratingsSubmittedTotal:   ratingsSubmittedTotal,
		postWebinarNoticesTotal: postWebinarNoticesTotal,
		playbackErrorsTotal:     playbackErrorsTotal,
		activeWatchSessions:     activeWatchSessions,
	}
}

func (m *Metrics) IncAccessRequests() {
	m.accessRequestsTotal.Inc()
}

func (m *Metrics) IncRatingsSubmitted() {
	m.ratingsSubmittedTotal.Inc()
}

func (m *Metrics) IncPostWebinarNotices() {
	m.postWebinarNoticesTotal.Inc()
}

func (m *Metrics) IncPlaybackErrors() {
	m.playbackErrorsTotal.Inc()
}

func (m *Metrics) SetActiveWatchSessions(n int) {
	m.activeWatchSessions.Set(float64(n))
}

// Handler returns an http.Handler serving this registry. updateGauges is
// called before each scrape to refresh gauge values; it may be nil.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
