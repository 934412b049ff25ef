package platform

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks reconciler activity for the /metrics endpoint.
type Metrics struct {
	syncRuns       *prometheus.CounterVec
	coursesSynced  prometheus.Counter
	lessonsSynced  prometheus.Counter
	fetchDurations prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darasa",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Reconciler runs by final status.",
		}, []string{"status"}),
		coursesSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darasa",
			Subsystem: "sync",
			Name:      "courses_synced_total",
			Help:      "Courses upserted across all runs.",
		}),
		lessonsSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darasa",
			Subsystem: "sync",
			Name:      "lessons_synced_total",
			Help:      "Lessons upserted across all runs.",
		}),
		fetchDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "darasa",
			Subsystem: "sync",
			Name:      "fetch_duration_seconds",
			Help:      "Catalog fetch duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.syncRuns, m.coursesSynced, m.lessonsSynced, m.fetchDurations)
	}
	return m
}

func (m *Metrics) observeRun(status string, courses, lessons int) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(status).Inc()
	m.coursesSynced.Add(float64(courses))
	m.lessonsSynced.Add(float64(lessons))
}

func (m *Metrics) observeFetch(seconds float64) {
	if m == nil {
		return
	}
	m.fetchDurations.Observe(seconds)
}
