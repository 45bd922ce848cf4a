package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Postback outcomes for requests the reconciler did not accept. Accepted
// postbacks are labelled with the reconciler's own outcome.
const (
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	PostbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monetag_postbacks_total",
		Help: "Postbacks received, labelled by HTTP method and outcome.",
	}, []string{"method", "outcome"})

	MacroResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monetag_macro_resolutions_total",
		Help: "Postbacks carrying literal macros, labelled by whether a session resolved them.",
	}, []string{"result"})

	EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monetag_events_recorded_total",
		Help: "Ad events persisted, labelled by event type and source.",
	}, []string{"event_type", "source"})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monetag_sessions_started_total",
		Help: "Ad sessions created.",
	})

	SessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monetag_sessions_purged_total",
		Help: "Expired ad sessions deleted by cleanup sweeps.",
	})

	PostbackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monetag_postback_duration_ms",
		Help:    "Postback reconciliation latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)
