package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resume_matcher"

var (
	// Candidates returned by the retrieval backend, per provider
	RetrievedCandidates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrieved_candidates_total",
		Help:      "Total number of candidates returned by retrieval",
	}, []string{"provider"})

	DuplicatesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicates_dropped_total",
		Help:      "Total number of candidates dropped as duplicates",
	})

	// Evaluations by decision (selected or rejected)
	Evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Total number of candidate evaluations by decision",
	}, []string{"decision"})

	OverallScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "overall_score",
		Help:      "Distribution of overall evaluation scores",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of shortlist and evaluate operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		RetrievedCandidates,
		DuplicatesDropped,
		Evaluations,
		OverallScore,
		OperationDuration,
	}
}

// Init registers the collectors with reg, or with the default registerer when reg is nil.
func Init(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(Collectors()...)
}

// ObserveDuration records the time elapsed since start for operation.
func ObserveDuration(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
