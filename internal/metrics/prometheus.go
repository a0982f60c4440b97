package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/seatplan/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// PrometheusCollector never panics on duplicate registration until it is
// actually exercised.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	seatClicks       *prometheus.CounterVec
	constraintOps    *prometheus.CounterVec
	placements       prometheus.Gauge
	reconcileDropped *prometheus.CounterVec
	changesDropped   prometheus.Counter

	solvesStarted  prometheus.Counter
	solvesFinished *prometheus.CounterVec
	solveDuration  *prometheus.HistogramVec
	solvePolls     *prometheus.CounterVec

	nudgeCommits *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace ("seatplan" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "seatplan"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.seatClicks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "editor",
			Name:      "seat_clicks_total",
			Help:      "Seat clicks by resulting transition.",
		}, []string{"result"})

		p.constraintOps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "editor",
			Name:      "constraint_ops_total",
			Help:      "Constraint manager operations by op and kind.",
		}, []string{"op", "kind"})

		p.placements = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "editor",
			Name:      "placed_students",
			Help:      "Number of students currently placed.",
		})

		p.reconcileDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "editor",
			Name:      "reconcile_dropped_total",
			Help:      "Entries dropped by schema reconciliation (placement, forbidden, constraint).",
		}, []string{"what"})

		p.changesDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "editor",
			Name:      "change_notifications_dropped_total",
			Help:      "Change notifications dropped because a subscriber was slow.",
		})

		p.solvesStarted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solve",
			Name:      "jobs_started_total",
			Help:      "Solver jobs submitted.",
		})

		p.solvesFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solve",
			Name:      "jobs_finished_total",
			Help:      "Solver jobs finished by outcome.",
		}, []string{"outcome"})

		p.solveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solve",
			Name:      "job_duration_seconds",
			Help:      "Time from submission to completion in seconds by outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"outcome"})

		p.solvePolls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solve",
			Name:      "polls_total",
			Help:      "Status polls by reported solver status.",
		}, []string{"status"})

		p.nudgeCommits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "layout",
			Name:      "nudge_commits_total",
			Help:      "Table nudge commit attempts (accepted, refused).",
		}, []string{"result"})

		p.reg.MustRegister(p.seatClicks)
		p.reg.MustRegister(p.constraintOps)
		p.reg.MustRegister(p.placements)
		p.reg.MustRegister(p.reconcileDropped)
		p.reg.MustRegister(p.changesDropped)
		p.reg.MustRegister(p.solvesStarted)
		p.reg.MustRegister(p.solvesFinished)
		p.reg.MustRegister(p.solveDuration)
		p.reg.MustRegister(p.solvePolls)
		p.reg.MustRegister(p.nudgeCommits)
	})
}

// RecordSeatClick increments the click counter for the transition taken.
func (p *PrometheusCollector) RecordSeatClick(result types.ClickResult) {
	p.ensureRegistered()
	p.seatClicks.WithLabelValues(result.String()).Inc()
}

// RecordConstraintOp increments the constraint operation counter.
func (p *PrometheusCollector) RecordConstraintOp(op string, kind types.Kind) {
	p.ensureRegistered()
	p.constraintOps.WithLabelValues(op, string(kind)).Inc()
}

// RecordPlacementCount sets the placed students gauge.
func (p *PrometheusCollector) RecordPlacementCount(count int) {
	p.ensureRegistered()
	p.placements.Set(float64(count))
}

// RecordReconcileDropped adds dropped entries per category.
func (p *PrometheusCollector) RecordReconcileDropped(placements, forbidden, constraints int) {
	p.ensureRegistered()
	p.reconcileDropped.WithLabelValues("placement").Add(float64(placements))
	p.reconcileDropped.WithLabelValues("forbidden").Add(float64(forbidden))
	p.reconcileDropped.WithLabelValues("constraint").Add(float64(constraints))
}

// RecordStateChangeDropped increments the dropped notification counter.
func (p *PrometheusCollector) RecordStateChangeDropped() {
	p.ensureRegistered()
	p.changesDropped.Inc()
}

// RecordSolveStarted increments the submitted jobs counter.
func (p *PrometheusCollector) RecordSolveStarted() {
	p.ensureRegistered()
	p.solvesStarted.Inc()
}

// RecordSolveFinished records the job outcome and its duration.
func (p *PrometheusCollector) RecordSolveFinished(outcome string, duration float64) {
	p.ensureRegistered()
	p.solvesFinished.WithLabelValues(outcome).Inc()
	p.solveDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordSolvePoll increments the poll counter for the reported status.
func (p *PrometheusCollector) RecordSolvePoll(status types.SolverStatus) {
	p.ensureRegistered()
	p.solvePolls.WithLabelValues(string(status)).Inc()
}

// RecordNudgeCommit increments the commit counter.
func (p *PrometheusCollector) RecordNudgeCommit(accepted bool) {
	p.ensureRegistered()
	result := "accepted"
	if !accepted {
		result = "refused"
	}
	p.nudgeCommits.WithLabelValues(result).Inc()
}
