// Package metrics counts and times the operations run by the tonelli command.
// Nothing is served over the network: the registry is dumped once, in the
// node exporter textfile format, when the command exits.
package metrics

import (
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"tonelli/tonelli"
)

const namespace = "tonelli"

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeAbsent  = "absent"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder owns a private registry with the operation counter and latency
// histogram.
type Recorder struct {
	registry *prometheus.Registry
	clock    clockwork.Clock

	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewRecorder creates a Recorder timing with clock, or the wall clock when
// clock is nil.
func NewRecorder(clock clockwork.Clock) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		clock:    clock,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of operations run, by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent in each operation.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 10, 9),
		}, []string{"op"}),
	}
	r.registry.MustRegister(r.ops, r.latency)
	return r
}

// Start begins timing op. The returned function records the outcome derived
// from err and the elapsed time; call it exactly once.
func (r *Recorder) Start(op string) func(err error) {
	start := r.clock.Now()
	return func(err error) {
		r.latency.WithLabelValues(op).Observe(r.clock.Since(start).Seconds())
		r.ops.WithLabelValues(op, Outcome(err)).Inc()
	}
}

// Outcome classifies the error returned by a tonelli operation.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case tonelli.IsAbsent(err):
		return OutcomeAbsent
	case errors.Is(err, tonelli.ErrZeroModulus), errors.Is(err, tonelli.ErrEvenModulus),
		errors.Is(err, tonelli.ErrNoNonResidue):
		return OutcomeInvalid
	}
	return OutcomeError
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path, atomically, in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
