package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "relayer"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"
)

// Scan failure class label values.
const (
	ScanFailureRangeUnavailable = "range_unavailable"
	ScanFailureTimeout          = "timeout"
	ScanFailureUnknown          = "unknown"
)

// Metrics holds all Prometheus instruments for the relay pipeline. All
// methods are safe to call on a nil receiver so components can run without
// metrics wired in.
type Metrics struct {
	// Pipeline position
	head        prometheus.Gauge
	confirmed   prometheus.Gauge
	lastScanned prometheus.Gauge
	relayedSet  prometheus.Gauge

	// Event counters
	eventsObserved    prometheus.Counter
	eventsRelayed     prometheus.Counter
	duplicatesSkipped prometheus.Counter
	relayFailures     prometheus.Counter

	// Failure counters
	scanFailures    *prometheus.CounterVec
	iterationErrors prometheus.Counter

	// Checkpoint persistence
	checkpointWrites *prometheus.CounterVec

	// Latencies
	scanDuration   prometheus.Histogram
	submitDuration prometheus.Histogram
}

// New creates a Metrics instance and registers all instruments with the
// provided registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		head: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "head_height",
			Help:      "Latest head height reported by the source chain",
		}),
		confirmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "confirmed_head_height",
			Help:      "Highest block height behind the confirmation depth",
		}),
		lastScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_scanned_height",
			Help:      "Last checkpointed block height",
		}),
		relayedSet: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "relayed_set_size",
			Help:      "Number of relayed event identifiers in the checkpoint",
		}),
		eventsObserved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_observed_total",
			Help:      "Total lock events returned by scans",
		}),
		eventsRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_relayed_total",
			Help:      "Total events successfully submitted to the destination chain",
		}),
		duplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "duplicates_skipped_total",
			Help:      "Total events skipped because their identifier was already relayed",
		}),
		relayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "relay_failures_total",
			Help:      "Total failed destination submissions",
		}),
		scanFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scan_failures_total",
			Help:      "Total scans degraded to an empty result, by failure class",
		}, []string{"class"}),
		iterationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "iteration_errors_total",
			Help:      "Total relay loop iterations aborted by an error",
		}),
		checkpointWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "checkpoint_writes_total",
			Help:      "Total checkpoint persistence attempts by status",
		}, []string{"status"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time to scan one block range",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time to submit one mint transaction",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}

	err := errors.Join(
		reg.Register(m.head),
		reg.Register(m.confirmed),
		reg.Register(m.lastScanned),
		reg.Register(m.relayedSet),
		reg.Register(m.eventsObserved),
		reg.Register(m.eventsRelayed),
		reg.Register(m.duplicatesSkipped),
		reg.Register(m.relayFailures),
		reg.Register(m.scanFailures),
		reg.Register(m.iterationErrors),
		reg.Register(m.checkpointWrites),
		reg.Register(m.scanDuration),
		reg.Register(m.submitDuration),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetHead records the latest source head height.
func (m *Metrics) SetHead(h uint64) {
	if m == nil {
		return
	}
	m.head.Set(float64(h))
}

// SetConfirmedHead records the confirmed head height.
func (m *Metrics) SetConfirmedHead(h uint64) {
	if m == nil {
		return
	}
	m.confirmed.Set(float64(h))
}

// SetLastScanned records the last checkpointed height.
func (m *Metrics) SetLastScanned(h uint64) {
	if m == nil {
		return
	}
	m.lastScanned.Set(float64(h))
}

// SetRelayedSetSize records the size of the relayed identifier set.
func (m *Metrics) SetRelayedSetSize(n int) {
	if m == nil {
		return
	}
	m.relayedSet.Set(float64(n))
}

// AddEventsObserved records events returned by a scan.
func (m *Metrics) AddEventsObserved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.eventsObserved.Add(float64(n))
}

// IncEventRelayed records a successful destination submission.
func (m *Metrics) IncEventRelayed() {
	if m == nil {
		return
	}
	m.eventsRelayed.Inc()
}

// IncDuplicateSkipped records an event skipped by the dedup gate.
func (m *Metrics) IncDuplicateSkipped() {
	if m == nil {
		return
	}
	m.duplicatesSkipped.Inc()
}

// IncRelayFailure records a failed destination submission.
func (m *Metrics) IncRelayFailure() {
	if m == nil {
		return
	}
	m.relayFailures.Inc()
}

// IncScanFailure records a scan degraded to an empty result.
func (m *Metrics) IncScanFailure(class string) {
	if m == nil {
		return
	}
	m.scanFailures.WithLabelValues(class).Inc()
}

// IncIterationError records a relay loop iteration aborted by an error.
func (m *Metrics) IncIterationError() {
	if m == nil {
		return
	}
	m.iterationErrors.Inc()
}

// RecordCheckpointWrite records a checkpoint persistence attempt.
// Pass nil for successful writes.
func (m *Metrics) RecordCheckpointWrite(err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.checkpointWrites.WithLabelValues(status).Inc()
}

// ObserveScanDuration records the duration of one range scan.
func (m *Metrics) ObserveScanDuration(seconds float64) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(seconds)
}

// ObserveSubmitDuration records the duration of one mint submission.
func (m *Metrics) ObserveSubmitDuration(seconds float64) {
	if m == nil {
		return
	}
	m.submitDuration.Observe(seconds)
}
