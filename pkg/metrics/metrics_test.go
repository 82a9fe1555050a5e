package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllInstruments(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Registering the same instruments twice must fail.
	_, err = New(reg)
	require.Error(t, err)
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()
	var m *Metrics

	m.SetHead(100)
	m.SetConfirmedHead(88)
	m.SetLastScanned(80)
	m.SetRelayedSetSize(3)
	m.AddEventsObserved(2)
	m.IncEventRelayed()
	m.IncDuplicateSkipped()
	m.IncRelayFailure()
	m.IncScanFailure(ScanFailureTimeout)
	m.IncIterationError()
	m.RecordCheckpointWrite(nil)
	m.ObserveScanDuration(0.1)
	m.ObserveSubmitDuration(0.1)
}

func TestMetrics_CountersAndGauges(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.SetHead(1100)
	m.SetConfirmedHead(1088)
	m.SetLastScanned(1088)
	m.SetRelayedSetSize(2)
	m.AddEventsObserved(3)
	m.AddEventsObserved(0) // no-op
	m.IncEventRelayed()
	m.IncDuplicateSkipped()
	m.IncRelayFailure()
	m.IncScanFailure(ScanFailureRangeUnavailable)
	m.IncScanFailure(ScanFailureRangeUnavailable)
	m.IncScanFailure(ScanFailureUnknown)
	m.RecordCheckpointWrite(nil)
	m.RecordCheckpointWrite(errors.New("disk full"))

	require.Equal(t, float64(1100), testutil.ToFloat64(m.head))
	require.Equal(t, float64(1088), testutil.ToFloat64(m.confirmed))
	require.Equal(t, float64(1088), testutil.ToFloat64(m.lastScanned))
	require.Equal(t, float64(2), testutil.ToFloat64(m.relayedSet))
	require.Equal(t, float64(3), testutil.ToFloat64(m.eventsObserved))
	require.Equal(t, float64(1), testutil.ToFloat64(m.eventsRelayed))
	require.Equal(t, float64(1), testutil.ToFloat64(m.duplicatesSkipped))
	require.Equal(t, float64(1), testutil.ToFloat64(m.relayFailures))
	require.Equal(t, float64(2), testutil.ToFloat64(m.scanFailures.WithLabelValues(ScanFailureRangeUnavailable)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.scanFailures.WithLabelValues(ScanFailureUnknown)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.checkpointWrites.WithLabelValues(StatusSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.checkpointWrites.WithLabelValues(StatusError)))
}
