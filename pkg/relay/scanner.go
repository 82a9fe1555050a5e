package relay

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bridgeworks/bridge-relayer/pkg/metrics"
)

// Sentinel errors wrapped by LogReader implementations so the scanner can
// classify failures with errors.Is.
var (
	// ErrRangeUnavailable means the node does not serve the requested block
	// range yet, typically because it is still catching up.
	ErrRangeUnavailable = errors.New("block range unavailable")

	// ErrTimeout means the read did not complete within its deadline.
	ErrTimeout = errors.New("read timed out")
)

// LogReader reads the source chain. Implementations wrap transport failures
// in ErrRangeUnavailable or ErrTimeout where they can tell; anything else is
// treated as unknown.
type LogReader interface {
	// HeadHeight returns the current head height of the source chain.
	HeadHeight(ctx context.Context) (uint64, error)

	// FetchLockEvents returns the decoded lock events emitted by the bridge
	// contract in the closed block range [from, to].
	FetchLockEvents(ctx context.Context, from, to uint64) ([]Event, error)
}

// Scanner executes bounded scans over the source chain and degrades every
// failure to an empty result. The second return value of Scan tells the
// caller whether the range was actually covered: a failed scan must not be
// checkpointed, so the same range is recomputed and retried next iteration.
type Scanner struct {
	log     *zap.SugaredLogger
	reader  LogReader
	metrics *metrics.Metrics
}

func NewScanner(log *zap.SugaredLogger, reader LogReader, m *metrics.Metrics) *Scanner {
	return &Scanner{log: log, reader: reader, metrics: m}
}

// Scan fetches lock events for the given range. On success the events are
// returned in ascending block-height order. On failure it returns an empty
// slice and false; retryable failures (node behind, timeout) log at Warn,
// unknown failures at Error since they may require the operator to lower
// the batch size.
func (s *Scanner) Scan(ctx context.Context, r Range) ([]Event, bool) {
	start := time.Now()
	events, err := s.reader.FetchLockEvents(ctx, r.From, r.To)
	s.metrics.ObserveScanDuration(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, ErrRangeUnavailable):
			s.log.Warnw("block range not available yet, retrying later",
				"from", r.From, "to", r.To, "error", err)
			s.metrics.IncScanFailure(metrics.ScanFailureRangeUnavailable)
		case errors.Is(err, ErrTimeout):
			s.log.Warnw("scan timed out, retrying later",
				"from", r.From, "to", r.To, "error", err)
			s.metrics.IncScanFailure(metrics.ScanFailureTimeout)
		default:
			s.log.Errorw("scan failed, consider reducing the batch size",
				"from", r.From, "to", r.To, "error", err)
			s.metrics.IncScanFailure(metrics.ScanFailureUnknown)
		}
		return nil, false
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].BlockHeight < events[j].BlockHeight
	})

	if len(events) > 0 {
		s.log.Infow("found lock events", "count", len(events), "from", r.From, "to", r.To)
	}
	return events, true
}
