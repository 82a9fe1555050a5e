package relay

import "errors"

// ErrInvalidBatchSize is returned by NextRange when the configured batch
// size is zero.
var ErrInvalidBatchSize = errors.New("invalid batch size: must be greater than 0")

// Range is a closed block interval [From, To] scanned in one iteration.
// Ranges are transient; they are never persisted.
type Range struct {
	From uint64
	To   uint64
}

// Len returns the number of blocks covered by the range.
func (r Range) Len() uint64 {
	return r.To - r.From + 1
}

// NextRange computes the next block range to scan. lastScanned is nil when
// no range has ever been checkpointed; in that case scanning starts at the
// current confirmed head, deliberately skipping history. A backfill from an
// older height is a separate capability, not a side effect of a fresh
// checkpoint.
//
// The second return value is false when no confirmed blocks remain to scan
// and the caller should wait for the chain to advance.
func NextRange(lastScanned *uint64, confirmedHead, maxBatch uint64) (Range, bool, error) {
	if maxBatch == 0 {
		return Range{}, false, ErrInvalidBatchSize
	}

	from := confirmedHead
	if lastScanned != nil {
		from = *lastScanned + 1
	}
	if from > confirmedHead {
		return Range{}, false, nil
	}

	to := from + maxBatch - 1
	if to > confirmedHead {
		to = confirmedHead
	}
	return Range{From: from, To: to}, true, nil
}
