// Package relay implements the scan-confirm-dedupe-checkpoint pipeline that
// turns confirmed lock events on the source chain into mint submissions on
// the destination chain.
//
// Known limitation, preserved deliberately: the checkpoint advances past a
// batch even when individual submissions in it failed. A failed submission
// is therefore only re-offered if its block range is ever rescanned, which
// the scheduler never does on its own. Operators recover such events by
// resetting the checkpoint to a height below the affected block.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bridgeworks/bridge-relayer/pkg/checkpoint"
	"github.com/bridgeworks/bridge-relayer/pkg/metrics"
)

// Executor submits one mint action on the destination chain per event and
// returns the destination transaction hash.
type Executor interface {
	Submit(ctx context.Context, ev Event) (common.Hash, error)
}

// AuditSink receives a record for every successfully relayed event.
type AuditSink interface {
	Record(ctx context.Context, ev Event, destTxHash common.Hash) error
}

// shutdownSaveTimeout bounds the final checkpoint write after the relay
// context is cancelled mid-batch.
const shutdownSaveTimeout = 2 * time.Second

// Config holds the relay loop settings.
type Config struct {
	Confirmations uint64        // blocks that must build on top of an event before it is acted on
	BatchSize     uint64        // maximum blocks scanned per iteration
	PollInterval  time.Duration // sleep between iterations when there is no backlog
}

func (c Config) validate() error {
	if c.BatchSize == 0 {
		return ErrInvalidBatchSize
	}
	if c.PollInterval <= 0 {
		return errors.New("invalid poll interval: must be greater than 0")
	}
	return nil
}

// Relayer runs the orchestration loop. A single Relayer owns its checkpoint;
// there is no concurrent scanning and no parallel submission.
type Relayer struct {
	log      *zap.SugaredLogger
	cfg      Config
	reader   LogReader
	scanner  *Scanner
	executor Executor
	store    checkpoint.Store
	audit    AuditSink // optional
	metrics  *metrics.Metrics

	state *checkpoint.Checkpoint
}

// New creates a Relayer. audit may be nil when no audit trail is configured.
func New(
	log *zap.SugaredLogger,
	cfg Config,
	reader LogReader,
	scanner *Scanner,
	executor Executor,
	store checkpoint.Store,
	audit AuditSink,
	m *metrics.Metrics,
) (*Relayer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil || reader == nil || scanner == nil || executor == nil || store == nil {
		return nil, errors.New("invalid relayer dependencies: must not be nil")
	}
	return &Relayer{
		log:      log,
		cfg:      cfg,
		reader:   reader,
		scanner:  scanner,
		executor: executor,
		store:    store,
		audit:    audit,
		metrics:  m,
	}, nil
}

// Run loads the checkpoint and executes the relay loop until ctx is
// cancelled. Any iteration failure is logged and followed by a doubled
// poll-interval backoff; nothing below the loop terminates the process.
func (r *Relayer) Run(ctx context.Context) error {
	cp, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	r.state = cp

	if last := cp.LastScanned(); last != nil {
		r.log.Infow("resuming from checkpoint",
			"lastScanned", *last, "relayed", cp.RelayedCount())
	} else {
		r.log.Infow("no checkpoint found, starting at the confirmed head")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.iterate(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Errorw("iteration failed", "error", err)
			r.metrics.IncIterationError()
			r.sleep(ctx, 2*r.cfg.PollInterval)
		}
	}
}

// iterate runs one scan-process-checkpoint cycle.
func (r *Relayer) iterate(ctx context.Context) error {
	head, err := r.reader.HeadHeight(ctx)
	if err != nil {
		return fmt.Errorf("failed to read head height: %w", err)
	}
	r.metrics.SetHead(head)

	confirmed, ok := ConfirmedHead(head, r.cfg.Confirmations)
	if !ok {
		r.log.Infow("waiting for enough blocks to confirm",
			"head", head, "confirmations", r.cfg.Confirmations)
		r.sleep(ctx, r.cfg.PollInterval)
		return nil
	}
	r.metrics.SetConfirmedHead(confirmed)

	rng, ok, err := NextRange(r.state.LastScanned(), confirmed, r.cfg.BatchSize)
	if err != nil {
		return err
	}
	if !ok {
		r.log.Infow("waiting for new confirmed blocks",
			"head", head, "confirmedHead", confirmed)
		r.sleep(ctx, r.cfg.PollInterval)
		return nil
	}

	events, ok := r.scanner.Scan(ctx, rng)
	if !ok {
		// The range was not covered; leave the checkpoint untouched so the
		// same range is recomputed next iteration.
		r.sleep(ctx, r.cfg.PollInterval)
		return nil
	}
	r.metrics.AddEventsObserved(len(events))

	if err := r.process(ctx, events); err != nil {
		// Shutdown interrupted the batch. The height must not advance past
		// events that were never offered, so the range is rescanned on
		// restart; persisting the relayed marks keeps completed submissions
		// deduplicated across that rescan.
		r.saveOnShutdown()
		return err
	}

	r.state.SetLastScanned(rng.To)
	if err := r.store.Save(ctx, r.state); err != nil {
		// The in-memory state is intact; the next save persists a superset.
		r.log.Errorw("failed to persist checkpoint",
			"lastScanned", rng.To, "error", err)
		r.metrics.RecordCheckpointWrite(err)
	} else {
		r.metrics.RecordCheckpointWrite(nil)
		r.metrics.SetLastScanned(rng.To)
		r.metrics.SetRelayedSetSize(r.state.RelayedCount())
	}

	// A full batch means there is backlog; skip the sleep and drain.
	if rng.Len() < r.cfg.BatchSize {
		r.sleep(ctx, r.cfg.PollInterval)
	}
	return nil
}

// process offers each event to the executor in ascending block-height order,
// skipping identifiers already marked relayed. Events are marked only after
// a successful submission. Cancellation is observed between submissions and
// returned so the caller does not checkpoint a batch that was cut short.
func (r *Relayer) process(ctx context.Context, events []Event) error {
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := ev.ID()
		if r.state.IsRelayed(id) {
			r.log.Warnw("skipping already relayed event", "sourceTx", id)
			r.metrics.IncDuplicateSkipped()
			continue
		}

		r.log.Infow("new confirmed lock event",
			"block", ev.BlockHeight,
			"sourceTx", id,
			"recipient", ev.Recipient.Hex(),
			"amount", ev.Amount.String(),
		)

		start := time.Now()
		destTx, err := r.executor.Submit(ctx, ev)
		r.metrics.ObserveSubmitDuration(time.Since(start).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				// The submission died with the context, not on its own.
				return ctx.Err()
			}
			r.log.Errorw("relay submission failed", "sourceTx", id, "error", err)
			r.metrics.IncRelayFailure()
			continue
		}

		r.state.MarkRelayed(id)
		r.metrics.IncEventRelayed()

		if r.audit != nil {
			if err := r.audit.Record(ctx, ev, destTx); err != nil {
				r.log.Warnw("failed to record relay audit entry",
					"sourceTx", id, "error", err)
			}
		}
	}
	return nil
}

// saveOnShutdown persists the current state on a detached context so relayed
// marks from a cut-short batch survive the restart. The last scanned height
// was not advanced, so failure here only widens the dedup window.
func (r *Relayer) saveOnShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownSaveTimeout)
	defer cancel()
	if err := r.store.Save(ctx, r.state); err != nil {
		r.log.Warnw("failed to persist checkpoint during shutdown", "error", err)
		r.metrics.RecordCheckpointWrite(err)
	} else {
		r.metrics.RecordCheckpointWrite(nil)
	}
}

// sleep blocks for d or until ctx is cancelled.
func (r *Relayer) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
