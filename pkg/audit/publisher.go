// Package audit publishes a record of every successful relay to Kafka so
// downstream accounting can reconcile locks against mints.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bridgeworks/bridge-relayer/pkg/kafka"
	"github.com/bridgeworks/bridge-relayer/pkg/relay"
)

// Queue is the producer surface the publisher needs.
type Queue interface {
	Produce(ctx context.Context, msg kafka.Msg) error
}

// Record is the JSON document published per relayed event, keyed by the
// source transaction hash.
type Record struct {
	SourceTxHash string `json:"source_tx_hash"`
	DestTxHash   string `json:"dest_tx_hash"`
	BlockHeight  uint64 `json:"block_height"`
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Amount       string `json:"amount"`
	DestChainID  string `json:"dest_chain_id"`
	RelayedAt    int64  `json:"relayed_at"`
}

// Publisher writes relay audit records to a Kafka topic.
type Publisher struct {
	log   *zap.SugaredLogger
	queue Queue
	topic string
	now   func() time.Time
}

var _ relay.AuditSink = (*Publisher)(nil)

func NewPublisher(log *zap.SugaredLogger, queue Queue, topic string) *Publisher {
	return &Publisher{log: log, queue: queue, topic: topic, now: time.Now}
}

// Record publishes one audit record. Failures are returned to the caller
// and do not affect relay progress.
func (p *Publisher) Record(ctx context.Context, ev relay.Event, destTxHash common.Hash) error {
	rec := Record{
		SourceTxHash: ev.SourceTxHash.Hex(),
		DestTxHash:   destTxHash.Hex(),
		BlockHeight:  ev.BlockHeight,
		Sender:       ev.Sender.Hex(),
		Recipient:    ev.Recipient.Hex(),
		Amount:       ev.Amount.String(),
		DestChainID:  ev.DestChainID.String(),
		RelayedAt:    p.now().Unix(),
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	return p.queue.Produce(ctx, kafka.Msg{
		Topic: p.topic,
		Key:   ev.SourceTxHash.Bytes(),
		Value: value,
	})
}
