package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// Msg is one message to publish.
type Msg struct {
	Topic string
	Key   []byte
	Value []byte
}

// Producer is a synchronous Kafka producer. Produce blocks until a delivery
// confirmation is received from Kafka. A background goroutine watches the
// producer event channel for fatal errors.
//
// Close MUST be called at least once to stop the background goroutine and
// flush all in-flight messages.
type Producer struct {
	producer *kafka.Producer
	log      *zap.SugaredLogger
	errCh    chan error
	done     chan struct{}
	closed   chan struct{}
	once     sync.Once
}

const queueFullRetryDelay = time.Second

// NewProducer creates a Kafka producer. The context controls the lifetime
// of the event monitoring goroutine.
func NewProducer(ctx context.Context, conf *kafka.ConfigMap, log *zap.SugaredLogger) (*Producer, error) {
	p, err := kafka.NewProducer(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	q := &Producer{
		producer: p,
		log:      log,
		errCh:    make(chan error, 1),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go q.monitorEvents(ctx)
	return q, nil
}

// Produce publishes one message and waits for its delivery receipt. If the
// producer queue is full the message is retried internally. If the context
// is cancelled before confirmation, the message MAY still be delivered;
// callers must tolerate duplicates when retrying.
func (q *Producer) Produce(ctx context.Context, msg Msg) error {
	deliveryCh := make(chan kafka.Event, 1)
	defer close(deliveryCh)

	kMsg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &msg.Topic,
			Partition: kafka.PartitionAny,
		},
		Key:   msg.Key,
		Value: msg.Value,
	}

	if err := q.produceWithRetry(ctx, kMsg, deliveryCh); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-deliveryCh:
		return q.handleDeliveryEvent(kMsg, ev)
	}
}

// Close stops the monitoring goroutine and flushes pending messages.
// Reaching the timeout may result in message loss. Calling Close multiple
// times does nothing.
func (q *Producer) Close(timeout time.Duration) {
	q.once.Do(func() {
		q.log.Info("closing kafka producer")
		defer close(q.errCh)

		close(q.closed)
		<-q.done

		pending := q.producer.Flush(int(timeout.Milliseconds()))
		if pending > 0 {
			q.log.Warnf("flush incomplete, %d messages will be lost", pending)
		}
		q.producer.Close()
	})
}

// Errors returns a channel that receives at most one fatal error. After
// receiving an error the producer is no longer usable.
func (q *Producer) Errors() <-chan error {
	return q.errCh
}

func (q *Producer) produceWithRetry(
	ctx context.Context,
	msg *kafka.Message,
	deliveryCh chan kafka.Event,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := q.producer.Produce(msg, deliveryCh)
		if err == nil {
			return nil
		}

		kafkaErr, ok := err.(kafka.Error)
		if ok && kafkaErr.Code() == kafka.ErrQueueFull {
			q.log.Warnw("producer queue full, retrying", "delay", queueFullRetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(queueFullRetryDelay):
			}
			continue
		}
		return fmt.Errorf("failed to produce: %w", err)
	}
}

func (q *Producer) handleDeliveryEvent(msg *kafka.Message, ev kafka.Event) error {
	e, ok := ev.(*kafka.Message)
	if !ok {
		return fmt.Errorf("unexpected delivery event: %T", ev)
	}
	if err := e.TopicPartition.Error; err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}
	q.log.Debugf("delivered to topic [%s] partition [%d] at offset [%d]",
		*msg.TopicPartition.Topic, e.TopicPartition.Partition, e.TopicPartition.Offset)
	return nil
}

func (q *Producer) monitorEvents(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closed:
			return
		case ev, ok := <-q.producer.Events():
			if !ok {
				return
			}
			e, isErr := ev.(kafka.Error)
			if !isErr {
				continue
			}
			if e.IsFatal() || e.Code() == kafka.ErrAllBrokersDown {
				err := fmt.Errorf("fatal kafka error: %w", e)
				select {
				case q.errCh <- err:
				default:
				}
				return
			}
			q.log.Warnw("ignoring non-fatal kafka error", "code", e.Code(), "error", e)
		}
	}
}
