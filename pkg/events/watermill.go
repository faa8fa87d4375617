// Package events provides a PostgreSQL-backed pub/sub EventBus built on Watermill.
//
// Delivery semantics:
//   - Subscribe: messages are load-balanced across every instance in the
//     <service>-consumer group; only one instance processes each message. The
//     worker's read-model handlers use this.
//   - SubscribeBroadcast: each process gets its own consumer group, so every API
//     instance sees every message. The websocket feed uses this.
//
// Handlers should be idempotent. On failure a message is Nacked and redelivered;
// the bus retries up to 3 times with exponential backoff before giving up.
//
// Trace context is injected into message metadata when a message is built
// (NewMessage) and restored on the subscriber side.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_forwarder_queue" // internal outbox topic for the Forwarder daemon
)

// Handler processes one message. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// EventBus is a PostgreSQL-backed pub/sub EventBus built on Watermill's SQL transport.
// It uses FOR UPDATE SKIP LOCKED under the hood for concurrent-safe delivery.
type EventBus struct {
	publisher    message.Publisher // either direct SQL publisher or forwarder-decorated
	subscriber   *watermillsql.Subscriber
	subscribers  []message.Subscriber // broadcast subscribers, closed with the bus
	fwd          *forwarder.Forwarder // non-nil only when forwarder mode is enabled
	db           *sql.DB
	log          logger.Logger
	serviceName  string
	mu           sync.Mutex
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus initializes a Watermill SQL publisher and subscriber on db.
// Schema tables are created automatically on first use. The bus does not own db.
func NewEventBus(cfg *config.Config, db *sql.DB, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, db, log, false)
}

// NewEventBusWithForwarder creates an EventBus that routes every publish through a
// durable SQL queue drained by the Forwarder daemon (StartForwarder). Messages
// written inside a business transaction therefore survive a crash after commit.
func NewEventBusWithForwarder(cfg *config.Config, db *sql.DB, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, db, log, true)
}

func newEventBus(cfg *config.Config, db *sql.DB, log logger.Logger, useForwarder bool) (*EventBus, error) {
	wlog := NewLoggerAdapter(log)

	pub, err := watermillsql.NewPublisher(
		db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		wlog,
	)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	var publisher message.Publisher = pub
	if useForwarder {
		publisher = forwarder.NewPublisher(pub, forwarder.PublisherConfig{
			ForwarderTopic: forwarderTopic,
		})
	}

	sub, err := newSubscriber(db, cfg.ServiceName+"-consumer", wlog)
	if err != nil {
		_ = pub.Close()
		return nil, err
	}

	return &EventBus{
		publisher:    publisher,
		subscriber:   sub,
		db:           db,
		log:          log,
		serviceName:  cfg.ServiceName,
		useForwarder: useForwarder,
	}, nil
}

func newSubscriber(db *sql.DB, consumerGroup string, wlog watermill.LoggerAdapter) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    consumerGroup,
		},
		wlog,
	)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", consumerGroup, err)
	}
	return sub, nil
}

// StartForwarder starts the background Forwarder daemon that reads messages from
// the internal forwarder queue and publishes them to their target topics.
// Must only be called once on an EventBus created with NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	wlog := NewLoggerAdapter(q.log)

	fwdSub, err := newSubscriber(q.db, "forwarder-consumer", wlog)
	if err != nil {
		return err
	}

	targetPub, err := watermillsql.NewPublisher(
		q.db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		wlog,
	)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}

	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
		} else {
			q.log.InfoContext(ctx, "events: forwarder stopped")
		}
	}()

	select {
	case <-fwd.Running():
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}

	return nil
}

// NewTxPublisher returns a Publisher bound to the given *sql.Tx.
// All Publish calls on the returned publisher execute within that transaction,
// so a rolled-back ledger operation never emits its event.
//
// AutoInitializeSchema is false; tables are guaranteed to exist after EventBus startup.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(
		tx,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: false,
		},
		NewLoggerAdapter(q.log),
	)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	if q.useForwarder {
		return forwarder.NewPublisher(pub, forwarder.PublisherConfig{
			ForwarderTopic: forwarderTopic,
		}), nil
	}
	return pub, nil
}

// Publish sends one or more messages to the given topic outside any transaction.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		injectTrace(ctx, msg)
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers handler on the shared consumer group for topic.
//
// Ack/Nack is managed by the bus:
//   - handler returns nil   → Ack (message consumed)
//   - handler returns error → retried up to 3× with exponential backoff (1s, 2s, 4s)
//   - all retries exhausted → Nack + error forwarded to the returned channel
//
// The returned error channel is buffered (capacity 100). Callers must drain it.
// All in-flight handlers complete before Close() returns.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	return q.consume(ctx, q.subscriber, topic, handler)
}

// SubscribeBroadcast registers handler on a consumer group private to this process,
// so every instance receives every message on topic. The group name is stable
// across restarts of the same host, so a restart resumes instead of replaying.
func (q *EventBus) SubscribeBroadcast(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = watermill.NewShortUUID()
	}
	sub, err := newSubscriber(q.db, q.serviceName+"-broadcast-"+host, NewLoggerAdapter(q.log))
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	q.subscribers = append(q.subscribers, sub)
	q.mu.Unlock()
	return q.consume(ctx, sub, topic, handler)
}

func (q *EventBus) consume(ctx context.Context, sub message.Subscriber, topic string, handler Handler) (<-chan error, error) {
	ch, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, 100)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)

			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
			} else {
				msg.Ack()
			}
		}
	}()

	return errCh, nil
}

// retryWithBackoff calls handler up to maxRetries times with exponential backoff.
// Returns nil on first success; returns the last error after all retries exhaust.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt < maxRetries {
			log.WarnContext(ctx, "events: handler failed, retrying",
				"attempt", attempt,
				"max_retries", maxRetries,
				"next_delay", delay,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("events: handler failed after %d retries: %w", maxRetries, err)
}

// Ping checks the EventBus database connection health.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close gracefully shuts down the EventBus.
// Shutdown order: stop subscribers → stop forwarder (if running) → wait for
// in-flight handlers (30 s max) → close publisher. The database is left open.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	q.mu.Lock()
	for _, sub := range q.subscribers {
		if err := sub.Close(); err != nil {
			q.log.Warn("events: close broadcast subscriber", "error", err)
		}
	}
	q.mu.Unlock()

	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	select {
	case <-done:
	case <-ctx.Done():
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return nil
}

func injectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
