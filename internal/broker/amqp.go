package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"mdhub/internal/config"
	"mdhub/internal/logger"
	"mdhub/pkg/errors"
	"mdhub/pkg/metrics"
	"mdhub/pkg/models"
	"mdhub/pkg/retry"
	"mdhub/pkg/tracing"
)

// AMQPTransport implements Transport over a RabbitMQ-compatible broker.
//
// The primary publish path runs on one long-lived channel in confirm mode; a
// supervisor goroutine rebuilds it on a fixed schedule whenever the connection
// drops. The auxiliary operations (holding publishes, drains, dead-letter
// recovery, depth inspection) each dial their own short-lived connection so a
// stuck administrative action can never wedge the ingestion path.
type AMQPTransport struct {
	cfg     config.RabbitMQConfig
	logger  logger.Logger
	status  StatusSource
	records RecordStore

	// dial is swapped out in tests.
	dial func(url string) (*amqp.Connection, error)

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel

	done      chan struct{}
	closeOnce sync.Once
}

func NewAMQPTransport(cfg config.RabbitMQConfig, status StatusSource, records RecordStore, log logger.Logger) *AMQPTransport {
	t := &AMQPTransport{
		cfg:     cfg,
		logger:  log,
		status:  status,
		records: records,
		dial:    amqp.Dial,
		done:    make(chan struct{}),
	}
	go t.supervise()
	return t
}

// supervise keeps the primary confirm channel alive. Connection failures are
// absorbed here: a publish attempted while the channel is down fails fast with
// a transport error, and the next scheduled attempt rebuilds the channel.
func (t *AMQPTransport) supervise() {
	schedule := retry.Constant(t.cfg.ReconnectDelay)

	for {
		closed, err := t.connect()
		if err != nil {
			t.logger.Errorw("Broker connection failed, will retry",
				"error", err,
				"retry_in", t.cfg.ReconnectDelay,
			)
			metrics.BrokerReconnectsTotal.Inc()
			select {
			case <-t.done:
				return
			case <-time.After(schedule.NextBackOff()):
			}
			continue
		}

		metrics.BrokerChannelUp.Set(1)
		t.logger.Infow("Broker channel established",
			"primary_queue", t.cfg.PrimaryQueue,
		)

		select {
		case <-t.done:
			return
		case amqpErr := <-closed:
			metrics.BrokerChannelUp.Set(0)
			t.dropChannel()
			t.logger.Warnw("Broker connection lost",
				"error", amqpErr,
				"retry_in", t.cfg.ReconnectDelay,
			)
			metrics.BrokerReconnectsTotal.Inc()
			select {
			case <-t.done:
				return
			case <-time.After(schedule.NextBackOff()):
			}
		}
	}
}

func (t *AMQPTransport) connect() (<-chan *amqp.Error, error) {
	conn, err := t.dial(t.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable confirms: %w", err)
	}

	if err := declareTopology(ch, t.cfg); err != nil {
		conn.Close()
		return nil, err
	}

	// Watch both the connection and the channel: a channel-level error (for
	// example a failed publish on a deleted exchange) kills the channel
	// without closing the connection.
	closed := make(chan *amqp.Error, 2)
	conn.NotifyClose(closed)
	ch.NotifyClose(closed)

	t.mu.Lock()
	t.conn = conn
	t.ch = ch
	t.mu.Unlock()

	return closed, nil
}

// dropChannel tears down the current connection before the supervisor dials a
// fresh one. A channel-level error leaves the connection open on the broker
// side, so clearing the handles without closing would leak the TCP connection
// on every channel death.
func (t *AMQPTransport) dropChannel() {
	t.mu.Lock()
	if t.conn != nil && !t.conn.IsClosed() {
		t.conn.Close()
	}
	t.conn = nil
	t.ch = nil
	t.mu.Unlock()
}

// declareTopology declares the three exchange/queue pairs. Declaration is
// idempotent on the broker side, so every fresh connection re-runs it.
func declareTopology(ch *amqp.Channel, cfg config.RabbitMQConfig) error {
	pairs := []struct {
		exchange string
		queue    string
		args     amqp.Table
	}{
		{cfg.PrimaryExchange, cfg.PrimaryQueue, amqp.Table{
			"x-dead-letter-exchange":    cfg.DeadLetterExchange,
			"x-dead-letter-routing-key": cfg.DeadLetterQueue,
		}},
		{cfg.HoldingExchange, cfg.HoldingQueue, nil},
		{cfg.DeadLetterExchange, cfg.DeadLetterQueue, nil},
	}

	for _, p := range pairs {
		if err := ch.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
		}
		if _, err := ch.QueueDeclare(p.queue, true, false, false, false, p.args); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
		}
		if err := ch.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", p.queue, err)
		}
	}

	return nil
}

func (t *AMQPTransport) channel() (*amqp.Channel, error) {
	t.mu.RLock()
	ch := t.ch
	t.mu.RUnlock()

	if ch == nil {
		return nil, errors.Wrap(fmt.Errorf("primary channel is down"), errors.ErrTransportUnavailable)
	}
	return ch, nil
}

// PublishPrimary publishes on the long-lived confirm channel and blocks until
// the broker acks or the publish timeout elapses. An unconfirmed publish is a
// hard failure: the caller must surface it rather than assume delivery.
func (t *AMQPTransport) PublishPrimary(ctx context.Context, msg models.QueueMessage) error {
	ch, err := t.channel()
	if err != nil {
		metrics.PublishesTotal.WithLabelValues(t.cfg.PrimaryQueue, "error").Inc()
		return err
	}

	start := time.Now()
	err = publishConfirmed(ctx, ch, t.cfg.PrimaryExchange, t.cfg.PrimaryQueue, t.cfg.PublishTimeout, msg)
	metrics.ObservePublishDuration(t.cfg.PrimaryQueue, time.Since(start))
	if err != nil {
		metrics.PublishesTotal.WithLabelValues(t.cfg.PrimaryQueue, "error").Inc()
		return err
	}

	metrics.PublishesTotal.WithLabelValues(t.cfg.PrimaryQueue, "ok").Inc()
	return nil
}

// PublishHolding dials its own connection per call. Holding publishes only
// happen while processing is paused, so the extra dial is cheap and keeps the
// pause path independent of the primary channel's health.
func (t *AMQPTransport) PublishHolding(ctx context.Context, msg models.QueueMessage) error {
	conn, ch, err := t.dialChannel()
	if err != nil {
		metrics.PublishesTotal.WithLabelValues(t.cfg.HoldingQueue, "error").Inc()
		return err
	}
	defer conn.Close()

	start := time.Now()
	err = publishConfirmed(ctx, ch, t.cfg.HoldingExchange, t.cfg.HoldingQueue, t.cfg.PublishTimeout, msg)
	metrics.ObservePublishDuration(t.cfg.HoldingQueue, time.Since(start))
	if err != nil {
		metrics.PublishesTotal.WithLabelValues(t.cfg.HoldingQueue, "error").Inc()
		return err
	}

	metrics.PublishesTotal.WithLabelValues(t.cfg.HoldingQueue, "ok").Inc()
	return nil
}

// dialChannel opens a dedicated connection with a confirm-mode channel and
// the declared topology.
func (t *AMQPTransport) dialChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := t.dial(t.cfg.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	if err := declareTopology(ch, t.cfg); err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	return conn, ch, nil
}

func publishConfirmed(ctx context.Context, ch *amqp.Channel, exchange, routingKey string, timeout time.Duration, msg models.QueueMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, errors.ErrPublish)
	}

	headers := amqp.Table(msg.Headers())
	headers = tracing.InjectTraceContext(ctx, headers)

	pubCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dc, err := ch.PublishWithDeferredConfirmWithContext(pubCtx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MasterdataID,
		Timestamp:    msg.Timestamp,
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrPublish)
	}

	select {
	case <-pubCtx.Done():
		return errors.Wrap(fmt.Errorf("timed out waiting for broker confirm"), errors.ErrPublish)
	case <-dc.Done():
		if !dc.Acked() {
			return errors.Wrap(fmt.Errorf("broker rejected publish"), errors.ErrPublish)
		}
	}

	return nil
}

// DrainHolding consumes parked messages one at a time and republishes each to
// the primary queue, acking only after the republish is confirmed. A message
// that fails to forward is requeued and the drain aborts, leaving the rest
// parked for the next attempt. The drain ends once the holding queue stays
// empty for the configured grace period.
func (t *AMQPTransport) DrainHolding(ctx context.Context) (int, error) {
	conn, ch, err := t.dialChannel()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	q, err := ch.QueueDeclarePassive(t.cfg.HoldingQueue, true, false, false, false, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTransportUnavailable)
	}
	if q.Messages == 0 {
		return 0, nil
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return 0, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	deliveries, err := ch.Consume(t.cfg.HoldingQueue, "holding-drain", false, false, false, false, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	moved := 0
	settle := time.NewTimer(t.cfg.DrainGrace)
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return moved, ctx.Err()

		case <-settle.C:
			t.logger.InfowCtx(ctx, "Holding queue drained",
				"moved", moved,
			)
			return moved, nil

		case d, ok := <-deliveries:
			if !ok {
				return moved, nil
			}

			if err := t.forward(ctx, d); err != nil {
				metrics.DrainedMessagesTotal.WithLabelValues("error").Inc()
				if nackErr := d.Nack(false, true); nackErr != nil {
					t.logger.ErrorwCtx(ctx, "Failed to requeue held message",
						"error", nackErr,
					)
				}
				return moved, err
			}

			if err := d.Ack(false); err != nil {
				return moved, errors.Wrap(err, errors.ErrTransportUnavailable)
			}

			moved++
			metrics.DrainedMessagesTotal.WithLabelValues("ok").Inc()

			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(t.cfg.DrainGrace)
		}
	}
}

func (t *AMQPTransport) forward(ctx context.Context, d amqp.Delivery) error {
	spanCtx, span := tracing.StartSpanFromDelivery(ctx, "broker.forward", d.Headers)
	defer span.End()

	var msg models.QueueMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return errors.Wrap(err, errors.ErrPublish)
	}

	if err := t.PublishPrimary(spanCtx, msg); err != nil {
		return err
	}

	if msg.MasterdataID != "" && t.records != nil {
		if err := t.records.MarkStatus(spanCtx, msg.MasterdataID, models.StatusAccepted); err != nil {
			t.logger.WarnwCtx(spanCtx, "Failed to update record status after forward",
				"masterdata_id", msg.MasterdataID,
				"error", err,
			)
		}
	}

	return nil
}

// RetryDeadLetter empties the dead-letter queue. While masterdata processing
// is paused the messages go back to the holding queue and their records are
// flagged as processing; otherwise they return straight to the primary queue.
// An empty queue is a successful no-op.
func (t *AMQPTransport) RetryDeadLetter(ctx context.Context) (*RetryResult, error) {
	paused := false
	if t.status != nil {
		var err error
		paused, err = t.status.MasterdataPaused(ctx)
		if err != nil {
			return nil, err
		}
	}

	exchange, routingKey, target := t.cfg.PrimaryExchange, t.cfg.PrimaryQueue, "primary"
	if paused {
		exchange, routingKey, target = t.cfg.HoldingExchange, t.cfg.HoldingQueue, "holding"
	}

	conn, ch, err := t.dialChannel()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	moved := 0
	for {
		d, ok, err := ch.Get(t.cfg.DeadLetterQueue, true)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTransportUnavailable)
		}
		if !ok {
			break
		}

		var msg models.QueueMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			t.logger.ErrorwCtx(ctx, "Dropping undecodable dead letter",
				"message_id", d.MessageId,
				"error", err,
			)
			continue
		}

		if err := publishConfirmed(ctx, ch, exchange, routingKey, t.cfg.PublishTimeout, msg); err != nil {
			return nil, err
		}

		if paused && msg.MasterdataID != "" && t.records != nil {
			if err := t.records.MarkStatus(ctx, msg.MasterdataID, models.StatusProcessing); err != nil {
				t.logger.WarnwCtx(ctx, "Failed to flag re-parked record",
					"masterdata_id", msg.MasterdataID,
					"error", err,
				)
			}
		}

		moved++
		metrics.DeadLetterRetriesTotal.WithLabelValues(target).Inc()
	}

	result := &RetryResult{Recovered: moved, Target: target}
	if moved == 0 {
		result.Message = "no messages in dead letter queue"
	} else {
		result.Message = fmt.Sprintf("moved %d messages to %s queue", moved, target)
	}

	t.logger.InfowCtx(ctx, "Dead letter retry completed",
		"recovered", moved,
		"target", target,
	)
	return result, nil
}

// Depth passively declares the queue and reports its message count.
func (t *AMQPTransport) Depth(ctx context.Context, queue string) (int, error) {
	conn, err := t.dial(t.cfg.URL)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTransportUnavailable)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	q, err := ch.QueueDeclarePassive(queue, true, false, false, false, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTransportUnavailable)
	}

	metrics.SetQueueDepth(queue, q.Messages)
	return q.Messages, nil
}

func (t *AMQPTransport) Healthy(ctx context.Context) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.ch == nil || t.conn == nil || t.conn.IsClosed() {
		return fmt.Errorf("broker channel is down")
	}
	return nil
}

func (t *AMQPTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.mu.Lock()
		if t.conn != nil {
			t.conn.Close()
			t.conn = nil
			t.ch = nil
		}
		t.mu.Unlock()
		metrics.BrokerChannelUp.Set(0)
	})
	return nil
}
