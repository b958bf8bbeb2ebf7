// Package ingest consumes gameplay events from Kafka and applies them to the
// progression service.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/AccelByte/extend-runner-progression/pkg/config"
	progerrors "github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/service"
)

const (
	// applyTimeout bounds a single event application.
	applyTimeout = 10 * time.Second

	// maxStartFailures is the number of consecutive failed Consume calls
	// before the first session after which Start gives up.
	maxStartFailures = 5

	retryBackoff    = 500 * time.Millisecond
	maxRetryBackoff = 30 * time.Second
	readyTimeout    = 30 * time.Second
)

// EventApplier applies one gameplay event.
type EventApplier interface {
	Apply(ctx context.Context, e service.GameplayEvent) (service.Progress, error)
}

// Consumer consumes gameplay events from a Kafka topic.
type Consumer struct {
	config        *config.KafkaConfig
	applier       EventApplier
	logger        *slog.Logger
	consumerGroup sarama.ConsumerGroup
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	maxFailures  int
	backoff      time.Duration
	readyTimeout time.Duration
}

// NewConsumer creates a consumer group member for cfg.Topic.
func NewConsumer(cfg *config.KafkaConfig, applier EventApplier, logger *slog.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return newConsumer(cfg, applier, logger, consumerGroup), nil
}

func newConsumer(cfg *config.KafkaConfig, applier EventApplier, logger *slog.Logger, group sarama.ConsumerGroup) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		config:        cfg,
		applier:       applier,
		logger:        logger,
		consumerGroup: group,
		ctx:           ctx,
		cancel:        cancel,
		maxFailures:   maxStartFailures,
		backoff:       retryBackoff,
		readyTimeout:  readyTimeout,
	}
}

// Start joins the consumer group and blocks until the first session is set
// up. It fails when the group cannot be joined within the retry budget or the
// ready timeout; the consumer is closed in that case.
func (c *Consumer) Start() error {
	c.logger.Info("starting Kafka consumer",
		"brokers", c.config.Brokers,
		"topic", c.config.Topic,
		"group_id", c.config.GroupID,
	)

	handler := &consumerGroupHandler{consumer: c, ready: make(chan bool)}
	failed := make(chan error, 1)

	c.wg.Add(1)
	go c.consumeLoop(handler, failed)

	timer := time.NewTimer(c.readyTimeout)
	defer timer.Stop()

	select {
	case <-handler.ready:
	case err := <-failed:
		c.abort()
		return err
	case <-timer.C:
		c.abort()
		return fmt.Errorf("kafka consumer not ready after %s", c.readyTimeout)
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
	c.logger.Info("Kafka consumer ready")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case err, ok := <-c.consumerGroup.Errors():
				if !ok {
					return
				}
				c.logger.Error("consumer group error", "error", err)
			}
		}
	}()

	return nil
}

// consumeLoop rejoins the group after every session. Failed Consume calls are
// retried with exponential backoff; before the first session is set up,
// maxFailures consecutive failures are reported on failed.
func (c *Consumer) consumeLoop(handler *consumerGroupHandler, failed chan<- error) {
	defer c.wg.Done()

	failures := 0
	delay := c.backoff
	for {
		err := c.consumerGroup.Consume(c.ctx, []string{c.config.Topic}, handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || c.ctx.Err() != nil {
			return
		}
		if err == nil {
			failures = 0
			delay = c.backoff
			continue
		}

		failures++
		c.logger.Error("error from consumer", "error", err, "attempt", failures)
		if !handler.isReady() && failures >= c.maxFailures {
			failed <- fmt.Errorf("joining consumer group after %d attempts: %w", failures, err)
			return
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryBackoff)
	}
}

func (c *Consumer) abort() {
	c.cancel()
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		c.logger.Warn("failed to close consumer group", "error", err)
	}
}

// Stop leaves the group and waits for in-flight events.
func (c *Consumer) Stop() error {
	c.logger.Info("stopping Kafka consumer")
	c.cancel()
	c.wg.Wait()
	return c.consumerGroup.Close()
}

// handle applies one message. Malformed and rejected events are logged and
// skipped so a poison message never blocks its partition.
func (c *Consumer) handle(msg *sarama.ConsumerMessage) {
	var event service.GameplayEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("failed to unmarshal gameplay event",
			"error", err,
			"offset", msg.Offset,
			"partition", msg.Partition,
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()

	progress, err := c.applier.Apply(ctx, event)
	switch {
	case progerrors.HasCode(err, progerrors.ErrCodeInvalidInput):
		c.logger.Warn("invalid gameplay event",
			"error", err,
			"player_id", event.PlayerID,
			"kind", event.Kind,
			"offset", msg.Offset,
		)
	case err != nil:
		c.logger.Error("failed to apply gameplay event",
			"error", err,
			"player_id", event.PlayerID,
			"kind", event.Kind,
			"offset", msg.Offset,
		)
	case !progress.IsEmpty():
		c.logger.Debug("gameplay event completed progression",
			"player_id", event.PlayerID,
			"kind", event.Kind,
			"daily", len(progress.DailyCompleted),
			"weekly", len(progress.WeeklyCompleted),
			"achievements", len(progress.Unlocked),
		)
	}
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer  *Consumer
	ready     chan bool
	readyOnce sync.Once
}

// Setup is called at the beginning of a new session
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.readyOnce.Do(func() { close(h.ready) })
	return nil
}

func (h *consumerGroupHandler) isReady() bool {
	select {
	case <-h.ready:
		return true
	default:
		return false
	}
}

// Cleanup is called at the end of a session
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim applies a partition's events in order. Events are keyed by
// player ID, so one player's events share a partition.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil

		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.consumer.handle(message)
			session.MarkMessage(message, "")
		}
	}
}
