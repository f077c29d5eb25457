// Package ingest consumes the upstream catalog feed: a Kafka topic carrying
// one ListRV JSON document per message.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message. A nil return marks the
// message as consumed; an error leaves it unmarked.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

const (
	// handleAttempts bounds how often one message is retried before the
	// claim gives up and the session is rebuilt.
	handleAttempts = 5
	// retryBackoff is the first wait between attempts; it doubles up to maxBackoff.
	retryBackoff = 200 * time.Millisecond
	maxBackoff   = 10 * time.Second
)

// Consumer runs a sarama consumer group and feeds every message to a handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger

	attempts int
	backoff  time.Duration
}

// NewConsumer joins groupID on brokers. cfg may be nil.
func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("ingest: at least one broker is required")
	}
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("ingest: join consumer group %q: %w", groupID, err)
	}
	return newConsumer(g, handler, logger), nil
}

func newConsumer(g sarama.ConsumerGroup, handler MessageHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		group:    g,
		handler:  handler,
		logger:   logger,
		attempts: handleAttempts,
		backoff:  retryBackoff,
	}
}

// Run consumes topics until ctx is cancelled or the group is closed.
// Consume returns on every rebalance, so it is called in a loop; a failed
// Consume is logged and retried with backoff.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	h := groupHandler{handler: c.handler, logger: c.logger, attempts: c.attempts, backoff: c.backoff}
	wait := c.backoff
	for {
		err := c.group.Consume(ctx, topics, h)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			c.logger.ErrorContext(ctx, "ingest consume failed", "error", err, "retry_in", wait)
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			wait = min(wait*2, maxBackoff)
		default:
			wait = c.backoff
		}
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	handler  MessageHandler
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

func (groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks each message only after it was handled. A message that
// keeps failing ends the claim with an error and nothing past it is marked,
// so the group resumes from that offset once the session is rebuilt.
func (h groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for msg := range claim.Messages() {
		if err := h.handle(ctx, msg); err != nil {
			h.logger.ErrorContext(ctx, "ingest message failed",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			return fmt.Errorf("ingest: offset %d of %s/%d: %w", msg.Offset, msg.Topic, msg.Partition, err)
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

func (h groupHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	attempts := max(h.attempts, 1)
	wait := h.backoff
	var err error
	for i := 0; i < attempts; i++ {
		if err = h.handler.Handle(ctx, msg); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		h.logger.WarnContext(ctx, "ingest message retry",
			"offset", msg.Offset, "attempt", i+1, "error", err)
		if !sleep(ctx, wait) {
			return errors.Join(err, ctx.Err())
		}
		wait = min(wait*2, maxBackoff)
	}
	return err
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
