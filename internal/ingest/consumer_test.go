package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession records marked offsets. Methods the handler never calls are
// left to the embedded nil interface.
type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	msgs chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func claimOf(offsets ...int64) *fakeClaim {
	c := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, len(offsets))}
	for _, o := range offsets {
		c.msgs <- &sarama.ConsumerMessage{Topic: "rv-listings", Offset: o}
	}
	close(c.msgs)
	return c
}

type handlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f handlerFunc) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error { return f(ctx, msg) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestConsumeClaim_marksHandledMessages(t *testing.T) {
	h := groupHandler{
		handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return nil }),
		logger:  quietLogger(),
	}
	sess := &fakeSession{ctx: context.Background()}

	require.NoError(t, h.ConsumeClaim(sess, claimOf(10, 11, 12)))
	assert.Equal(t, []int64{10, 11, 12}, sess.marked)
}

// A store failure must not let a later offset be committed past it.
func TestConsumeClaim_failureStopsBeforeLaterOffsets(t *testing.T) {
	var calls atomic.Int32
	h := groupHandler{
		handler: handlerFunc(func(_ context.Context, msg *sarama.ConsumerMessage) error {
			if msg.Offset == 10 {
				calls.Add(1)
				return errors.New("db down")
			}
			return nil
		}),
		logger:   quietLogger(),
		attempts: 3,
	}
	sess := &fakeSession{ctx: context.Background()}

	err := h.ConsumeClaim(sess, claimOf(9, 10, 11))

	require.ErrorContains(t, err, "db down")
	assert.Equal(t, []int64{9}, sess.marked)
	assert.EqualValues(t, 3, calls.Load())
}

func TestConsumeClaim_retrySucceeds(t *testing.T) {
	var calls atomic.Int32
	h := groupHandler{
		handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error {
			if calls.Add(1) < 2 {
				return errors.New("transient")
			}
			return nil
		}),
		logger:   quietLogger(),
		attempts: 3,
	}
	sess := &fakeSession{ctx: context.Background()}

	require.NoError(t, h.ConsumeClaim(sess, claimOf(4)))
	assert.Equal(t, []int64{4}, sess.marked)
}

func TestConsumeClaim_cancelledSessionStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := groupHandler{
		handler:  handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return errors.New("db down") }),
		logger:   quietLogger(),
		attempts: 5,
		backoff:  time.Hour,
	}
	sess := &fakeSession{ctx: ctx}

	err := h.ConsumeClaim(sess, claimOf(1, 2))

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sess.marked)
}

// fakeGroup replays a scripted sequence of Consume results.
type fakeGroup struct {
	sarama.ConsumerGroup
	results []error
	calls   int
}

func (g *fakeGroup) Consume(context.Context, []string, sarama.ConsumerGroupHandler) error {
	err := g.results[g.calls]
	g.calls++
	return err
}

func TestConsumer_Run_keepsGoingAfterConsumeError(t *testing.T) {
	g := &fakeGroup{results: []error{
		errors.New("broker unreachable"),
		nil,
		sarama.ErrClosedConsumerGroup,
	}}
	c := newConsumer(g, handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return nil }), quietLogger())
	c.backoff = 0

	err := c.Run(context.Background(), []string{"rv-listings"})

	require.NoError(t, err)
	assert.Equal(t, 3, g.calls)
}

func TestConsumer_Run_stopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := &fakeGroup{results: []error{nil}}
	c := newConsumer(g, handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return nil }), quietLogger())
	cancel()

	err := c.Run(ctx, []string{"rv-listings"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, g.calls)
}
