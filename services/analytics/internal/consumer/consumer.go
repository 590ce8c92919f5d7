// Package consumer drains the ANALYTICS stream through a durable pull
// subscription.
package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
)

const durableName = "analytics_processor"

// Dispatcher handles one message. An error marks the message as poison.
type Dispatcher interface {
	Dispatch(msg *nats.Msg) error
}

type fetcher interface {
	Fetch(batch int, opts ...nats.PullOpt) ([]*nats.Msg, error)
}

type Consumer struct {
	sub        fetcher
	dispatcher Dispatcher
	batchSize  int
	wait       time.Duration
	backoff    time.Duration
	log        *zap.Logger

	// settle acks or terminates a message; swapped in tests.
	settle func(msg *nats.Msg, poison bool) error
}

// New makes sure the stream exists and binds the durable consumer.
func New(nc *nats.Conn, d Dispatcher, batchSize int, fetchWait time.Duration, log *zap.Logger) (*Consumer, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}

	if err := analytics.EnsureStream(js); err != nil {
		log.Warn("analytics: ensure stream", zap.String("stream", analytics.StreamName), zap.Error(err))
	} else {
		log.Info("analytics: stream ready", zap.String("stream", analytics.StreamName))
	}

	sub, err := js.PullSubscribe("analytics.>", durableName, nats.BindStream(analytics.StreamName))
	if err != nil {
		return nil, err
	}
	return newConsumer(sub, d, batchSize, fetchWait, log), nil
}

func newConsumer(sub fetcher, d Dispatcher, batchSize int, wait time.Duration, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		sub:        sub,
		dispatcher: d,
		batchSize:  batchSize,
		wait:       wait,
		backoff:    time.Second,
		log:        log,
		settle:     settle,
	}
}

// Run processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.sub.Fetch(c.batchSize, nats.MaxWait(c.wait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			c.log.Error("analytics consumer: fetch", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}

		for _, msg := range msgs {
			poison := c.dispatcher.Dispatch(msg) != nil
			if err := c.settle(msg, poison); err != nil {
				c.log.Warn("analytics consumer: settle", zap.Bool("poison", poison), zap.Error(err))
			}
		}
	}
}

// settle acks handled messages and terminates poison ones so JetStream does
// not redeliver them.
func settle(msg *nats.Msg, poison bool) error {
	if poison {
		return msg.Term()
	}
	return msg.Ack()
}
