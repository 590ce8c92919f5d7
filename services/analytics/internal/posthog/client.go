// Package posthog forwards product events to PostHog.
package posthog

import (
	"strings"
	"time"

	ph "github.com/posthog/posthog-go"
	"go.uber.org/zap"
)

const defaultHost = "https://app.posthog.com"

// Options configures the PostHog SDK batching.
type Options struct {
	APIKey        string
	Host          string
	FlushInterval time.Duration
	BatchSize     int
}

// enqueuer is the part of ph.Client this package drives.
type enqueuer interface {
	Enqueue(ph.Message) error
	Close() error
}

// Client implements handler.Sink on top of posthog-go.
type Client struct {
	ph  enqueuer
	log *zap.Logger
}

func New(opts Options, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	host := strings.TrimRight(strings.TrimSpace(opts.Host), "/")
	if host == "" {
		host = defaultHost
	}
	client, err := ph.NewWithConfig(opts.APIKey, ph.Config{
		Endpoint:  host,
		BatchSize: opts.BatchSize,
		Interval:  opts.FlushInterval,
		Logger:    &zapLogger{log: log.Named("posthog")},
	})
	if err != nil {
		return nil, err
	}
	return &Client{ph: client, log: log}, nil
}

// Capture enqueues one event. distinctID is the user id or "anonymous".
func (c *Client) Capture(distinctID, event string, props map[string]any) {
	if c == nil || c.ph == nil {
		return
	}
	if err := c.ph.Enqueue(ph.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties(props),
	}); err != nil {
		c.log.Warn("posthog: enqueue failed", zap.String("event", event), zap.Error(err))
	}
}

// Identify attaches traits to a user, sent when a profile is first created.
func (c *Client) Identify(userID string, traits map[string]any) {
	if c == nil || c.ph == nil {
		return
	}
	if err := c.ph.Enqueue(ph.Identify{
		DistinctId: userID,
		Properties: properties(traits),
	}); err != nil {
		c.log.Warn("posthog: identify failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Close flushes buffered events.
func (c *Client) Close() error {
	if c == nil || c.ph == nil {
		return nil
	}
	return c.ph.Close()
}

// properties drops nil values; PostHog shows them as an explicit "null".
func properties(m map[string]any) ph.Properties {
	p := ph.NewProperties()
	for k, v := range m {
		if v == nil {
			continue
		}
		p.Set(k, v)
	}
	return p
}

type zapLogger struct {
	log *zap.Logger
}

func (z *zapLogger) Debugf(format string, args ...any) { z.log.Sugar().Debugf(format, args...) }
func (z *zapLogger) Logf(format string, args ...any)   { z.log.Sugar().Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...any)  { z.log.Sugar().Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...any) { z.log.Sugar().Errorf(format, args...) }
