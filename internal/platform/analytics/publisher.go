// Package analytics carries product events from the services to the
// analytics consumer over NATS JetStream.
package analytics

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectMovieViewed      = "analytics.catalog.movie_viewed"
	SubjectSearchPerformed  = "analytics.search.performed"
	SubjectTrailerRequested = "analytics.catalog.trailer_requested"
	SubjectReviewSubmitted  = "analytics.social.review_submitted"
	SubjectWatchlistAdded   = "analytics.social.watchlist_added"
	SubjectWatchlistRemoved = "analytics.social.watchlist_removed"
	SubjectProfileCreated   = "analytics.social.profile_created"
)

// StreamName is the JetStream stream capturing every analytics.* subject.
const StreamName = "ANALYTICS"

// EnsureStream creates the analytics stream when it does not exist yet.
func EnsureStream(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(StreamName); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"analytics.>"},
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

// Event is the envelope sent on every analytics.* subject.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

var ErrMalformedEvent = errors.New("malformed analytics event")

// Decode parses a message body. Events without a name are rejected.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	if ev.EventName == "" {
		return Event{}, ErrMalformedEvent
	}
	return ev, nil
}

// asyncPublisher is the slice of nats.JetStreamContext the publisher needs.
type asyncPublisher interface {
	PublishAsync(subj string, data []byte, opts ...nats.PubOpt) (nats.PubAckFuture, error)
}

// Publisher sends events fire-and-forget. A nil *Publisher is a no-op.
type Publisher struct {
	js  asyncPublisher
	log *zap.Logger
	now func() time.Time
}

// New wraps a JetStream context. js=nil gives a publisher that drops
// everything, which is what services without NATS run with.
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Publisher{log: log, now: time.Now}
	if js != nil {
		p.js = js
	}
	return p
}

// Publish never blocks on the broker and never reports failure to the caller.
func (p *Publisher) Publish(subject, eventName, userID string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	data, err := json.Marshal(Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		UserID:     userID,
		OccurredAt: p.now().UTC(),
		Properties: props,
	})
	if err != nil {
		p.log.Warn("analytics: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("analytics: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
