// Package handler routes analytics.* NATS messages to PostHog captures.
package handler

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
)

// Sink is the capture side of the PostHog client.
type Sink interface {
	Capture(distinctID, event string, props map[string]any)
	Identify(userID string, traits map[string]any)
}

// Dispatcher routes incoming NATS messages to the correct PostHog capture call.
type Dispatcher struct {
	sink Sink
	log  *zap.Logger
}

// New creates a Dispatcher.
func New(sink Sink, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sink: sink, log: log}
}

// Dispatch routes msg by subject. Unknown subjects are logged and dropped.
// A non-nil error means the payload can never be processed.
func (d *Dispatcher) Dispatch(msg *nats.Msg) error {
	ev, err := analytics.Decode(msg.Data)
	if err != nil {
		d.log.Error("analytics: decode message",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return err
	}

	switch msg.Subject {
	case analytics.SubjectMovieViewed:
		d.capture(ev, "movie_viewed", "movie_id", "title")
	case analytics.SubjectSearchPerformed:
		d.handleSearchPerformed(ev)
	case analytics.SubjectTrailerRequested:
		d.capture(ev, "trailer_requested", "movie_id", "found")
	case analytics.SubjectReviewSubmitted:
		d.capture(ev, "review_submitted", "movie_id", "rating", "has_content")
	case analytics.SubjectWatchlistAdded:
		d.capture(ev, "watchlist_added", "movie_id", "title")
	case analytics.SubjectWatchlistRemoved:
		d.capture(ev, "watchlist_removed", "movie_id")
	case analytics.SubjectProfileCreated:
		d.handleProfileCreated(ev)
	default:
		d.log.Debug("analytics: unhandled subject", zap.String("subject", msg.Subject))
	}
	return nil
}

func (d *Dispatcher) handleSearchPerformed(ev analytics.Event) {
	count, _ := ev.Properties["results_count"].(float64)
	d.sink.Capture(distinct(ev), "search_performed", map[string]any{
		"query":         ev.Properties["query"],
		"results_count": int(count),
		"has_results":   count > 0,
		"live":          ev.Properties["live"] == true,
	})
}

func (d *Dispatcher) handleProfileCreated(ev analytics.Event) {
	if ev.UserID == "" {
		return
	}
	d.sink.Identify(ev.UserID, map[string]any{
		"username":   ev.Properties["username"],
		"created_at": ev.OccurredAt,
	})
	d.sink.Capture(ev.UserID, "profile_created", nil)
}

// capture forwards the listed properties only.
func (d *Dispatcher) capture(ev analytics.Event, name string, keys ...string) {
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := ev.Properties[k]; ok {
			props[k] = v
		}
	}
	d.sink.Capture(distinct(ev), name, props)
}

func distinct(ev analytics.Event) string {
	if ev.UserID == "" {
		return "anonymous"
	}
	return ev.UserID
}
