package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"

	platformcfg "github.com/example/movie-platform/internal/platform/config"
)

// Config is the analytics consumer's environment. It has no HTTP surface so it
// does not use the shared AppConfig block.
type Config struct {
	ServiceName string
	LogLevel    string
	NATSURL     string

	PostHogAPIKey    string
	PostHogHost      string
	FlushInterval    time.Duration
	PostHogBatchSize int // events buffered by the SDK before a flush

	NATSBatchSize int           // messages per JetStream fetch
	FetchWait     time.Duration // longest a fetch blocks when the stream is idle
}

func Load() (Config, error) {
	_ = godotenv.Load()

	key := platformcfg.String("POSTHOG_API_KEY", "")
	if key == "" {
		return Config{}, errors.New("POSTHOG_API_KEY is required")
	}
	host := platformcfg.String("POSTHOG_HOST", "https://app.posthog.com")
	if u, err := url.Parse(host); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("POSTHOG_HOST must be an absolute URL, got %q", host)
	}

	return Config{
		ServiceName:      platformcfg.String("SERVICE_NAME", "analytics"),
		LogLevel:         platformcfg.String("LOG_LEVEL", "info"),
		NATSURL:          platformcfg.String("NATS_URL", "nats://nats:4222"),
		PostHogAPIKey:    key,
		PostHogHost:      host,
		FlushInterval:    platformcfg.Seconds("POSTHOG_FLUSH_INTERVAL_SEC", 5*time.Second),
		PostHogBatchSize: positive(platformcfg.Int("POSTHOG_BATCH_SIZE", 100), 100),
		NATSBatchSize:    positive(platformcfg.Int("WORKER_BATCH_SIZE", 200), 200),
		FetchWait:        time.Duration(positive(platformcfg.Int("WORKER_BATCH_INTERVAL_MS", 2000), 2000)) * time.Millisecond,
	}, nil
}

func positive(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
