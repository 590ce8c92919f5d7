package config

import (
	"errors"
	"strings"
	"time"

	platformcfg "github.com/example/movie-platform/internal/platform/config"
)

type BFFConfig struct {
	JWTSecret      []byte
	TMDBAPIKey     string
	TMDBBaseURL    string
	YouTubeAPIKey  string
	YouTubeBaseURL string
	SocialBaseURL  string
	RedisURL       string
	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	SearchDebounce time.Duration
}

// LoadBFF reads the bff block. Missing catalog or video keys are allowed: the
// clients warn and serve empty results.
func LoadBFF() (BFFConfig, error) {
	secret := platformcfg.String("JWT_SECRET", "")
	if secret == "" {
		return BFFConfig{}, errors.New("JWT_SECRET is required")
	}
	social := platformcfg.String("SOCIAL_BASE_URL", "")
	if social == "" {
		return BFFConfig{}, errors.New("SOCIAL_BASE_URL is required")
	}

	return BFFConfig{
		JWTSecret:      []byte(secret),
		TMDBAPIKey:     platformcfg.String("TMDB_API_KEY", ""),
		TMDBBaseURL:    platformcfg.String("TMDB_BASE_URL", ""),
		YouTubeAPIKey:  platformcfg.String("YT_API_KEY", ""),
		YouTubeBaseURL: platformcfg.String("YT_BASE_URL", ""),
		SocialBaseURL:  strings.TrimRight(social, "/"),
		RedisURL:       platformcfg.String("REDIS_URL", ""),
		CacheTTL:       platformcfg.Seconds("BFF_CACHE_TTL_SEC", 60*time.Second),
		RateLimitRPS:   platformcfg.Float("RATE_LIMIT_RPS", 20),
		RateLimitBurst: platformcfg.Int("RATE_LIMIT_BURST", 40),
		CORSOrigins:    splitOrigins(platformcfg.String("CORS_ALLOWED_ORIGINS", "")),
		SearchDebounce: time.Duration(platformcfg.Int("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
	}, nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
