// Package youtube resolves trailer video ids through the YouTube Data API search endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"
	embedBaseURL   = "https://www.youtube.com/embed/"
	maxBodyBytes   = 1 << 20
)

// ErrSearchFailed wraps transport errors, non-2xx answers and undecodable bodies.
var ErrSearchFailed = errors.New("youtube: search failed")

type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client performs uncached video searches.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  strings.TrimSpace(opts.APIKey),
		http:    opts.HTTPClient,
		log:     opts.Logger,
	}
	if c.apiKey == "" {
		c.log.Warn("YT_API_KEY is not set; trailer lookups will find nothing")
	}
	return c
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideo returns the first embeddable video matching query.
// found is false when nothing matched or no API key is configured.
func (c *Client) SearchVideo(ctx context.Context, query string, maxResults int) (videoID string, found bool, err error) {
	if c.apiKey == "" || strings.TrimSpace(query) == "" {
		return "", false, nil
	}
	if maxResults < 1 {
		maxResults = 1
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", query)
	q.Set("type", "video")
	q.Set("videoEmbeddable", "true")
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), http.NoBody)
	if err != nil {
		return "", false, fmt.Errorf("%w: create request: %v", ErrSearchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return "", false, fmt.Errorf("%w: decode: %v", ErrSearchFailed, err)
	}
	for _, it := range out.Items {
		if id := strings.TrimSpace(it.ID.VideoID); id != "" {
			return id, true, nil
		}
	}
	return "", false, nil
}

// TrailerQuery builds the search phrase for a movie trailer. year <= 0 is omitted.
func TrailerQuery(title string, year int) string {
	title = strings.TrimSpace(title)
	if year > 0 {
		return fmt.Sprintf("%s %d official trailer", title, year)
	}
	return title + " official trailer"
}

// EmbedURL returns the autoplaying embed URL for a video id.
func EmbedURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return embedBaseURL + url.PathEscape(videoID) + "?autoplay=1"
}
