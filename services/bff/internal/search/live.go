package search

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 4 << 10
)

type liveRequest struct {
	Query string `json:"query"`
}

type liveResponse struct {
	Seq     uint64 `json:"seq"`
	Query   string `json:"query"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// Observer is told about each completed live search.
type Observer func(ctx context.Context, userID, query string, results int)

// LiveHandler upgrades to a websocket. The client sends {"query": "..."} on
// every keystroke and receives {"seq","query","results"} for searches that
// survived debouncing.
func LiveHandler(search Func, window time.Duration, observe Observer, allowedOrigins []string, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("live search upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		userID, _ := auth.UserIDFromContext(r.Context())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan Result, 8)
		d := NewDebouncer(ctx, window, search, func(res Result) {
			select {
			case out <- res:
			case <-ctx.Done():
			}
		})
		defer d.Close()

		go writeLoop(ctx, cancel, conn, out, func(res Result) {
			if observe != nil && res.Query != "" && res.Err == nil {
				observe(ctx, userID, res.Query, len(res.Results))
			}
		}, log)

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var req liveRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug("live search read failed", zap.Error(err))
				}
				return
			}
			d.Submit(req.Query)
		}
	}
}

// writeLoop owns all writes to conn. Results older than one already sent are dropped.
func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, in <-chan Result, sent func(Result), log *zap.Logger) {
	defer cancel()
	defer conn.Close()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-in:
			if res.Seq <= last {
				continue
			}
			last = res.Seq
			msg := liveResponse{Seq: res.Seq, Query: res.Query, Results: res.Results}
			if res.Err != nil {
				log.Warn("live search failed", zap.String("query", res.Query), zap.Error(res.Err))
				msg.Error = "search failed"
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			sent(res)
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// originChecker allows same-origin requests and any listed origin. "*" allows all.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
