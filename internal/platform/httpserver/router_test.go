package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(cfg ...RouterConfig) chi.Router {
	r := chi.NewRouter()
	SetupRouter(r, cfg...)
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	cases := []struct {
		name   string
		ready  func() error
		path   string
		status int
		body   string
	}{
		{name: "healthz", path: "/healthz", status: http.StatusOK, body: "ok"},
		{name: "readyz without check", path: "/readyz", status: http.StatusOK, body: "ready"},
		{name: "readyz ok", ready: func() error { return nil }, path: "/readyz", status: http.StatusOK, body: "ready"},
		{name: "readyz failing", ready: func() error { return errors.New("tmdb key missing") }, path: "/readyz", status: http.StatusServiceUnavailable, body: "not ready: tmdb key missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(newTestRouter(RouterConfig{ReadyFunc: tc.ready}), http.MethodGet, tc.path, nil)
			if rr.Code != tc.status || rr.Body.String() != tc.body {
				t.Fatalf("got %d %q", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestPanicRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(RouterConfig{Logger: zap.New(core)})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("poster decode")
	})

	rr := serve(r, http.MethodGet, "/boom", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on panic, got %d", rr.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatal("expected the panic to be logged")
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(RouterConfig{Logger: zap.New(core)})
	r.Get("/v1/trending", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	serve(r, http.MethodGet, "/v1/trending", nil)
	serve(r, http.MethodGet, "/healthz", nil)

	lines := logs.FilterMessage("http request").All()
	if len(lines) != 1 {
		t.Fatalf("expected one access line, got %d", len(lines))
	}
	fields := lines[0].ContextMap()
	if fields["path"] != "/v1/trending" || fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["request_id"] == "" {
		t.Fatal("expected request id on the access line")
	}
}

func TestCORS(t *testing.T) {
	t.Run("env wildcard by default", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		r := newTestRouter()
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		rr := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://anywhere.example"})
		if rr.Header().Get("Access-Control-Allow-Origin") == "" {
			t.Fatal("expected CORS header to be set")
		}
	})

	t.Run("configured origins win over env", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		r := newTestRouter(RouterConfig{CORSOrigins: []string{"https://movies.example.org"}})
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

		ok := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://movies.example.org"})
		if ok.Header().Get("Access-Control-Allow-Origin") != "https://movies.example.org" {
			t.Fatalf("expected origin echoed, got %q", ok.Header().Get("Access-Control-Allow-Origin"))
		}
		denied := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example"})
		if denied.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Fatal("expected foreign origin to be refused")
		}
	})
}

func TestParseCORSOrigins(t *testing.T) {
	cases := map[string][]string{
		"":  {"*"},
		" ": {"*"},
		"https://movies.example.org":                                   {"https://movies.example.org"},
		"https://movies.example.org , https://www.movies.example.org,": {"https://movies.example.org", "https://www.movies.example.org"},
	}
	for raw, want := range cases {
		got := parseCORSOrigins(raw)
		if len(got) != len(want) {
			t.Fatalf("%q: got %v", raw, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%q: got %v", raw, got)
			}
		}
	}
}
