package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestLoggingMiddleware_LogsRequestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var ctxLogged bool
	h := chimiddleware.RequestID(NewLoggingMiddleware(logger).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		ctxLogged = true
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !ctxLogged {
		t.Fatal("handler not called")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var completed map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &completed); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if completed["request_id"] != "req-42" || completed["status"] != float64(http.StatusCreated) {
		t.Fatalf("unexpected log line %v", completed)
	}
	if !strings.Contains(lines[0], `"request_id":"req-42"`) {
		t.Fatalf("expected handler log to carry request id, got %s", lines[0])
	}
}

func TestLoggingMiddleware_ServerErrorsLoggedAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLoggingMiddleware(zerolog.New(&buf)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error level, got %s", buf.String())
	}
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{name: "success", path: "/api/v1/accounts", status: http.StatusOK, wantLevel: "info"},
		{name: "client error", path: "/api/v1/entries", status: http.StatusUnprocessableEntity, wantLevel: "warn"},
		{name: "probe", path: "/ready", status: http.StatusOK, wantLevel: "debug"},
		{name: "failing probe", path: "/ready", status: http.StatusServiceUnavailable, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewLoggingMiddleware(zerolog.New(&buf)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("ok"))
			}))

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set(IdempotencyKeyHeader, "key-1")
			h.ServeHTTP(httptest.NewRecorder(), req)

			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("failed to decode log line: %v", err)
			}
			if line["level"] != tt.wantLevel {
				t.Fatalf("expected level %s, got %v", tt.wantLevel, line["level"])
			}
			if line["bytes"] != float64(2) || line["idempotent"] != true {
				t.Fatalf("unexpected log line %v", line)
			}
		})
	}
}

func TestLoggingMiddleware_RecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(NewLoggingMiddleware(zerolog.New(&buf)).Wrap)
	r.Get("/api/v1/accounts/{id}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acc-7", nil))

	if !strings.Contains(buf.String(), `"route":"/api/v1/accounts/{id}"`) || !strings.Contains(buf.String(), `"status":200`) {
		t.Fatalf("expected route pattern and implicit 200, got %s", buf.String())
	}
}

func TestRecovery_LogsPanic(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
}
