package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestRecovery(t *testing.T) {
	tests := []struct {
		name       string
		withLogger bool
	}{
		{name: "request logger", withLogger: true},
		{name: "fallback logger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reqBuf, fallbackBuf bytes.Buffer

			var h http.Handler = Recovery(zerolog.New(&fallbackBuf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("ledger exploded")
			}))
			if tt.withLogger {
				inner := h
				h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					logger := zerolog.New(&reqBuf)
					inner.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
				})
			}
			h = chimiddleware.RequestID(h)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
			req.Header.Set(chimiddleware.RequestIDHeader, "req-7")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rec.Code)
			}

			logged, silent := &fallbackBuf, &reqBuf
			if tt.withLogger {
				logged, silent = &reqBuf, &fallbackBuf
			}
			if silent.Len() != 0 {
				t.Fatalf("expected one logger to stay silent, got %s", silent.String())
			}

			var line map[string]any
			if err := json.Unmarshal(logged.Bytes(), &line); err != nil {
				t.Fatalf("failed to decode log line %q: %v", logged.String(), err)
			}
			if line["panic"] != "ledger exploded" || line["request_id"] != "req-7" || line["stack"] == "" {
				t.Fatalf("unexpected log line %+v", line)
			}
		})
	}
}

func TestRecoveryRepanicsAbortHandler(t *testing.T) {
	h := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, http.ErrAbortHandler) {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Fatal("expected a panic")
}
