package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler keeps the last log record for assertions.
type recordingHandler struct {
	record slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.record = r.Clone()
	return nil
}

func (h *recordingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(_ string) slog.Handler { return h }

func recordAttrs(r slog.Record) map[string]slog.Value {
	attrs := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return attrs
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"created with body", http.MethodPost, "/auth/signup", http.StatusCreated, `{"data":{}}`},
		{"ok without body", http.MethodGet, "/events", http.StatusOK, ""},
		{"server error", http.MethodPost, "/events", http.StatusInternalServerError, `{"error":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordingHandler
			logger := slog.New(&rec)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			})
			req := httptest.NewRequest(tt.method, "http://test"+tt.path, nil)
			rr := httptest.NewRecorder()

			LoggingMiddleware(logger, next).ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			require.Equal(t, "request", rec.record.Message)
			attrs := recordAttrs(rec.record)
			assert.Equal(t, tt.method, attrs["method"].String())
			assert.Equal(t, tt.path, attrs["path"].String())
			assert.Equal(t, int64(tt.status), attrs["status"].Int64())
			assert.Equal(t, int64(len(tt.body)), attrs["bytes"].Int64())
			assert.GreaterOrEqual(t, attrs["duration_ms"].Int64(), int64(0))
		})
	}
}

func TestLoggingMiddlewareDefaultsToOK(t *testing.T) {
	var rec recordingHandler
	logger := slog.New(&rec)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	req := httptest.NewRequest(http.MethodGet, "http://test/users/me", nil)

	LoggingMiddleware(logger, next).ServeHTTP(httptest.NewRecorder(), req)

	attrs := recordAttrs(rec.record)
	assert.Equal(t, int64(http.StatusOK), attrs["status"].Int64())
	assert.Equal(t, int64(2), attrs["bytes"].Int64())
}
