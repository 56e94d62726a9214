package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/restaurantbooking/backend/internal/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel zapcore.Level
	}{
		{name: "ok", status: http.StatusOK, expectedLevel: zapcore.InfoLevel},
		{name: "client error", status: http.StatusNotFound, expectedLevel: zapcore.WarnLevel},
		{name: "server error", status: http.StatusInternalServerError, expectedLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			logger := zap.New(core)

			handler := middlewares.RequestIDMiddleware(LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("hello"))
			})))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/restaurants?page=2", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.expectedLevel, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, "/api/v1/restaurants", fields["path"])
			assert.Equal(t, "page=2", fields["query"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, int64(5), fields["bytes"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}
