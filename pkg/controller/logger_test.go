package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"frontscan/pkg/controller"
	"frontscan/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "X-Forwarded-For",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"},
			want:    "1.2.3.4",
		},
		{
			name:    "X-Real-IP",
			headers: map[string]string{"X-Real-IP": "9.8.7.6"},
			want:    "9.8.7.6",
		},
		{
			name:   "Remote Addr",
			remote: "10.0.0.1:12345",
			want:   "10.0.0.1",
		},
		{
			name:   "Invalid Remote Addr",
			remote: "not-an-addr",
			want:   "not-an-addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			require.Equal(t, tt.want, controller.GetClientIP(req))
		})
	}
}

// echo writes the request ID from context into a header.
func echo(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Echo-Request-Id", controller.RequestID(r.Context()))
		w.WriteHeader(status)
	})
}

func TestWithLoggerRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := logger.WithLogger(context.Background(), zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil).WithContext(base)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	controller.WithLogger(echo(http.StatusCreated)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "abc-123", rec.Header().Get("X-Echo-Request-Id"))

	entries := logs.FilterMessage("Access log").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.EqualValues(t, http.StatusCreated, fields["status_code"])
	require.Equal(t, "abc-123", fields[string(controller.RequestIDKey)])

	// without the header an ID is generated
	rec = httptest.NewRecorder()
	controller.WithLogger(echo(http.StatusOK)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rec.Header().Get("X-Echo-Request-Id"))
}

func TestWithLoggerQuietPaths(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := logger.WithLogger(context.Background(), zap.New(core))

	h := controller.WithLogger(echo(http.StatusOK), "/metrics")
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil).WithContext(base))

	entries := logs.FilterMessage("Access log").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestWithLoggerHijack(t *testing.T) {
	hijacker := make(chan bool, 1)
	h := controller.WithLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, ok := w.(http.Hijacker)
		hijacker <- ok
	}))

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.True(t, <-hijacker, "wrapped writer still hijacks")
}
