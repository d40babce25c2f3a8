package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"frontscan/pkg/controller"

	"github.com/stretchr/testify/require"
)

func TestPprofMux(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "Index", path: "/debug/pprof/"},
		{name: "Cmdline", path: "/debug/pprof/cmdline"},
		{name: "Named Profile", path: "/debug/pprof/goroutine?debug=1"},
	}

	mux := controller.PprofMux()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://pprof.local"+tt.path, nil))

			res := rec.Result()
			require.Equal(t, http.StatusOK, res.StatusCode)
			require.NotEmpty(t, res.Header.Get("Content-Type"))
		})
	}
}
