package probe_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"automarket/pkg/probe"
)

func TestServer(t *testing.T) {
	testCases := []struct {
		name       string
		endpoint   string
		status     probe.StatusFunc
		statusCode int
		body       string
	}{
		{
			name:       "Health handler",
			endpoint:   "/healthz",
			statusCode: http.StatusOK,
			body:       `{"name":"automarket","version":"v0.0.1"}`,
		},
		{
			name:       "Ready handler without status",
			endpoint:   "/ready",
			statusCode: http.StatusOK,
			body:       `{"name":"automarket","version":"v0.0.1"}`,
		},
		{
			name:       "Ready handler with status",
			endpoint:   "/ready",
			status:     func() string { return "running" },
			statusCode: http.StatusOK,
			body:       `{"name":"automarket","version":"v0.0.1","status":"running"}`,
		},
		{
			name:       "Invalid endpoint",
			endpoint:   "/invalid",
			statusCode: http.StatusNotFound,
			body:       "404 page not found\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			probeServer := probe.NewServer(
				":0",
				probe.Options{Name: "automarket", Version: "v0.0.1"},
				tc.status,
			)

			srv := httptest.NewServer(probeServer.Handler())
			defer srv.Close()

			resp, err := http.Get(srv.URL + tc.endpoint) //nolint:noctx
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			bodyBytes, err := io.ReadAll(resp.Body)
			rq.NoError(err)

			rq.Equal(tc.body, string(bodyBytes))
		})
	}
}
